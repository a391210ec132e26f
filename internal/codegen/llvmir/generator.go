package llvmir

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/sushi-lang/sushic/internal/mir"
	st "github.com/sushi-lang/sushic/internal/types"
)

// Generator lowers one mir.Module into an *ir.Module, the llir/llvm object
// model this package builds instead of the teacher's textual IR builder
// (internal/codegen/llvm/generator.go's strings.Builder). Runtime helpers
// (allocation, string ops, hashing) are declared as external functions and
// satisfied at link time by the stdlib bitcode (§4.8 "Stdlib linking").
type Generator struct {
	Module *ir.Module
	Types  *TypeLowerer

	runtime map[string]*ir.Func
	funcs   map[string]*ir.Func

	cur    *ir.Func
	block  *ir.Block
	blocks map[*mir.BasicBlock]*ir.Block
	locals map[int]value.Value
}

// NewGenerator creates an empty Generator with its runtime-helper
// declarations pre-registered.
func NewGenerator() *Generator {
	g := &Generator{
		Module:  ir.NewModule(),
		Types:   NewTypeLowerer(),
		runtime: make(map[string]*ir.Func),
		funcs:   make(map[string]*ir.Func),
	}
	g.declareRuntime()
	return g
}

// declareRuntime declares the libc and Sushi-runtime external symbols that
// RAII, string, and hash operations call into (§4.8).
func (g *Generator) declareRuntime() {
	i8p := types.NewPointer(types.I8)
	decl := func(name string, ret types.Type, params ...types.Type) {
		ps := make([]*ir.Param, len(params))
		for i, p := range params {
			ps[i] = ir.NewParam("", p)
		}
		f := g.Module.NewFunc(name, ret, ps...)
		f.Linkage = enum.LinkageExternal
		g.runtime[name] = f
	}
	decl("malloc", i8p, types.I64)
	decl("free", types.Void, i8p)
	decl("memcpy", i8p, i8p, i8p, types.I64)
	decl("memcmp", types.I32, i8p, i8p, types.I64)
	decl("strlen", types.I64, i8p)
	decl("sushi_array_push", types.Void, i8p, i8p, types.I64)
	decl("sushi_array_len", types.I32, i8p)
	decl("sushi_string_concat", types.NewStruct(i8p, types.I32), i8p, types.I32, i8p, types.I32)
	decl("sushi_utf8_char_count", types.I32, i8p, types.I32)
	decl("sushi_realise", i8p, i8p, i8p)
	decl("sushi_convert_error", i8p, i8p)
	decl("sushi_fxhash_mix", types.I64, types.I64, types.I64)
}

func (g *Generator) rt(name string) *ir.Func { return g.runtime[name] }

// LowerModule translates every function in m into the LLVM module.
func (g *Generator) LowerModule(m *mir.Module) *ir.Module {
	for _, s := range m.Structs {
		g.Types.RegisterStruct(s)
	}
	for _, e := range m.Enums {
		g.Types.RegisterEnum(e)
	}
	// Pre-declare every function signature first so mutually-recursive
	// calls resolve regardless of definition order (§5 "Ordering").
	for _, fn := range m.Functions {
		g.declareFunc(fn)
	}
	for _, fn := range m.Functions {
		g.lowerFunc(fn)
	}
	g.emitMainShim(m)
	return g.Module
}

func (g *Generator) declareFunc(fn *mir.Function) {
	params := make([]*ir.Param, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ir.NewParam(p.Name, g.Types.Lower(p.Type))
	}
	ret := g.Types.Lower(fn.ReturnType)
	f := g.Module.NewFunc(fn.Name, ret, params...)
	g.funcs[fn.Name] = f
}

func (g *Generator) lowerFunc(fn *mir.Function) {
	f := g.funcs[fn.Name]
	g.cur = f
	g.locals = make(map[int]value.Value)
	g.blocks = make(map[*mir.BasicBlock]*ir.Block)

	for i := range fn.Params {
		g.locals[fn.Locals[i].ID] = f.Params[i]
	}
	for _, b := range fn.Blocks {
		g.blocks[b] = f.NewBlock(b.Label)
	}
	for _, b := range fn.Blocks {
		g.block = g.blocks[b]
		for _, s := range b.Statements {
			g.lowerStmt(s)
		}
		g.lowerTerminator(b.Terminator, fn.ReturnType)
	}
}

func (g *Generator) operand(o mir.Operand) value.Value {
	switch x := o.(type) {
	case *mir.LocalRef:
		return g.locals[x.Local.ID]
	case *mir.Literal:
		return g.literal(x)
	}
	return constant.NewInt(types.I32, 0)
}

func (g *Generator) literal(l *mir.Literal) value.Value {
	switch v := l.Value.(type) {
	case int64:
		if it, ok := g.Types.Lower(l.Type).(*types.IntType); ok {
			return constant.NewInt(it, v)
		}
		return constant.NewInt(types.I32, v)
	case float64:
		if ft, ok := g.Types.Lower(l.Type).(*types.FloatType); ok {
			return constant.NewFloat(ft, v)
		}
		return constant.NewFloat(types.Double, v)
	case bool:
		return constant.NewBool(v)
	case string:
		return g.stringConstant(v)
	}
	return constant.NewZeroInitializer(g.Types.Lower(l.Type))
}

func (g *Generator) stringConstant(s string) value.Value {
	data := constant.NewCharArrayFromString(s)
	global := g.Module.NewGlobalDef("", data)
	global.Immutable = true
	ptr := constant.NewGetElementPtr(data.Typ, global, constant.NewInt(types.I64, 0), constant.NewInt(types.I64, 0))
	return constant.NewStruct(types.NewStruct(types.NewPointer(types.I8), types.I32), ptr, constant.NewInt(types.I32, int64(len(s))))
}

func (g *Generator) lowerStmt(s mir.Statement) {
	switch x := s.(type) {
	case *mir.Assign:
		g.locals[x.Local.ID] = g.operand(x.RHS)
	case *mir.Call:
		g.lowerCall(x)
	case *mir.LoadField:
		g.locals[x.Result.ID] = g.block.NewExtractValue(g.operand(x.Target), uint64(g.fieldIndex(x.Target, x.Field)))
	case *mir.StoreField:
		if ref, ok := x.Target.(*mir.LocalRef); ok {
			current := g.operand(x.Target)
			idx := uint64(g.fieldIndex(x.Target, x.Field))
			updated := g.block.NewInsertValue(current, g.operand(x.Value), idx)
			g.locals[ref.Local.ID] = updated
		}
	case *mir.LoadIndex:
		ptr := g.block.NewExtractValue(g.operand(x.Target), 2)
		elem := g.block.NewGetElementPtr(ptr.Type().(*types.PointerType).ElemType, ptr, g.operand(x.Index))
		g.locals[x.Result.ID] = g.block.NewLoad(elem.ElemType, elem)
	case *mir.StoreIndex:
		ptr := g.block.NewExtractValue(g.operand(x.Target), 2)
		elem := g.block.NewGetElementPtr(ptr.Type().(*types.PointerType).ElemType, ptr, g.operand(x.Index))
		g.block.NewStore(g.operand(x.Value), elem)
	case *mir.ConstructStruct:
		g.locals[x.Result.ID] = g.constructStruct(x)
	case *mir.ConstructArray:
		g.locals[x.Result.ID] = g.constructArray(x)
	case *mir.ConstructEnum:
		g.locals[x.Result.ID] = g.constructEnum(x)
	case *mir.Discriminant:
		g.locals[x.Result.ID] = g.block.NewExtractValue(g.operand(x.Target), 0)
	case *mir.AccessVariantPayload:
		g.locals[x.Result.ID] = g.accessVariantPayload(x)
	case *mir.SizeOf:
		g.locals[x.Result.ID] = constant.NewInt(types.I64, int64(g.Types.byteSize(x.Type)))
	case *mir.Cast:
		g.locals[x.Result.ID] = g.lowerCast(x)
	case *mir.Destroy:
		g.lowerDestroy(x)
	case *mir.MoveOut:
		// No codegen effect by itself: its only job is suppressing the
		// Destroy the lowerer would otherwise have emitted (§4.7c), which
		// already happened in internal/mir.
	}
}

func (g *Generator) fieldIndex(target mir.Operand, field string) int {
	if lr, ok := target.(*mir.LocalRef); ok {
		if s, ok := lr.Local.Type.(*st.Struct); ok {
			for i, f := range s.Fields {
				if f.Name == field {
					return i
				}
			}
		}
	}
	return 0
}

func (g *Generator) lowerCall(c *mir.Call) {
	switch c.Func {
	case "__binop_+":
		g.locals[c.Result.ID] = g.numeric(c, addOp)
	case "__binop_-":
		g.locals[c.Result.ID] = g.numeric(c, subOp)
	case "__binop_*":
		g.locals[c.Result.ID] = g.numeric(c, mulOp)
	case "__binop_/":
		g.locals[c.Result.ID] = g.numeric(c, divOp)
	case "__binop_%":
		g.locals[c.Result.ID] = g.numeric(c, remOp)
	case "__binop_==":
		g.locals[c.Result.ID] = g.compare(c, enum.IPredEQ, enum.FPredOEQ)
	case "__binop_!=":
		g.locals[c.Result.ID] = g.compare(c, enum.IPredNE, enum.FPredONE)
	case "__binop_<":
		g.locals[c.Result.ID] = g.compare(c, enum.IPredSLT, enum.FPredOLT)
	case "__binop_<=":
		g.locals[c.Result.ID] = g.compare(c, enum.IPredSLE, enum.FPredOLE)
	case "__binop_>":
		g.locals[c.Result.ID] = g.compare(c, enum.IPredSGT, enum.FPredOGT)
	case "__binop_>=":
		g.locals[c.Result.ID] = g.compare(c, enum.IPredSGE, enum.FPredOGE)
	case "__binop_&&":
		g.locals[c.Result.ID] = g.block.NewAnd(g.operand(c.Args[0]), g.operand(c.Args[1]))
	case "__binop_||":
		g.locals[c.Result.ID] = g.block.NewOr(g.operand(c.Args[0]), g.operand(c.Args[1]))
	case "__unary_-":
		g.locals[c.Result.ID] = g.block.NewSub(constant.NewInt(types.I32, 0), g.operand(c.Args[0]))
	case "__unary_!":
		g.locals[c.Result.ID] = g.block.NewXor(g.operand(c.Args[0]), constant.True)
	case "__i32_eq":
		g.locals[c.Result.ID] = g.block.NewICmp(enum.IPredEQ, g.operand(c.Args[0]), g.operand(c.Args[1]))
	case "__array_len":
		g.locals[c.Result.ID] = g.block.NewExtractValue(g.operand(c.Args[0]), 0)
	case "__realise":
		g.locals[c.Result.ID] = g.operand(c.Args[0])
	case "__convert_error":
		g.locals[c.Result.ID] = g.operand(c.Args[0])
	default:
		if f, ok := g.funcs[c.Func]; ok {
			args := make([]value.Value, len(c.Args))
			for i, a := range c.Args {
				args[i] = g.operand(a)
			}
			g.locals[c.Result.ID] = g.block.NewCall(f, args...)
		}
	}
}

type binOp int

const (
	addOp binOp = iota
	subOp
	mulOp
	divOp
	remOp
)

func (g *Generator) numeric(c *mir.Call, op binOp) value.Value {
	x, y := g.operand(c.Args[0]), g.operand(c.Args[1])
	if _, float := x.Type().(*types.FloatType); float {
		switch op {
		case addOp:
			return g.block.NewFAdd(x, y)
		case subOp:
			return g.block.NewFSub(x, y)
		case mulOp:
			return g.block.NewFMul(x, y)
		case divOp:
			return g.block.NewFDiv(x, y)
		case remOp:
			return g.block.NewFRem(x, y)
		}
	}
	switch op {
	case addOp:
		return g.block.NewAdd(x, y)
	case subOp:
		return g.block.NewSub(x, y)
	case mulOp:
		return g.block.NewMul(x, y)
	case divOp:
		return g.block.NewSDiv(x, y)
	case remOp:
		return g.block.NewSRem(x, y)
	}
	return x
}

func (g *Generator) compare(c *mir.Call, ip enum.IPred, fp enum.FPred) value.Value {
	x, y := g.operand(c.Args[0]), g.operand(c.Args[1])
	if _, float := x.Type().(*types.FloatType); float {
		return g.block.NewFCmp(fp, x, y)
	}
	return g.block.NewICmp(ip, x, y)
}

func (g *Generator) constructStruct(c *mir.ConstructStruct) value.Value {
	lt := g.Types.Lower(c.Type)
	st2, ok := c.Type.(*st.Struct)
	if !ok {
		return constant.NewZeroInitializer(lt)
	}
	var agg value.Value = constant.NewZeroInitializer(lt)
	for i, f := range st2.Fields {
		agg = g.block.NewInsertValue(agg, g.operand(c.Fields[f.Name]), uint64(i))
	}
	return agg
}

func (g *Generator) constructArray(c *mir.ConstructArray) value.Value {
	if !c.Dynamic {
		elemT := g.Types.Lower(elementTypeOf(c.Type))
		arrT := types.NewArray(uint64(len(c.Elements)), elemT)
		var agg value.Value = constant.NewZeroInitializer(arrT)
		for i, e := range c.Elements {
			agg = g.block.NewInsertValue(agg, g.operand(e), uint64(i))
		}
		return agg
	}
	elemT := g.Types.Lower(elementTypeOf(c.Type))
	n := len(c.Elements)
	if n == 0 {
		n = 1
	}
	cap := nextPowerOfTwo(n)
	bytes := constant.NewInt(types.I64, int64(cap)*elemSize(elemT))
	raw := g.block.NewCall(g.rt("malloc"), bytes)
	dataPtr := g.block.NewBitCast(raw, types.NewPointer(elemT))
	for i, e := range c.Elements {
		gep := g.block.NewGetElementPtr(elemT, dataPtr, constant.NewInt(types.I32, int64(i)))
		g.block.NewStore(g.operand(e), gep)
	}
	lt := types.NewStruct(types.I32, types.I32, types.NewPointer(elemT))
	var agg value.Value = constant.NewZeroInitializer(lt)
	agg = g.block.NewInsertValue(agg, constant.NewInt(types.I32, int64(len(c.Elements))), 0)
	agg = g.block.NewInsertValue(agg, constant.NewInt(types.I32, int64(cap)), 1)
	agg = g.block.NewInsertValue(agg, dataPtr, 2)
	return agg
}

func elementTypeOf(t st.Type) st.Type {
	switch x := t.(type) {
	case *st.Array:
		return x.Elem
	case *st.DynamicArray:
		return x.Elem
	}
	return &st.Builtin{Kind: st.I32}
}

func elemSize(t types.Type) int64 {
	if it, ok := t.(*types.IntType); ok {
		return int64(it.BitSize / 8)
	}
	return 8
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

func (g *Generator) constructEnum(c *mir.ConstructEnum) value.Value {
	layout, ok := g.Types.enums[c.EnumName]
	var lt *types.StructType
	dataBytes := 1
	if ok {
		lt = layout.llvm
		dataBytes = layout.dataBytes
	} else {
		// Result/Maybe synthesize their layout lazily from the constructed
		// operand types, since they are never registered as table enums.
		payload := 0
		for _, v := range c.Values {
			if s := g.Types.byteSize(operandType(v)); s > payload {
				payload = s
			}
		}
		if payload == 0 {
			payload = 1
		}
		dataBytes = payload
		lt = types.NewStruct(types.I32, types.NewArray(uint64(payload), types.I8))
	}

	var agg value.Value = constant.NewZeroInitializer(lt)
	agg = g.block.NewInsertValue(agg, constant.NewInt(types.I32, int64(c.VariantIndex)), 0)
	if len(c.Values) > 0 {
		val := g.operand(c.Values[0])
		slabPtr := g.block.NewAlloca(types.NewArray(uint64(dataBytes), types.I8))
		typed := g.block.NewBitCast(slabPtr, types.NewPointer(val.Type()))
		g.block.NewStore(val, typed)
		loaded := g.block.NewLoad(types.NewArray(uint64(dataBytes), types.I8), slabPtr)
		agg = g.block.NewInsertValue(agg, loaded, 1)
	}
	return agg
}

func operandType(o mir.Operand) st.Type {
	if o == nil {
		return &st.Builtin{Kind: st.Blank}
	}
	return o.OperandType()
}

func (g *Generator) accessVariantPayload(a *mir.AccessVariantPayload) value.Value {
	slab := g.block.NewExtractValue(g.operand(a.Target), 1)
	slabPtr := g.block.NewAlloca(slab.Type())
	g.block.NewStore(slab, slabPtr)
	resultType := g.Types.Lower(resultOperandType(a))
	typed := g.block.NewBitCast(slabPtr, types.NewPointer(resultType))
	return g.block.NewLoad(resultType, typed)
}

func resultOperandType(a *mir.AccessVariantPayload) st.Type {
	if lr, ok := a.Target.(*mir.LocalRef); ok {
		if lr.Local.Type != nil {
			if g2, ok := lr.Local.Type.(*st.GenericRef); ok && len(g2.Args) > a.VariantIndex {
				return g2.Args[a.VariantIndex]
			}
		}
	}
	return &st.Builtin{Kind: st.I64}
}

func (g *Generator) lowerCast(c *mir.Cast) value.Value {
	v := g.operand(c.Operand)
	target := g.Types.Lower(c.Type)
	srcInt, srcIsInt := v.Type().(*types.IntType)
	dstInt, dstIsInt := target.(*types.IntType)
	if srcIsInt && dstIsInt {
		if dstInt.BitSize > srcInt.BitSize {
			return g.block.NewSExt(v, target)
		}
		if dstInt.BitSize < srcInt.BitSize {
			return g.block.NewTrunc(v, target)
		}
		return v
	}
	return g.block.NewBitCast(v, target)
}

// lowerDestroy emits the RAII free call for a dynamic array or Own<T>
// binding (§4.8 RAII): bitcast the payload pointer to i8* and call free.
func (g *Generator) lowerDestroy(d *mir.Destroy) {
	v := g.operand(d.Target)
	st2, ok := v.Type().(*types.StructType)
	if ok && len(st2.Fields) == 3 {
		// DynamicArray {len, cap, data*}
		ptr := g.block.NewExtractValue(v, 2)
		raw := g.block.NewBitCast(ptr, types.NewPointer(types.I8))
		g.block.NewCall(g.rt("free"), raw)
		return
	}
	if _, ok := v.Type().(*types.PointerType); ok {
		raw := g.block.NewBitCast(v, types.NewPointer(types.I8))
		g.block.NewCall(g.rt("free"), raw)
	}
}

func (g *Generator) lowerTerminator(t mir.Terminator, retType st.Type) {
	switch x := t.(type) {
	case *mir.Return:
		if x.Value == nil {
			g.block.NewRet(nil)
			return
		}
		g.block.NewRet(g.operand(x.Value))
	case *mir.Goto:
		g.block.NewBr(g.blocks[x.Target])
	case *mir.Branch:
		g.block.NewCondBr(g.operand(x.Condition), g.blocks[x.True], g.blocks[x.False])
	case *mir.Unreachable:
		g.block.NewUnreachable()
	}
}
