package mir

import (
	"fmt"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/symbols"
	"github.com/sushi-lang/sushic/internal/types"
)

// Lowerer converts scope/type/borrow-checked, monomorphized AST into MIR,
// mirroring the teacher's internal/mir/lowerer.go's walk structure (a
// single current-block cursor threaded through statement lowering, with a
// loop-context stack for break/continue) adapted to Sushi's simpler,
// concurrency-free control flow and to the Result/Own<T> RAII model of
// §4.8 in place of the teacher's legion/channel model.
type Lowerer struct {
	Tables *symbols.Tables

	fn           *Function
	block        *BasicBlock
	localCounter int
	blockCounter int
	locals       map[string]Local
	loopStack    []loopCtx
	owned        []string // names of dynamic-array/Own<T> bindings live in the current function, in declaration order
}

type loopCtx struct {
	header *BasicBlock
	end    *BasicBlock
}

// NewLowerer creates a Lowerer bound to the final symbol tables.
func NewLowerer(t *symbols.Tables) *Lowerer {
	return &Lowerer{Tables: t}
}

// LowerModule lowers every concrete function into one Module.
func (l *Lowerer) LowerModule() *Module {
	m := &Module{}
	l.Tables.Structs.Each(func(_ string, s *types.Struct) { m.Structs = append(m.Structs, s) })
	l.Tables.Enums.Each(func(_ string, e *types.Enum) { m.Enums = append(m.Enums, e) })
	l.Tables.Functions.Each(func(_ string, fn *symbols.FunctionEntry) {
		if fn.Decl == nil || fn.Decl.Body == nil {
			return
		}
		m.Functions = append(m.Functions, l.LowerFunction(fn))
	})
	return m
}

// LowerFunction lowers one concrete function body to a CFG.
func (l *Lowerer) LowerFunction(fn *symbols.FunctionEntry) *Function {
	l.localCounter = 0
	l.blockCounter = 0
	l.locals = make(map[string]Local)
	l.loopStack = nil
	l.owned = nil

	l.fn = &Function{Name: fn.Name, ReturnType: fn.Return}
	for _, p := range fn.Decl.Params {
		loc := l.newLocal(p.Name, p.Type)
		l.fn.Params = append(l.fn.Params, loc)
	}
	l.block = l.newBlock("entry")
	l.fn.Entry = l.block

	tail := l.lowerBlock(fn.Decl.Body)
	if l.block.Terminator == nil {
		l.emitScopeExitDestroys()
		l.block.Terminator = &Return{Value: l.wrapReturnValue(tail)}
	}
	return l.fn
}

// wrapReturnValue implements §4.6's Result-wrap idempotence at every return
// site: once resolveResultSugar has re-typed a function's declared return to
// Result<T,E>, a plain-T return value is auto-wrapped in Ok(value) so the
// emitted Return terminator always carries the function's real ABI type.
// A value that already has that exact Result<T,E> type (an explicit
// Ok(...)/Err(...) constructor call, or a propagated call already returning
// Result<T,E>) passes through unchanged.
func (l *Lowerer) wrapReturnValue(val Operand) Operand {
	if _, _, isResult := types.IsResult(l.fn.ReturnType); !isResult {
		return val
	}
	if val != nil && types.Equal(val.OperandType(), l.fn.ReturnType) {
		return val
	}

	var values []Operand
	if val != nil {
		values = []Operand{val}
	}
	wrapped := l.newTemp(l.fn.ReturnType)
	l.emit(&ConstructEnum{Result: wrapped, EnumName: "Result", Variant: "Ok", VariantIndex: 0, Values: values})
	return &LocalRef{Local: wrapped}
}

func (l *Lowerer) newLocal(name string, t types.Type) Local {
	loc := Local{ID: l.localCounter, Name: name, Type: t}
	l.localCounter++
	l.locals[name] = loc
	l.fn.Locals = append(l.fn.Locals, loc)
	if isOwned(t) {
		l.owned = append(l.owned, name)
	}
	return loc
}

func isOwned(t types.Type) bool {
	switch x := t.(type) {
	case *types.DynamicArray:
		return true
	case *types.GenericRef:
		return x.Base == "Own"
	}
	return false
}

func (l *Lowerer) newBlock(prefix string) *BasicBlock {
	b := &BasicBlock{Label: fmt.Sprintf("%s%d", prefix, l.blockCounter)}
	l.blockCounter++
	l.fn.Blocks = append(l.fn.Blocks, b)
	return b
}

func (l *Lowerer) emit(s Statement) {
	l.block.Statements = append(l.block.Statements, s)
}

// emitScopeExitDestroys issues a Destroy for every still-owned, non-moved
// local at the current scope exit (§4.8 RAII). MoveOut statements emitted
// earlier in the block for a given name suppress its destroy here; since
// this walk is per-straight-line-block rather than per-lexical-scope, a
// name already moved is tracked via l.owned removal in moveOut. Explicit
// `.destroy()` calls do not remove a name from l.owned.
func (l *Lowerer) emitScopeExitDestroys() {
	for _, name := range l.owned {
		loc, ok := l.locals[name]
		if !ok {
			continue
		}
		l.emit(&Destroy{Target: &LocalRef{Local: loc}})
	}
}

func (l *Lowerer) moveOut(name string) {
	loc, ok := l.locals[name]
	if !ok {
		return
	}
	l.emit(&MoveOut{Local: loc})
	for i, n := range l.owned {
		if n == name {
			l.owned = append(l.owned[:i], l.owned[i+1:]...)
			break
		}
	}
}

// lowerBlock lowers a *ast.Block's statements, returning the Operand for
// its tail expression (nil if the block has none or control already
// terminated).
func (l *Lowerer) lowerBlock(b *ast.Block) Operand {
	for _, stmt := range b.Stmts {
		if l.block.Terminator != nil {
			return nil
		}
		l.lowerStmt(stmt)
	}
	if l.block.Terminator != nil || b.Tail == nil {
		return nil
	}
	return l.lowerExpr(b.Tail)
}

func (l *Lowerer) lowerStmt(stmt ast.Stmt) {
	switch x := stmt.(type) {
	case *ast.Let:
		val := l.lowerExpr(x.Value)
		loc := l.newLocal(x.Name, x.Value.ExprType())
		l.emit(&Assign{Local: loc, RHS: val})
		if id, ok := x.Value.(*ast.Ident); ok {
			l.moveOut(id.Name)
		}
	case *ast.Assign:
		val := l.lowerExpr(x.Value)
		l.lowerAssignTarget(x.Target, val)
	case *ast.Return:
		var val Operand
		if x.Value != nil {
			val = l.lowerExpr(x.Value)
			if id, ok := x.Value.(*ast.Ident); ok {
				l.moveOut(id.Name)
			}
		}
		l.emitScopeExitDestroys()
		l.block.Terminator = &Return{Value: l.wrapReturnValue(val)}
	case *ast.ExprStmt:
		l.lowerExpr(x.X)
	case *ast.While:
		l.lowerWhile(x)
	case *ast.For:
		l.lowerFor(x)
	}
}

func (l *Lowerer) lowerAssignTarget(target ast.Expr, val Operand) {
	switch t := target.(type) {
	case *ast.Ident:
		loc, ok := l.locals[t.Name]
		if !ok {
			loc = l.newLocal(t.Name, target.ExprType())
		}
		l.emit(&Assign{Local: loc, RHS: val})
	case *ast.FieldAccess:
		recv := l.lowerExpr(t.Receiver)
		l.emit(&StoreField{Target: recv, Field: t.Field, Value: val})
	case *ast.Index:
		recv := l.lowerExpr(t.Receiver)
		idx := l.lowerExpr(t.Index)
		l.emit(&StoreIndex{Target: recv, Index: idx, Value: val})
	}
}

func (l *Lowerer) lowerWhile(w *ast.While) {
	header := l.newBlock("while_head")
	body := l.newBlock("while_body")
	end := l.newBlock("while_end")

	l.block.Terminator = &Goto{Target: header}
	l.block = header
	cond := l.lowerExpr(w.Cond)
	header.Terminator = &Branch{Condition: cond, True: body, False: end}

	l.block = body
	l.loopStack = append(l.loopStack, loopCtx{header: header, end: end})
	l.lowerBlock(w.Body)
	l.loopStack = l.loopStack[:len(l.loopStack)-1]
	if l.block.Terminator == nil {
		l.block.Terminator = &Goto{Target: header}
	}
	l.block = end
}

func (l *Lowerer) lowerFor(f *ast.For) {
	iter := l.lowerExpr(f.Iterable)
	i32 := &types.Builtin{Kind: types.I32}
	idxLoc := l.newLocal("__iter_idx_"+f.Var, i32)
	l.emit(&Assign{Local: idxLoc, RHS: &Literal{Type: i32, Value: int64(0)}})
	lenLoc := l.newLocal("__iter_len_"+f.Var, i32)
	l.emit(&Call{Result: lenLoc, Func: "__array_len", Args: []Operand{iter}})

	header := l.newBlock("for_head")
	body := l.newBlock("for_body")
	end := l.newBlock("for_end")

	l.block.Terminator = &Goto{Target: header}
	l.block = header
	condLoc := l.newTemp(&types.Builtin{Kind: types.Bool})
	l.emit(&Call{Result: condLoc, Func: "__binop_<", Args: []Operand{&LocalRef{Local: idxLoc}, &LocalRef{Local: lenLoc}}})
	header.Terminator = &Branch{Condition: &LocalRef{Local: condLoc}, True: body, False: end}

	l.block = body
	elemLoc := l.newLocal(f.Var, f.Iterable.ExprType())
	l.emit(&LoadIndex{Result: elemLoc, Target: iter, Index: &LocalRef{Local: idxLoc}})
	l.loopStack = append(l.loopStack, loopCtx{header: header, end: end})
	l.lowerBlock(f.Body)
	l.loopStack = l.loopStack[:len(l.loopStack)-1]
	if l.block.Terminator == nil {
		nextIdx := l.newTemp(i32)
		l.emit(&Call{Result: nextIdx, Func: "__binop_+", Args: []Operand{&LocalRef{Local: idxLoc}, &Literal{Type: i32, Value: int64(1)}}})
		l.emit(&Assign{Local: idxLoc, RHS: &LocalRef{Local: nextIdx}})
		l.block.Terminator = &Goto{Target: header}
	}
	l.block = end
}

func (l *Lowerer) lowerExpr(e ast.Expr) Operand {
	switch x := e.(type) {
	case *ast.IntLit:
		return &Literal{Type: e.ExprType(), Value: x.Value}
	case *ast.FloatLit:
		return &Literal{Type: e.ExprType(), Value: x.Value}
	case *ast.BoolLit:
		return &Literal{Type: e.ExprType(), Value: x.Value}
	case *ast.StringLit:
		return &Literal{Type: e.ExprType(), Value: x.Value}
	case *ast.Ident:
		if loc, ok := l.locals[x.Name]; ok {
			return &LocalRef{Local: loc}
		}
		res := l.newTemp(e.ExprType())
		l.emit(&Call{Result: res, Func: x.Name})
		return &LocalRef{Local: res}
	case *ast.Binary:
		return l.lowerBinary(x)
	case *ast.Unary:
		operand := l.lowerExpr(x.Operand)
		res := l.newTemp(e.ExprType())
		l.emit(&Call{Result: res, Func: "__unary_" + string(x.Op), Args: []Operand{operand}})
		return &LocalRef{Local: res}
	case *ast.Call:
		args := l.lowerArgs(x.Args)
		res := l.newTemp(e.ExprType())
		l.emit(&Call{Result: res, Func: x.Callee, Args: args})
		return &LocalRef{Local: res}
	case *ast.MethodCall:
		recv := l.lowerExpr(x.Receiver)
		args := append([]Operand{recv}, l.lowerArgs(x.Args)...)
		res := l.newTemp(e.ExprType())
		l.emit(&Call{Result: res, Func: mangleMethod(x.Receiver.ExprType(), x.Method), Args: args})
		return &LocalRef{Local: res}
	case *ast.FieldAccess:
		recv := l.lowerExpr(x.Receiver)
		res := l.newTemp(e.ExprType())
		l.emit(&LoadField{Result: res, Target: recv, Field: x.Field})
		return &LocalRef{Local: res}
	case *ast.Index:
		recv := l.lowerExpr(x.Receiver)
		idx := l.lowerExpr(x.Index)
		res := l.newTemp(e.ExprType())
		l.emit(&LoadIndex{Result: res, Target: recv, Index: idx})
		return &LocalRef{Local: res}
	case *ast.ArrayLit:
		elems := l.lowerArgs(x.Elements)
		res := l.newTemp(e.ExprType())
		l.emit(&ConstructArray{Result: res, Type: e.ExprType(), Elements: elems, Dynamic: x.Dynamic})
		return &LocalRef{Local: res}
	case *ast.StructLit:
		fields := make(map[string]Operand, len(x.Fields))
		for _, f := range x.Fields {
			fields[f.Name] = l.lowerExpr(f.Value)
		}
		res := l.newTemp(e.ExprType())
		l.emit(&ConstructStruct{Result: res, Type: e.ExprType(), Fields: fields})
		return &LocalRef{Local: res}
	case *ast.EnumConstruct:
		args := l.lowerArgs(x.Args)
		idx := l.variantIndex(x.EnumName, x.Variant)
		res := l.newTemp(e.ExprType())
		l.emit(&ConstructEnum{Result: res, EnumName: x.EnumName, Variant: x.Variant, VariantIndex: idx, Values: args})
		return &LocalRef{Local: res}
	case *ast.Ref:
		// Zero-cost: a reference lowers to the same operand as its referent;
		// the borrow checker (§4.7) has already verified lifetime safety, so
		// no runtime representation distinguishes "owner" from "borrow".
		return l.lowerExpr(x.Inner)
	case *ast.Block:
		return l.lowerBlock(x)
	case *ast.If:
		return l.lowerIf(x)
	case *ast.Match:
		return l.lowerMatch(x)
	case *ast.Try:
		return l.lowerTry(x.Inner, false)
	case *ast.TryOrSynthesize:
		return l.lowerTry(x.Inner, true)
	case *ast.Realise:
		inner := l.lowerExpr(x.Inner)
		def := l.lowerExpr(x.Default)
		res := l.newTemp(e.ExprType())
		l.emit(&Call{Result: res, Func: "__realise", Args: []Operand{inner, def}})
		return &LocalRef{Local: res}
	}
	return &Literal{Type: e.ExprType(), Value: nil}
}

func (l *Lowerer) lowerArgs(exprs []ast.Expr) []Operand {
	out := make([]Operand, len(exprs))
	for i, a := range exprs {
		out[i] = l.lowerExpr(a)
	}
	return out
}

func (l *Lowerer) lowerBinary(b *ast.Binary) Operand {
	left := l.lowerExpr(b.Left)
	right := l.lowerExpr(b.Right)
	res := l.newTemp(b.ExprType())
	l.emit(&Call{Result: res, Func: "__binop_" + string(b.Op), Args: []Operand{left, right}})
	return &LocalRef{Local: res}
}

func (l *Lowerer) lowerIf(i *ast.If) Operand {
	cond := l.lowerExpr(i.Cond)
	thenB := l.newBlock("if_then")
	var elseB *BasicBlock
	joinB := l.newBlock("if_join")

	branch := &Branch{Condition: cond, True: thenB}
	if i.Else != nil {
		elseB = l.newBlock("if_else")
		branch.False = elseB
	} else {
		branch.False = joinB
	}
	l.block.Terminator = branch

	resultType := i.ExprType()
	var result *Local
	if !isBlank(resultType) {
		loc := l.newTemp(resultType)
		result = &loc
	}

	l.block = thenB
	thenVal := l.lowerBlock(i.Then)
	if l.block.Terminator == nil {
		if result != nil && thenVal != nil {
			l.emit(&Assign{Local: *result, RHS: thenVal})
		}
		l.block.Terminator = &Goto{Target: joinB}
	}

	if i.Else != nil {
		l.block = elseB
		elseVal := l.lowerBlock(i.Else)
		if l.block.Terminator == nil {
			if result != nil && elseVal != nil {
				l.emit(&Assign{Local: *result, RHS: elseVal})
			}
			l.block.Terminator = &Goto{Target: joinB}
		}
	}

	l.block = joinB
	if result != nil {
		return &LocalRef{Local: *result}
	}
	return nil
}

func (l *Lowerer) lowerMatch(m *ast.Match) Operand {
	scrutinee := l.lowerExpr(m.Scrutinee)
	tagLoc := l.newTemp(&types.Builtin{Kind: types.I32})
	l.emit(&Discriminant{Result: tagLoc, Target: scrutinee})

	resultType := m.ExprType()
	var result *Local
	if !isBlank(resultType) {
		loc := l.newTemp(resultType)
		result = &loc
	}
	joinB := l.newBlock("match_join")

	cur := l.block
	for i, arm := range m.Arms {
		armB := l.newBlock("match_arm")
		nextB := joinB
		if i < len(m.Arms)-1 {
			nextB = l.newBlock("match_next")
		}
		ep, ok := arm.Pattern.(*ast.EnumPattern)
		var idx int
		if ok {
			l.block = cur
			idx = l.variantIndex(ep.EnumName, ep.Variant)
			cond := l.eqTag(tagLoc, idx)
			cur.Terminator = &Branch{Condition: cond, True: armB, False: nextB}
		} else {
			cur.Terminator = &Goto{Target: armB}
		}

		l.block = armB
		if ok {
			for mi, name := range ep.Bindings {
				bindLoc := l.newLocal(name, nil)
				l.emit(&AccessVariantPayload{Result: bindLoc, Target: scrutinee, VariantIndex: idx, MemberIndex: mi})
			}
		}
		armVal := l.lowerExpr(arm.Body)
		if l.block.Terminator == nil {
			if result != nil && armVal != nil {
				l.emit(&Assign{Local: *result, RHS: armVal})
			}
			l.block.Terminator = &Goto{Target: joinB}
		}

		cur = nextB
		if i < len(m.Arms)-1 {
			l.block = cur
		}
	}

	l.block = joinB
	if result != nil {
		return &LocalRef{Local: *result}
	}
	return nil
}

func (l *Lowerer) eqTag(tag Local, idx int) Operand {
	res := l.newTemp(&types.Builtin{Kind: types.Bool})
	l.emit(&Call{Result: res, Func: "__i32_eq", Args: []Operand{
		&LocalRef{Local: tag},
		&Literal{Type: &types.Builtin{Kind: types.I32}, Value: int64(idx)},
	}})
	return &LocalRef{Local: res}
}

// lowerTry lowers `?`/`??`: branch on the inner Result's discriminant,
// early-returning Err on the Err arm (synthesizing a conversion call when
// synth is true, per §4.6's `??` semantics) and continuing with the
// unwrapped Ok payload otherwise.
func (l *Lowerer) lowerTry(inner ast.Expr, synth bool) Operand {
	res := l.lowerExpr(inner)
	tagLoc := l.newTemp(&types.Builtin{Kind: types.I32})
	l.emit(&Discriminant{Result: tagLoc, Target: res})

	errB := l.newBlock("try_err")
	okB := l.newBlock("try_ok")
	cond := l.eqTag(tagLoc, 0) // Ok is variant index 0 by convention
	l.block.Terminator = &Branch{Condition: cond, True: okB, False: errB}

	l.block = errB
	errVal := l.newTemp(nil)
	l.emit(&AccessVariantPayload{Result: errVal, Target: res, VariantIndex: 1, MemberIndex: 0})
	var wrapped Operand = &LocalRef{Local: errVal}
	if synth {
		conv := l.newTemp(nil)
		l.emit(&Call{Result: conv, Func: "__convert_error", Args: []Operand{wrapped}})
		wrapped = &LocalRef{Local: conv}
	}
	retVal := l.newTemp(nil)
	l.emit(&ConstructEnum{Result: retVal, EnumName: "Result", Variant: "Err", VariantIndex: 1, Values: []Operand{wrapped}})
	l.emitScopeExitDestroys()
	l.block.Terminator = &Return{Value: &LocalRef{Local: retVal}}

	l.block = okB
	okLoc := l.newTemp(inner.ExprType())
	l.emit(&AccessVariantPayload{Result: okLoc, Target: res, VariantIndex: 0, MemberIndex: 0})
	return &LocalRef{Local: okLoc}
}

func (l *Lowerer) newTemp(t types.Type) Local {
	loc := Local{ID: l.localCounter, Name: fmt.Sprintf("%%t%d", l.localCounter), Type: t}
	l.localCounter++
	l.fn.Locals = append(l.fn.Locals, loc)
	return loc
}

func (l *Lowerer) variantIndex(enumName, variant string) int {
	if en, ok := l.Tables.Enums.Get(enumName); ok {
		if _, idx, ok := en.VariantByName(variant); ok {
			return idx
		}
	}
	if variant == "Ok" || variant == "Some" {
		return 0
	}
	return 1
}

func isBlank(t types.Type) bool {
	b, ok := t.(*types.Builtin)
	return ok && b.Kind == types.Blank
}

// mangleMethod produces the generic-extension mangled name of §4.8
// ("HashMap__string_i32__get") when the receiver is a GenericRef, else the
// "Type__method" concrete-extension name.
func mangleMethod(recv types.Type, method string) string {
	g, ok := recv.(*types.GenericRef)
	if !ok {
		return recv.String() + "__" + method
	}
	name := g.Base + "__"
	for i, a := range g.Args {
		if i > 0 {
			name += "_"
		}
		name += mangleTypeName(a)
	}
	return name + "__" + method
}

func mangleTypeName(t types.Type) string {
	s := t.String()
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
			out = append(out, c)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
