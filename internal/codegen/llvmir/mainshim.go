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

// emitMainShim builds the C-ABI `i32 main(int argc, char** argv)` wrapper
// around the Sushi-signature `user_main` described in §4.8. It is a no-op
// for library builds (no `main` function present).
func (g *Generator) emitMainShim(m *mir.Module) {
	userMain, ok := g.funcs["main"]
	if !ok {
		return
	}
	takesArgs := len(userMain.Params) == 1
	userMain.GlobalName = "user_main"

	i8p := types.NewPointer(types.I8)
	argc := ir.NewParam("argc", types.I32)
	argv := ir.NewParam("argv", types.NewPointer(i8p))
	cmain := g.Module.NewFunc("main", types.I32, argc, argv)

	entry := cmain.NewBlock("entry")

	cur := entry
	var callArgs []value.Value
	var argsSlabPtr value.Value
	if takesArgs {
		var dataPtr value.Value
		argsSlabPtr, dataPtr, cur = g.buildArgvConversion(cmain, entry, argc, argv)
		stringFat := types.NewStruct(i8p, types.I32)
		arrT := types.NewStruct(types.I32, types.I32, types.NewPointer(stringFat))
		var argsVal value.Value = constant.NewZeroInitializer(arrT)
		argsVal = cur.NewInsertValue(argsVal, argc, 0)
		argsVal = cur.NewInsertValue(argsVal, argc, 1)
		argsVal = cur.NewInsertValue(argsVal, dataPtr, 2)
		callArgs = []value.Value{argsVal}
	}

	result := cur.NewCall(userMain, callArgs...)
	tag := cur.NewExtractValue(result, 0)
	isErr := cur.NewICmp(enum.IPredNE, tag, constant.NewInt(types.I32, 0))

	errBlock := cmain.NewBlock("main_err")
	okBlock := cmain.NewBlock("main_ok")
	cur.NewCondBr(isErr, errBlock, okBlock)

	if takesArgs {
		raw := errBlock.NewBitCast(argsSlabPtr, i8p)
		errBlock.NewCall(g.rt("free"), raw)
	}
	errBlock.NewRet(constant.NewInt(types.I32, 1))

	okType := mainOkType(m)
	okLLVMType := g.Types.Lower(okType)
	payloadSlab := okBlock.NewExtractValue(result, 1)
	slabAlloca := okBlock.NewAlloca(payloadSlab.Type())
	okBlock.NewStore(payloadSlab, slabAlloca)
	typed := okBlock.NewBitCast(slabAlloca, types.NewPointer(okLLVMType))
	loaded := okBlock.NewLoad(okLLVMType, typed)
	payload := narrowOrWidenToI32(okBlock, loaded)
	if takesArgs {
		raw := okBlock.NewBitCast(argsSlabPtr, i8p)
		okBlock.NewCall(g.rt("free"), raw)
	}
	okBlock.NewRet(payload)
}

// mainOkType returns main's declared Ok payload type (an integer builtin
// per CE0106), falling back to i32 if main isn't present in m (library
// builds, where emitMainShim returns before reaching this call).
func mainOkType(m *mir.Module) st.Type {
	for _, fn := range m.Functions {
		if fn.Name == "main" {
			if ok, _, isResult := st.IsResult(fn.ReturnType); isResult {
				return ok
			}
		}
	}
	return &st.Builtin{Kind: st.I32}
}

// narrowOrWidenToI32 converts the loaded Ok payload to the C-ABI i32 main
// expects, sized by the type's authoritative byte size (§4.8): extend a
// narrower int, truncate a wider one, pass i32 through unchanged. Matches
// Generator.lowerCast's int-to-int conversion (sign-extend on widen).
func narrowOrWidenToI32(b *ir.Block, v value.Value) value.Value {
	it, ok := v.Type().(*types.IntType)
	if !ok {
		return v
	}
	switch {
	case it.BitSize == 32:
		return v
	case it.BitSize < 32:
		return b.NewSExt(v, types.I32)
	default:
		return b.NewTrunc(v, types.I32)
	}
}

// buildArgvConversion lowers argv/argc into a heap-allocated array of
// string fat pointers, calling strlen on each char* (§4.8, "Round-trip:
// argv"). Returns the raw i8* to the allocated slab (freed by the caller),
// a typed pointer to its first element, and the block where control
// resumes once the conversion loop completes (the caller must keep
// emitting into that block, not `entry`, since entry already branched
// away into the loop header).
func (g *Generator) buildArgvConversion(f *ir.Func, entry *ir.Block, argc *ir.Param, argv *ir.Param) (rawSlab value.Value, dataPtr value.Value, resume *ir.Block) {
	i8p := types.NewPointer(types.I8)
	stringFat := types.NewStruct(i8p, types.I32)

	elemBytes := constant.NewInt(types.I64, 16) // {i8*, i32} padded to 16 bytes
	count := entry.NewSExt(argc, types.I64)
	totalBytes := entry.NewMul(count, elemBytes)
	rawSlab = entry.NewCall(g.rt("malloc"), totalBytes)
	dataPtr = entry.NewBitCast(rawSlab, types.NewPointer(stringFat))

	idxAlloca := entry.NewAlloca(types.I32)
	entry.NewStore(constant.NewInt(types.I32, 0), idxAlloca)

	header := f.NewBlock("argv_head")
	body := f.NewBlock("argv_body")
	end := f.NewBlock("argv_end")
	entry.NewBr(header)

	idx := header.NewLoad(types.I32, idxAlloca)
	cond := header.NewICmp(enum.IPredSLT, idx, argc)
	header.NewCondBr(cond, body, end)

	idx64 := body.NewSExt(idx, types.I64)
	argvElemPtr := body.NewGetElementPtr(i8p, argv, idx64)
	cstr := body.NewLoad(i8p, argvElemPtr)
	length32 := body.NewTrunc(body.NewCall(g.rt("strlen"), cstr), types.I32)

	var fat value.Value = constant.NewZeroInitializer(stringFat)
	fat = body.NewInsertValue(fat, cstr, 0)
	fat = body.NewInsertValue(fat, length32, 1)
	dest := body.NewGetElementPtr(stringFat, dataPtr, idx64)
	body.NewStore(fat, dest)

	next := body.NewAdd(idx, constant.NewInt(types.I32, 1))
	body.NewStore(next, idxAlloca)
	body.NewBr(header)

	return rawSlab, dataPtr, end
}
