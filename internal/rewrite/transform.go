// Package rewrite implements §4.4: resolving every remaining Unknown type
// by name lookup, replacing GenericRef with its monomorphic concrete entry,
// and deriving hash implementations in dependency-safe order.
package rewrite

import (
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/symbols"
	"github.com/sushi-lang/sushic/internal/types"
)

// Transformer resolves Unknown/GenericRef types across every table entry.
type Transformer struct {
	Tables   *symbols.Tables
	Reporter *diag.Reporter
}

// NewTransformer creates a Transformer over monomorphized Tables.
func NewTransformer(t *symbols.Tables, r *diag.Reporter) *Transformer {
	return &Transformer{Tables: t, Reporter: r}
}

// Run resolves every Struct and Enum field/variant type in place.
func (tr *Transformer) Run() {
	tr.Tables.Structs.Each(func(_ string, s *types.Struct) {
		for i := range s.Fields {
			s.Fields[i].Type = tr.resolve(s.Fields[i].Type)
		}
	})
	tr.Tables.Enums.Each(func(_ string, e *types.Enum) {
		for i := range e.Variants {
			for j := range e.Variants[i].Assoc {
				e.Variants[i].Assoc[j] = tr.resolve(e.Variants[i].Assoc[j])
			}
		}
	})
	tr.Tables.Functions.Each(func(_ string, fn *symbols.FunctionEntry) {
		for i := range fn.Params {
			fn.Params[i].Type = tr.resolve(fn.Params[i].Type)
		}
		fn.Return = tr.resolve(fn.Return)
		fn.ErrorType = tr.resolve(fn.ErrorType)
	})
}

// resolve turns an Unknown(name) into the concrete Struct/Enum/Builtin it
// names, replaces a GenericRef with its monomorphic concrete Struct/Enum
// entry (looked up by canonical name), and recurses through Array,
// DynamicArray, Reference, Pointer, Iterator (§4.4).
func (tr *Transformer) resolve(t types.Type) types.Type {
	switch x := t.(type) {
	case nil:
		return nil
	case *types.Unknown:
		if s, ok := tr.Tables.Structs.Get(x.Name); ok {
			return s
		}
		if e, ok := tr.Tables.Enums.Get(x.Name); ok {
			return e
		}
		if b, ok := builtinByName(x.Name); ok {
			return b
		}
		tr.Reporter.Errorf(diag.StageRewrite, diag.CodeUnresolvedName, diag.Span{},
			"unresolved type name %q", x.Name)
		return x
	case *types.GenericRef:
		canon := types.CanonicalName(x.Base, x.Args)
		if s, ok := tr.Tables.Structs.Get(canon); ok {
			return s
		}
		if e, ok := tr.Tables.Enums.Get(canon); ok {
			return e
		}
		// Result/Maybe/Own/HashMap/List stay as GenericRef; their layout is
		// intrinsic to codegen rather than table-resident (§4.3).
		args := make([]types.Type, len(x.Args))
		for i, a := range x.Args {
			args[i] = tr.resolve(a)
		}
		return &types.GenericRef{Base: x.Base, Args: args}
	case *types.Array:
		return &types.Array{Elem: tr.resolve(x.Elem), Size: x.Size}
	case *types.DynamicArray:
		return &types.DynamicArray{Elem: tr.resolve(x.Elem)}
	case *types.Reference:
		return &types.Reference{Inner: tr.resolve(x.Inner)}
	case *types.Pointer:
		return &types.Pointer{Inner: tr.resolve(x.Inner)}
	case *types.Iterator:
		return &types.Iterator{Elem: tr.resolve(x.Elem)}
	default:
		return t
	}
}

func builtinByName(name string) (types.Type, bool) {
	switch types.BuiltinKind(name) {
	case types.I8, types.I16, types.I32, types.I64,
		types.U8, types.U16, types.U32, types.U64,
		types.F32, types.F64, types.Bool, types.String, types.Blank,
		types.Stdin, types.Stdout, types.Stderr, types.File:
		return &types.Builtin{Kind: types.BuiltinKind(name)}, true
	}
	return nil, false
}
