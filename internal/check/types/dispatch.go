package types

import (
	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/diag"
	st "github.com/sushi-lang/sushic/internal/types"
)

// intrinsicMethods lists the fixed-signature methods on the stdin/stdout/
// stderr/File builtin receivers (§4.6, third priority tier).
var intrinsicMethods = map[st.BuiltinKind]map[string]st.Type{
	st.Stdout: {"write": resultOf(blankT(), stdErrorRef())},
	st.Stderr: {"write": resultOf(blankT(), stdErrorRef())},
	st.Stdin:  {"read_line": resultOf(&st.Builtin{Kind: st.String}, stdErrorRef())},
	st.File:   {"read": resultOf(&st.Builtin{Kind: st.String}, ioErrorRef()), "close": resultOf(blankT(), ioErrorRef())},
}

func blankT() st.Type     { return &st.Builtin{Kind: st.Blank} }
func stdErrorRef() st.Type { return &st.Enum{Name: "StdError"} }
func ioErrorRef() st.Type  { return &st.Enum{Name: "IoError"} }
func resultOf(ok, err st.Type) st.Type { return st.Result(ok, err) }

// collectionMethod types the handful of Own/HashMap/List/Result/Maybe
// methods whose signature depends only on the generic's own type
// arguments, not on any user declaration (§4.6, fourth priority tier).
func (c *Checker) collectionMethod(recv *st.GenericRef, method string) (st.Type, bool) {
	switch recv.Base {
	case "Own":
		elem := recv.Args[0]
		switch method {
		case "get":
			return &st.Reference{Inner: elem}, true
		case "destroy":
			return blankT(), true
		}
	case "HashMap":
		k, v := recv.Args[0], recv.Args[1]
		switch method {
		case "get":
			return st.Maybe(v), true
		case "set":
			_ = k
			return blankT(), true
		case "len":
			return &st.Builtin{Kind: st.I32}, true
		}
	case "List":
		elem := recv.Args[0]
		switch method {
		case "push":
			return blankT(), true
		case "pop":
			return st.Maybe(elem), true
		case "len":
			return &st.Builtin{Kind: st.I32}, true
		}
	case "Result":
		switch method {
		case "realise":
			return recv.Args[0], true
		case "is_ok":
			return &st.Builtin{Kind: st.Bool}, true
		}
	case "Maybe":
		switch method {
		case "realise":
			return recv.Args[0], true
		case "is_some":
			return &st.Builtin{Kind: st.Bool}, true
		}
	}
	return nil, false
}

// arrayStringMethod types the fixed methods on arrays/dynamic arrays/strings
// (§4.6, fifth priority tier).
func (c *Checker) arrayStringMethod(recv st.Type, method string) (st.Type, bool) {
	switch x := recv.(type) {
	case *st.DynamicArray:
		switch method {
		case "push":
			return blankT(), true
		case "len", "cap":
			return &st.Builtin{Kind: st.I32}, true
		case "destroy":
			return blankT(), true
		}
	case *st.Array:
		if method == "len" {
			return &st.Builtin{Kind: st.I32}, true
		}
	case *st.Builtin:
		if x.Kind == st.String {
			switch method {
			case "len", "size":
				return &st.Builtin{Kind: st.I32}, true
			case "char_count":
				return &st.Builtin{Kind: st.I32}, true
			case "to_i32":
				return st.Result(&st.Builtin{Kind: st.I32}, stdErrorRef()), true
			}
		}
	}
	return nil, false
}

// inferMethodCall implements §4.6's dispatch priority order: enum
// constructors and struct constructors are parsed as EnumConstruct/
// StructLit, not MethodCall, so this function starts at the third tier.
func (c *Checker) inferMethodCall(mc *ast.MethodCall) st.Type {
	recv := c.infer(mc.Receiver)
	for _, arg := range mc.Args {
		c.infer(arg)
	}

	// Tier 3: intrinsic stdin/stdout/stderr/File methods.
	if b, ok := recv.(*st.Builtin); ok {
		if methods, ok := intrinsicMethods[b.Kind]; ok {
			if t, ok := methods[mc.Method]; ok {
				return t
			}
		}
	}

	// Tier 4: Result/Maybe/Own/HashMap/List methods.
	if g, ok := recv.(*st.GenericRef); ok {
		if t, ok := c.collectionMethod(g, mc.Method); ok {
			return t
		}
	}

	// Tier 5: array/string methods.
	if t, ok := c.arrayStringMethod(recv, mc.Method); ok {
		return t
	}

	// Tier 6: perk methods (declared method signatures on perks this
	// receiver's type implements).
	if t, ok := c.perkMethod(recv, mc.Method); ok {
		return t
	}

	// Tier 7: auto-derived hash.
	if mc.Method == "hash" {
		if c.Tables.Implements(recv.String(), "Hashable") {
			return &st.Builtin{Kind: st.U64}
		}
		c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeUnhashableType, mc.Span,
			"%s does not implement Hashable", recv.String())
		return &st.Builtin{Kind: st.U64}
	}

	// Tier 8: primitive methods (arithmetic helpers beyond operators -
	// none defined beyond what Tier 5 covers for strings/arrays; builtins
	// fall through to Tier 9).

	// Tier 9: user extension methods, concrete then generic-base.
	if fn, ok := c.Tables.GetExtension(recv.String(), mc.Method); ok {
		return fn.Return
	}
	if g, ok := recv.(*st.GenericRef); ok {
		if fn, ok := c.Tables.GetGenericExtension(g.Base, mc.Method); ok {
			return fn.Return
		}
	}

	c.Reporter.Errorf(diag.StageTypeCheck, diag.CodeNoSuchMethod, mc.Span,
		"%s has no method %q", recv.String(), mc.Method)
	return &st.Unknown{Name: "<method-error>"}
}

func (c *Checker) perkMethod(recv st.Type, method string) (st.Type, bool) {
	typeName := recv.String()
	for _, key := range c.Tables.PerkImpls.Order() {
		impl, _ := c.Tables.PerkImpls.Get(key)
		if impl.Decl == nil || impl.Decl.Target.String() != typeName {
			continue
		}
		perk, ok := c.Tables.Perks.Get(impl.Decl.PerkName)
		if !ok {
			continue
		}
		for _, sig := range perk.Methods {
			if sig.Name == method {
				return sig.ReturnType, true
			}
		}
	}
	return nil, false
}
