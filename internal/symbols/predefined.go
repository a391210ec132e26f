package symbols

import "github.com/sushi-lang/sushic/internal/types"

// seedPredefinedEnums registers the builtin enums every compilation starts
// with, exactly once, before any source file is collected (§4.1 "predefined
// enum seeding"). These are ordinary Enum entries; nothing downstream needs
// to know they weren't declared in source.
func seedPredefinedEnums(t *Tables) {
	str := &types.Builtin{Kind: types.String}
	i64 := &types.Builtin{Kind: types.I64}

	t.Enums.Set("FileMode", &types.Enum{
		Name: "FileMode",
		Variants: []types.EnumVariant{
			{Name: "Read"},
			{Name: "Write"},
			{Name: "Append"},
			{Name: "ReadWrite"},
		},
	})

	t.Enums.Set("SeekFrom", &types.Enum{
		Name: "SeekFrom",
		Variants: []types.EnumVariant{
			{Name: "Start", Assoc: []types.Type{i64}},
			{Name: "Current", Assoc: []types.Type{i64}},
			{Name: "End", Assoc: []types.Type{i64}},
		},
	})

	t.Enums.Set("StdError", &types.Enum{
		Name: "StdError",
		Variants: []types.EnumVariant{
			{Name: "EndOfStream"},
			{Name: "InvalidUtf8"},
			{Name: "Unknown", Assoc: []types.Type{str}},
		},
	})

	t.Enums.Set("IoError", &types.Enum{
		Name: "IoError",
		Variants: []types.EnumVariant{
			{Name: "NotFound", Assoc: []types.Type{str}},
			{Name: "PermissionDenied", Assoc: []types.Type{str}},
			{Name: "AlreadyExists", Assoc: []types.Type{str}},
			{Name: "InvalidSeek"},
			{Name: "Unknown", Assoc: []types.Type{str}},
		},
	})

	t.Enums.Set("ProcessError", &types.Enum{
		Name: "ProcessError",
		Variants: []types.EnumVariant{
			{Name: "SpawnFailed", Assoc: []types.Type{str}},
			{Name: "NonZeroExit", Assoc: []types.Type{i64}},
			{Name: "Unknown", Assoc: []types.Type{str}},
		},
	})

	t.Enums.Set("EnvError", &types.Enum{
		Name: "EnvError",
		Variants: []types.EnumVariant{
			{Name: "NotPresent", Assoc: []types.Type{str}},
			{Name: "InvalidUtf8", Assoc: []types.Type{str}},
		},
	})

	t.Enums.Set("MathError", &types.Enum{
		Name: "MathError",
		Variants: []types.EnumVariant{
			{Name: "DivisionByZero"},
			{Name: "Overflow"},
			{Name: "NegativeSqrt"},
		},
	})
}

// seedPredefinedGenerics registers the generic bases that the checker and
// codegen treat specially rather than as ordinary user structs/enums:
// Result, Maybe, Own (sugar forms resolved directly by types.Result /
// types.Maybe / types.Own) plus the two collection providers, HashMap and
// List, which additionally require an active `use` before their methods are
// reachable (§9 "Provider activation"). None of the five get a GenericStructs
// entry - their layout is intrinsic to the compiler, not user-declared AST -
// so PredefinedGenerics is a membership set consulted wherever collection or
// monomorphization must tell "ordinary user generic" apart from "intrinsic".
func seedPredefinedGenerics(t *Tables) {
	for _, name := range []string{"Result", "Maybe", "Own", "HashMap", "List"} {
		t.PredefinedGenerics[name] = true
	}
}
