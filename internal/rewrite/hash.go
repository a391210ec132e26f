package rewrite

import (
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/symbols"
	"github.com/sushi-lang/sushic/internal/types"
)

// HashDeriver implements §4.4's hash derivation: structs first, then
// enums, registering a synthetic Hashable implementation for every struct
// and enum that qualifies. Arrays get no registration of their own; an
// array field is judged inline by typeHashable. It never emits IR itself,
// and no package in this repository emits hash function bodies: the type
// checker reads Tables.Implements(name, "Hashable") only to type `.hash()`
// calls as u64.
type HashDeriver struct {
	Tables   *symbols.Tables
	Reporter *diag.Reporter

	// visiting guards direct self-recursion in enums (CE4002): a name is
	// present while its own hashability is being decided.
	visiting map[string]bool
}

// NewHashDeriver creates a HashDeriver over Tables already resolved by
// Transformer.Run.
func NewHashDeriver(t *symbols.Tables, r *diag.Reporter) *HashDeriver {
	return &HashDeriver{Tables: t, Reporter: r, visiting: make(map[string]bool)}
}

// Run derives hashability for every struct, then every enum, in
// insertion order, matching §4.4's "dependency-safe order" requirement
// (structs can only depend on earlier-declared structs/enums by value, so
// a single forward pass over each table, consulting already-decided
// results, is sufficient).
func (h *HashDeriver) Run() {
	h.Tables.Structs.Each(func(name string, s *types.Struct) {
		if h.structHashable(s) {
			h.Tables.SetPerkImpl(name, "Hashable", &symbols.PerkImpl{Synthetic: true})
		}
	})
	h.Tables.Enums.Each(func(name string, e *types.Enum) {
		if h.enumHashable(name, e) {
			h.Tables.SetPerkImpl(name, "Hashable", &symbols.PerkImpl{Synthetic: true})
		}
	})
}

func (h *HashDeriver) structHashable(s *types.Struct) bool {
	for _, f := range s.Fields {
		if !h.typeHashable(f.Type) {
			return false
		}
	}
	return true
}

func (h *HashDeriver) enumHashable(name string, e *types.Enum) bool {
	if h.visiting[name] {
		h.Reporter.Errorf(diag.StageRewrite, diag.CodeRecursiveEnumHash, diag.Span{},
			"enum %q is directly self-recursive without Own<T> indirection; cannot derive hash", name)
		return false
	}
	h.visiting[name] = true
	defer delete(h.visiting, name)

	for _, v := range e.Variants {
		for _, a := range v.Assoc {
			if !h.typeHashable(a) {
				return false
			}
		}
	}
	return true
}

// typeHashable reports whether t is hashable per §4.4: primitives always,
// an already-hashable struct/enum (consulted via the perk-implementation
// table, which SeedSyntheticHashable / prior derivations have populated),
// or a hashable array whose element is not itself an array.
func (h *HashDeriver) typeHashable(t types.Type) bool {
	switch x := t.(type) {
	case *types.Builtin:
		return true
	case *types.Struct:
		return h.Tables.Implements(x.Name, "Hashable")
	case *types.Enum:
		if h.visiting[x.Name] {
			h.Reporter.Errorf(diag.StageRewrite, diag.CodeRecursiveEnumHash, diag.Span{},
				"enum %q is directly self-recursive without Own<T> indirection; cannot derive hash", x.Name)
			return false
		}
		return h.Tables.Implements(x.Name, "Hashable")
	case *types.Array:
		if _, isArray := x.Elem.(*types.Array); isArray {
			h.Reporter.Error(diag.StageRewrite, diag.CodeArrayOfArrayHash, diag.Span{},
				"arrays of arrays cannot be hashed")
			return false
		}
		if _, isDyn := x.Elem.(*types.DynamicArray); isDyn {
			h.Reporter.Error(diag.StageRewrite, diag.CodeArrayOfArrayHash, diag.Span{},
				"arrays of dynamic arrays cannot be hashed")
			return false
		}
		return h.typeHashable(x.Elem)
	case *types.Reference:
		return h.typeHashable(x.Inner)
	case *types.Pointer:
		return h.typeHashable(x.Inner)
	default:
		return false
	}
}
