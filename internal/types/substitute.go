package types

// Substitute recursively replaces every TypeParameter named in bindings with
// its bound concrete argument. It descends through GenericRef, Array,
// DynamicArray, Reference, Pointer and Iterator exactly as §4.3 requires.
// Struct/Enum are returned unchanged (their own field/variant substitution
// happens once, when the monomorphizer builds the concrete entry).
func Substitute(t Type, bindings map[string]Type) Type {
	switch x := t.(type) {
	case nil:
		return nil
	case *TypeParameter:
		if concrete, ok := bindings[x.Name]; ok {
			return concrete
		}
		return x
	case *GenericRef:
		args := make([]Type, len(x.Args))
		for i, a := range x.Args {
			args[i] = Substitute(a, bindings)
		}
		return &GenericRef{Base: x.Base, Args: args}
	case *Array:
		return &Array{Elem: Substitute(x.Elem, bindings), Size: x.Size}
	case *DynamicArray:
		return &DynamicArray{Elem: Substitute(x.Elem, bindings)}
	case *Reference:
		return &Reference{Inner: Substitute(x.Inner, bindings)}
	case *Pointer:
		return &Pointer{Inner: Substitute(x.Inner, bindings)}
	case *Iterator:
		return &Iterator{Elem: Substitute(x.Elem, bindings)}
	default:
		return t
	}
}

// SubstituteStruct returns a copy of s with every field type substituted.
func SubstituteStruct(s *Struct, name string, bindings map[string]Type) *Struct {
	fields := make([]StructField, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = StructField{Name: f.Name, Type: Substitute(f.Type, bindings)}
	}
	return &Struct{Name: name, Fields: fields}
}

// SubstituteEnum returns a copy of e with every variant's associated types
// substituted.
func SubstituteEnum(e *Enum, name string, bindings map[string]Type) *Enum {
	variants := make([]EnumVariant, len(e.Variants))
	for i, v := range e.Variants {
		assoc := make([]Type, len(v.Assoc))
		for j, a := range v.Assoc {
			assoc[j] = Substitute(a, bindings)
		}
		variants[i] = EnumVariant{Name: v.Name, Assoc: assoc}
	}
	return &Enum{Name: name, Variants: variants}
}

// CanonicalName builds the monomorphic entry name Base<arg1, arg2, ...>
// using each argument's canonical String() form, per §4.3.
func CanonicalName(base string, args []Type) string {
	if len(args) == 0 {
		return base
	}
	g := &GenericRef{Base: base, Args: args}
	return g.String()
}
