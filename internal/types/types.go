// Package types implements the Sushi type model (§3): a tagged union of
// builtins, aggregates, and the intermediate forms (Unknown, TypeParameter,
// GenericRef) that must not survive past monomorphization and AST rewrite.
package types

import (
	"fmt"
	"strings"
)

// Type is the closed tagged union described in §3. Equality of two Type
// values must ignore source spans; spans never appear on Type itself for
// that reason (they live on the AST nodes that carry a Type).
type Type interface {
	String() string
	typeNode()
}

// BuiltinKind enumerates the primitive Sushi types.
type BuiltinKind string

const (
	I8     BuiltinKind = "i8"
	I16    BuiltinKind = "i16"
	I32    BuiltinKind = "i32"
	I64    BuiltinKind = "i64"
	U8     BuiltinKind = "u8"
	U16    BuiltinKind = "u16"
	U32    BuiltinKind = "u32"
	U64    BuiltinKind = "u64"
	F32    BuiltinKind = "f32"
	F64    BuiltinKind = "f64"
	Bool   BuiltinKind = "bool"
	String BuiltinKind = "string"
	Blank  BuiltinKind = "blank"
	Stdin  BuiltinKind = "stdin"
	Stdout BuiltinKind = "stdout"
	Stderr BuiltinKind = "stderr"
	File   BuiltinKind = "file"
)

// IsInteger reports whether k is one of the signed/unsigned integer kinds.
func (k BuiltinKind) IsInteger() bool {
	switch k {
	case I8, I16, I32, I64, U8, U16, U32, U64:
		return true
	}
	return false
}

// IsFloat reports whether k is f32 or f64.
func (k BuiltinKind) IsFloat() bool {
	return k == F32 || k == F64
}

// IsSigned reports whether k is a signed integer kind.
func (k BuiltinKind) IsSigned() bool {
	switch k {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

// BitWidth returns the storage width in bits for integer and float kinds.
func (k BuiltinKind) BitWidth() int {
	switch k {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32, F32:
		return 32
	case I64, U64, F64, Stdin, Stdout, Stderr, File:
		return 64
	case Bool:
		return 1
	}
	return 0
}

// Builtin is a primitive type.
type Builtin struct {
	Kind BuiltinKind
}

func (*Builtin) typeNode()        {}
func (b *Builtin) String() string { return string(b.Kind) }

// Array is a fixed-length array whose size is known at parse time.
type Array struct {
	Elem Type
	Size int
}

func (*Array) typeNode()        {}
func (a *Array) String() string { return fmt.Sprintf("%s[%d]", a.Elem.String(), a.Size) }

// DynamicArray is a heap-backed, growable array: {i32 len, i32 cap, T* data}.
type DynamicArray struct {
	Elem Type
}

func (*DynamicArray) typeNode()        {}
func (d *DynamicArray) String() string { return d.Elem.String() + "[]" }

// StructField is one ordered field of a Struct.
type StructField struct {
	Name string
	Type Type
}

// Struct is looked up by name; two Struct values with the same Name are
// the same type (structural layout is not used for interchangeability).
type Struct struct {
	Name   string
	Fields []StructField
}

func (*Struct) typeNode()        {}
func (s *Struct) String() string { return s.Name }

// FieldByName returns the field with the given name, or (_, false).
func (s *Struct) FieldByName(name string) (StructField, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return StructField{}, false
}

// EnumVariant is one ordered variant of an Enum.
type EnumVariant struct {
	Name  string
	Assoc []Type
}

// Enum is a tagged union; Variants is ordered for deterministic layout and
// i32-discriminant assignment.
type Enum struct {
	Name     string
	Variants []EnumVariant
}

func (*Enum) typeNode()        {}
func (e *Enum) String() string { return e.Name }

// VariantByName returns the variant with the given name and its i32 tag.
func (e *Enum) VariantByName(name string) (EnumVariant, int, bool) {
	for i, v := range e.Variants {
		if v.Name == name {
			return v, i, true
		}
	}
	return EnumVariant{}, -1, false
}

// Reference is a zero-cost, non-owning borrow.
type Reference struct {
	Inner Type
}

func (*Reference) typeNode()        {}
func (r *Reference) String() string { return "&" + r.Inner.String() }

// Pointer is a heap-owned pointer, used only inside Own<T>.
type Pointer struct {
	Inner Type
}

func (*Pointer) typeNode()        {}
func (p *Pointer) String() string { return "*" + p.Inner.String() }

// Unknown is an unresolved symbol reference. It is a legal intermediate
// state between collection and the AST-transform pass (§9); it must never
// survive Pass 1.7 (AstTransformer).
type Unknown struct {
	Name string
}

func (*Unknown) typeNode()        {}
func (u *Unknown) String() string { return "?" + u.Name }

// TypeParameter appears only inside generic definitions; it must never
// appear in code after monomorphization.
type TypeParameter struct {
	Name string
}

func (*TypeParameter) typeNode()        {}
func (t *TypeParameter) String() string { return t.Name }

// GenericRef mentions a generic type by base name and argument list; it is
// replaced by a concrete Struct/Enum after monomorphization.
type GenericRef struct {
	Base string
	Args []Type
}

func (*GenericRef) typeNode() {}
func (g *GenericRef) String() string {
	parts := make([]string, len(g.Args))
	for i, a := range g.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", g.Base, strings.Join(parts, ", "))
}

// Iterator is produced by for-loops iterating over arrays.
type Iterator struct {
	Elem Type
}

func (*Iterator) typeNode()        {}
func (i *Iterator) String() string { return "Iterator<" + i.Elem.String() + ">" }

// Result builds the sugar GenericRef("Result", [ok, err]).
func Result(ok, err Type) Type {
	return &GenericRef{Base: "Result", Args: []Type{ok, err}}
}

// Maybe builds the sugar GenericRef("Maybe", [elem]).
func Maybe(elem Type) Type {
	return &GenericRef{Base: "Maybe", Args: []Type{elem}}
}

// Own builds the sugar GenericRef("Own", [elem]).
func Own(elem Type) Type {
	return &GenericRef{Base: "Own", Args: []Type{elem}}
}

// IsResult reports whether t is a Result<T,E> generic reference and, if so,
// returns its Ok/Err arguments.
func IsResult(t Type) (ok, err Type, yes bool) {
	g, isRef := t.(*GenericRef)
	if !isRef || g.Base != "Result" || len(g.Args) != 2 {
		return nil, nil, false
	}
	return g.Args[0], g.Args[1], true
}

// Equal reports structural equality of two types, ignoring any span data
// (spans never appear on Type - see the package doc).
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case *Builtin:
		y, ok := b.(*Builtin)
		return ok && x.Kind == y.Kind
	case *Array:
		y, ok := b.(*Array)
		return ok && x.Size == y.Size && Equal(x.Elem, y.Elem)
	case *DynamicArray:
		y, ok := b.(*DynamicArray)
		return ok && Equal(x.Elem, y.Elem)
	case *Struct:
		y, ok := b.(*Struct)
		return ok && x.Name == y.Name
	case *Enum:
		y, ok := b.(*Enum)
		return ok && x.Name == y.Name
	case *Reference:
		y, ok := b.(*Reference)
		return ok && Equal(x.Inner, y.Inner)
	case *Pointer:
		y, ok := b.(*Pointer)
		return ok && Equal(x.Inner, y.Inner)
	case *Unknown:
		y, ok := b.(*Unknown)
		return ok && x.Name == y.Name
	case *TypeParameter:
		y, ok := b.(*TypeParameter)
		return ok && x.Name == y.Name
	case *GenericRef:
		y, ok := b.(*GenericRef)
		if !ok || x.Base != y.Base || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case *Iterator:
		y, ok := b.(*Iterator)
		return ok && Equal(x.Elem, y.Elem)
	}
	return false
}

// ContainsUnresolved reports whether t (or anything it structurally embeds)
// is still Unknown, TypeParameter, or GenericRef - the invariant that must
// be false everywhere once monomorphization and AST rewrite have completed.
func ContainsUnresolved(t Type) bool {
	switch x := t.(type) {
	case nil:
		return false
	case *Unknown, *TypeParameter, *GenericRef:
		return true
	case *Array:
		return ContainsUnresolved(x.Elem)
	case *DynamicArray:
		return ContainsUnresolved(x.Elem)
	case *Reference:
		return ContainsUnresolved(x.Inner)
	case *Pointer:
		return ContainsUnresolved(x.Inner)
	case *Iterator:
		return ContainsUnresolved(x.Elem)
	case *Struct:
		for _, f := range x.Fields {
			if ContainsUnresolved(f.Type) {
				return true
			}
		}
	case *Enum:
		for _, v := range x.Variants {
			for _, a := range v.Assoc {
				if ContainsUnresolved(a) {
					return true
				}
			}
		}
	}
	return false
}
