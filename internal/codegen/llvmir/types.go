// Package llvmir lowers checked, monomorphized MIR to LLVM IR using
// llir/llvm's object model (§4.8), in place of the teacher's hand-rolled
// textual-IR generator (internal/codegen/llvm/generator.go built its
// output with a strings.Builder and manual SSA register bookkeeping).
// llir/llvm gives this package a typed AST for LLVM modules/functions/
// instructions so enum tagged-union layout, the Result<T,E> ABI, and RAII
// destructor calls are built as real ir.Instruction values rather than
// printf-style text assembly.
package llvmir

import (
	"github.com/llir/llvm/ir/types"

	st "github.com/sushi-lang/sushic/internal/types"
)

// TypeLowerer maps Sushi's §3 Type tagged union onto LLVM types, tracking
// the enum/struct layouts computed along the way so SizeOf queries and
// the `main` Ok-payload memcpy (§4.8) can reuse them without
// re-deriving layout twice.
type TypeLowerer struct {
	structs map[string]*types.StructType
	enums   map[string]*enumLayout
}

type enumLayout struct {
	llvm      *types.StructType // {i32 tag, [N x i8] data}
	dataBytes int
}

// NewTypeLowerer creates an empty lowerer; structs/enums are registered via
// RegisterStruct/RegisterEnum before any type referencing them is lowered,
// mirroring the two-phase "declare all named types, then lower bodies"
// approach LLVM requires for structs that reference each other.
func NewTypeLowerer() *TypeLowerer {
	return &TypeLowerer{
		structs: make(map[string]*types.StructType),
		enums:   make(map[string]*enumLayout),
	}
}

// Lower maps a Sushi Type to its LLVM representation.
func (tl *TypeLowerer) Lower(t st.Type) types.Type {
	switch x := t.(type) {
	case *st.Builtin:
		return lowerBuiltin(x.Kind)
	case *st.Array:
		return types.NewArray(uint64(x.Size), tl.Lower(x.Elem))
	case *st.DynamicArray:
		// {i32 len, i32 cap, T* data} per §3.
		return types.NewStruct(types.I32, types.I32, types.NewPointer(tl.Lower(x.Elem)))
	case *st.Struct:
		if s, ok := tl.structs[x.Name]; ok {
			return s
		}
		return tl.RegisterStruct(x)
	case *st.Enum:
		if e, ok := tl.enums[x.Name]; ok {
			return e.llvm
		}
		return tl.RegisterEnum(x).llvm
	case *st.Reference:
		return types.NewPointer(tl.Lower(x.Inner))
	case *st.Pointer:
		return types.NewPointer(tl.Lower(x.Inner))
	case *st.GenericRef:
		// Intrinsic generics (Result/Maybe/Own/HashMap/List) are never
		// resolved to a Struct/Enum table entry (they are codegen-intrinsic,
		// per §4.1); their runtime layout is produced directly here.
		return tl.lowerIntrinsicGeneric(x)
	}
	return types.Void
}

func lowerBuiltin(k st.BuiltinKind) types.Type {
	switch k {
	case st.I8, st.U8:
		return types.I8
	case st.I16, st.U16:
		return types.I16
	case st.I32, st.U32:
		return types.I32
	case st.I64, st.U64:
		return types.I64
	case st.F32:
		return types.Float
	case st.F64:
		return types.Double
	case st.Bool:
		return types.I1
	case st.String:
		// Fat pointer {i8* data, i32 size} per §3.
		return types.NewStruct(types.NewPointer(types.I8), types.I32)
	case st.Blank:
		return types.Void
	case st.Stdin, st.Stdout, st.Stderr, st.File:
		return types.NewPointer(types.I8) // opaque libc FILE*/fd handle
	}
	return types.Void
}

// RegisterStruct declares a struct's LLVM layout from its field list.
func (tl *TypeLowerer) RegisterStruct(s *st.Struct) *types.StructType {
	fields := make([]types.Type, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = tl.Lower(f.Type)
	}
	lt := types.NewStruct(fields...)
	lt.TypeName = s.Name
	tl.structs[s.Name] = lt
	return lt
}

// RegisterEnum computes §4.8's tagged-union layout: {i32 tag, [N x i8] data}
// where N is the byte size of the largest variant's associated-value tuple.
// N is 0, not floored to 1, when no variant anywhere carries associated
// data (e.g. StdError) — the worked example in §8 ("Result<i32, StdError>
// totals 8 bytes") requires StdError's own data slab to contribute 0 bytes,
// not 1, to a containing Result's payload sizing.
func (tl *TypeLowerer) RegisterEnum(e *st.Enum) *enumLayout {
	maxBytes := 0
	for _, v := range e.Variants {
		size := 0
		for _, a := range v.Assoc {
			size += tl.byteSize(a)
		}
		if size > maxBytes {
			maxBytes = size
		}
	}
	lt := types.NewStruct(types.I32, types.NewArray(uint64(maxBytes), types.I8))
	lt.TypeName = e.Name
	layout := &enumLayout{llvm: lt, dataBytes: maxBytes}
	tl.enums[e.Name] = layout
	return layout
}

// EnumDataBytes returns a registered enum's associated-data slab size in
// bytes (the "N" in §3's `[N x i8]`), or 0 if name was never registered.
func (tl *TypeLowerer) EnumDataBytes(name string) int {
	if e, ok := tl.enums[name]; ok {
		return e.dataBytes
	}
	return 0
}

func (tl *TypeLowerer) lowerIntrinsicGeneric(g *st.GenericRef) types.Type {
	switch g.Base {
	case "Result", "Maybe":
		// Same shape as a 2-variant user enum: tag + max(payload sizes).
		var payload int
		for _, a := range g.Args {
			if s := tl.byteSize(a); s > payload {
				payload = s
			}
		}
		if payload == 0 {
			payload = 1
		}
		return types.NewStruct(types.I32, types.NewArray(uint64(payload), types.I8))
	case "Own":
		return types.NewPointer(tl.Lower(g.Args[0]))
	case "HashMap":
		// opaque handle into the runtime hashmap implementation; fields are
		// never accessed directly by generated code, only through mangled
		// extension-method calls (§4.8).
		return types.NewPointer(types.I8)
	case "List":
		return types.NewStruct(types.I32, types.I32, types.NewPointer(tl.Lower(g.Args[0])))
	}
	return types.Void
}

// byteSize returns a type's authoritative size in bytes, used both for
// enum-variant slab sizing and for the `main` C-ABI shim's Ok-payload
// memcpy (§4.8).
func (tl *TypeLowerer) byteSize(t st.Type) int {
	switch x := t.(type) {
	case *st.Builtin:
		return x.Kind.BitWidth() / 8
	case *st.Array:
		return x.Size * tl.byteSize(x.Elem)
	case *st.DynamicArray:
		return 4 + 4 + 8 // len, cap, data pointer
	case *st.Struct:
		total := 0
		for _, f := range x.Fields {
			total += tl.byteSize(f.Type)
		}
		return total
	case *st.Enum:
		if e, ok := tl.enums[x.Name]; ok {
			return 4 + e.dataBytes
		}
		return 4 + tl.RegisterEnum(x).dataBytes
	case *st.Reference, *st.Pointer:
		return 8
	case *st.GenericRef:
		switch x.Base {
		case "Own":
			return 8
		case "HashMap":
			return 8
		case "List":
			return 4 + 4 + 8
		case "Result", "Maybe":
			payload := 0
			for _, a := range x.Args {
				if s := tl.byteSize(a); s > payload {
					payload = s
				}
			}
			if payload == 0 {
				payload = 1
			}
			return 4 + payload
		}
	}
	return 8
}

// MangleExtension produces the generic-extension mangled symbol name of
// §4.8, e.g. `extend HashMap<string, i32> get` -> `HashMap__string_i32__get`.
func MangleExtension(base string, args []st.Type, method string) string {
	name := base + "__"
	for i, a := range args {
		if i > 0 {
			name += "_"
		}
		name += sanitizeIdent(a.String())
	}
	return name + "__" + method
}

func sanitizeIdent(s string) string {
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
