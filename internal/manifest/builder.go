package manifest

import (
	"github.com/sushi-lang/sushic/internal/symbols"
	st "github.com/sushi-lang/sushic/internal/types"
)

// BuildFromTables assembles a Manifest from a compilation's collected
// symbol tables. Sushi has no visibility modifier in §1/§3 (no `pub`
// keyword in the type model), so every top-level declaration the collector
// recorded is treated as public — the manifest's "public_functions" /
// "public_constants" naming describes the field's role in a consuming
// build, not a filter this compiler enforces.
func BuildFromTables(tables *symbols.Tables, libraryName, compiledAt, compilerVersion string) Manifest {
	m := Manifest{
		SushiLibVersion: "1.0",
		LibraryName:     libraryName,
		CompiledAt:      compiledAt,
		Platform:        Platform(),
		CompilerVersion: compilerVersion,
	}

	for _, name := range tables.Functions.Order() {
		fn, _ := tables.Functions.Get(name)
		m.PublicFunctions = append(m.PublicFunctions, functionDescriptor(fn))
	}
	for _, name := range tables.GenericFunctions.Order() {
		fn, _ := tables.GenericFunctions.Get(name)
		m.PublicFunctions = append(m.PublicFunctions, functionDescriptor(fn))
	}

	for _, name := range tables.Constants.Order() {
		c, _ := tables.Constants.Get(name)
		m.PublicConstants = append(m.PublicConstants, ConstantDescriptor{
			Name: c.Name,
			Type: c.Type.String(),
		})
	}

	for _, name := range tables.Structs.Order() {
		s, _ := tables.Structs.Get(name)
		fields := make([]ParamDescriptor, len(s.Fields))
		for i, f := range s.Fields {
			fields[i] = ParamDescriptor{Name: f.Name, Type: f.Type.String()}
		}
		m.Structs = append(m.Structs, StructDescriptor{Name: s.Name, Fields: fields})
	}

	for _, name := range tables.Enums.Order() {
		e, _ := tables.Enums.Get(name)
		variants := make([]VariantDescriptor, len(e.Variants))
		for i, v := range e.Variants {
			variants[i] = variantDescriptor(v)
		}
		m.Enums = append(m.Enums, EnumDescriptor{Name: e.Name, Variants: variants})
	}

	for _, use := range tables.StdlibUses {
		m.Dependencies = append(m.Dependencies, use.ModulePath)
	}

	return m
}

func functionDescriptor(fn *symbols.FunctionEntry) FunctionDescriptor {
	params := make([]ParamDescriptor, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = ParamDescriptor{Name: p.Name, Type: p.Type.String()}
	}
	return FunctionDescriptor{
		Name:       fn.Name,
		Params:     params,
		ReturnType: fn.Return.String(),
		IsGeneric:  len(fn.TypeParams) > 0,
		TypeParams: append([]string(nil), fn.TypeParams...),
	}
}

// variantDescriptor renders one enum variant. A variant with more than one
// associated value has no single canonical type; its associated tuple is
// rendered as a parenthesized, comma-joined list, e.g. "(i32, string)".
func variantDescriptor(v st.EnumVariant) VariantDescriptor {
	if len(v.Assoc) == 0 {
		return VariantDescriptor{Name: v.Name, HasData: false, DataType: nil}
	}
	if len(v.Assoc) == 1 {
		s := v.Assoc[0].String()
		return VariantDescriptor{Name: v.Name, HasData: true, DataType: &s}
	}
	joined := "("
	for i, a := range v.Assoc {
		if i > 0 {
			joined += ", "
		}
		joined += a.String()
	}
	joined += ")"
	return VariantDescriptor{Name: v.Name, HasData: true, DataType: &joined}
}
