package monomorphize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/instantiate"
	"github.com/sushi-lang/sushic/internal/monomorphize"
	"github.com/sushi-lang/sushic/internal/symbols"
	"github.com/sushi-lang/sushic/internal/types"
)

func i32T() types.Type { return &types.Builtin{Kind: types.I32} }

func setWithType(base string, args []types.Type) *instantiate.Set {
	set := instantiate.NewSet()
	key := instantiate.TypeKey(types.CanonicalName(base, args))
	set.Types[key] = args
	set.TypeNames[key] = base
	return set
}

func TestMonomorphizeGenericStructProducesConcreteEntry(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	tab.GenericStructs.Set("Box", &ast.StructDecl{
		Name:       "Box",
		TypeParams: []string{"T"},
		Fields:     []ast.FieldDecl{{Name: "value", Type: &types.TypeParameter{Name: "T"}}},
	})

	m := monomorphize.NewMonomorphizer(tab, r, nil)
	m.Run(setWithType("Box", []types.Type{i32T()}))

	require.False(t, r.HasErrors())
	concrete, ok := tab.Structs.Get("Box<i32>")
	require.True(t, ok)
	assert.Equal(t, "i32", concrete.Fields[0].Type.String())
}

func TestMonomorphizeConstraintViolationReportsCE4006(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	tab.GenericStructs.Set("Box", &ast.StructDecl{
		Name:       "Box",
		TypeParams: []string{"T"},
		Fields:     []ast.FieldDecl{{Name: "value", Type: &types.TypeParameter{Name: "T"}}},
	})
	bounds := map[string]monomorphize.PerkBounds{"Box": {"T": []string{"Hashable"}}}

	m := monomorphize.NewMonomorphizer(tab, r, bounds)
	m.Run(setWithType("Box", []types.Type{i32T()}))

	require.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeConstraintViolation, r.Diagnostics()[0].Code)
}

func TestMonomorphizeSyntheticHashableSatisfiesBound(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	tab.SetPerkImpl("i32", "Hashable", &symbols.PerkImpl{Synthetic: true})
	tab.GenericStructs.Set("Box", &ast.StructDecl{
		Name:       "Box",
		TypeParams: []string{"T"},
		Fields:     []ast.FieldDecl{{Name: "value", Type: &types.TypeParameter{Name: "T"}}},
	})
	bounds := map[string]monomorphize.PerkBounds{"Box": {"T": []string{"Hashable"}}}

	m := monomorphize.NewMonomorphizer(tab, r, bounds)
	m.Run(setWithType("Box", []types.Type{i32T()}))

	assert.False(t, r.HasErrors())
}
