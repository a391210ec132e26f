package rewrite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/rewrite"
	"github.com/sushi-lang/sushic/internal/symbols"
	"github.com/sushi-lang/sushic/internal/types"
)

func TestHashDeriverMarksStructOfPrimitivesHashable(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	tab.Structs.Set("Point", &types.Struct{Name: "Point", Fields: []types.StructField{
		{Name: "x", Type: &types.Builtin{Kind: types.I32}},
		{Name: "y", Type: &types.Builtin{Kind: types.I32}},
	}})

	rewrite.NewHashDeriver(tab, r).Run()

	assert.True(t, tab.Implements("Point", "Hashable"))
	assert.False(t, r.HasErrors())
}

func TestHashDeriverRejectsDirectEnumSelfRecursion(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	tab.Enums.Set("Expr", &types.Enum{Name: "Expr", Variants: []types.EnumVariant{
		{Name: "Lit", Assoc: []types.Type{&types.Builtin{Kind: types.I32}}},
		{Name: "Add", Assoc: []types.Type{&types.Enum{Name: "Expr"}, &types.Enum{Name: "Expr"}}},
	}})

	rewrite.NewHashDeriver(tab, r).Run()

	assert.False(t, tab.Implements("Expr", "Hashable"))
	assert.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeRecursiveEnumHash, r.Diagnostics()[0].Code)
}

func TestHashDeriverRejectsArrayOfArrays(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	tab.Structs.Set("Grid", &types.Struct{Name: "Grid", Fields: []types.StructField{
		{Name: "cells", Type: &types.Array{Elem: &types.Array{Elem: &types.Builtin{Kind: types.I32}, Size: 3}, Size: 3}},
	}})

	rewrite.NewHashDeriver(tab, r).Run()

	assert.False(t, tab.Implements("Grid", "Hashable"))
	assert.True(t, r.HasErrors())
}

func TestHashDeriverStructDependsOnEarlierHashableStruct(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	tab.Structs.Set("Point", &types.Struct{Name: "Point", Fields: []types.StructField{
		{Name: "x", Type: &types.Builtin{Kind: types.I32}},
	}})
	tab.Structs.Set("Line", &types.Struct{Name: "Line", Fields: []types.StructField{
		{Name: "a", Type: &types.Struct{Name: "Point"}},
		{Name: "b", Type: &types.Struct{Name: "Point"}},
	}})

	rewrite.NewHashDeriver(tab, r).Run()

	assert.True(t, tab.Implements("Point", "Hashable"))
	assert.True(t, tab.Implements("Line", "Hashable"))
}
