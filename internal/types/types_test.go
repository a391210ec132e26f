package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sushi-lang/sushic/internal/types"
)

func TestEqualIgnoresIdentityNotStructure(t *testing.T) {
	a := &types.Array{Elem: &types.Builtin{Kind: types.I32}, Size: 4}
	b := &types.Array{Elem: &types.Builtin{Kind: types.I32}, Size: 4}
	assert.True(t, types.Equal(a, b))

	c := &types.Array{Elem: &types.Builtin{Kind: types.I64}, Size: 4}
	assert.False(t, types.Equal(a, c))
}

func TestResultSugarCanonicalString(t *testing.T) {
	r := types.Result(&types.Builtin{Kind: types.Bool}, &types.Struct{Name: "StdError"})
	assert.Equal(t, "Result<bool, StdError>", r.String())

	ok, err, isResult := types.IsResult(r)
	assert.True(t, isResult)
	assert.Equal(t, "bool", ok.String())
	assert.Equal(t, "StdError", err.String())
}

func TestContainsUnresolvedDetectsNestedGenericRef(t *testing.T) {
	t1 := &types.Array{Elem: types.Maybe(&types.TypeParameter{Name: "T"})}
	assert.True(t, types.ContainsUnresolved(t1))

	t2 := &types.Array{Elem: &types.Builtin{Kind: types.I32}}
	assert.False(t, types.ContainsUnresolved(t2))
}

func TestSubstituteRecursesThroughNesting(t *testing.T) {
	tp := &types.TypeParameter{Name: "T"}
	generic := &types.DynamicArray{Elem: &types.Reference{Inner: tp}}
	bound := types.Substitute(generic, map[string]types.Type{"T": &types.Builtin{Kind: types.I32}})

	want := &types.DynamicArray{Elem: &types.Reference{Inner: &types.Builtin{Kind: types.I32}}}
	assert.True(t, types.Equal(bound, want))
}

func TestCanonicalNameMatchesGenericRefString(t *testing.T) {
	name := types.CanonicalName("HashMap", []types.Type{
		&types.Builtin{Kind: types.String},
		&types.Builtin{Kind: types.I32},
	})
	assert.Equal(t, "HashMap<string, i32>", name)
}
