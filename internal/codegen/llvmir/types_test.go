package llvmir_test

import (
	"testing"

	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushi-lang/sushic/internal/codegen/llvmir"
	st "github.com/sushi-lang/sushic/internal/types"
)

func TestEnumLayoutUsesMaxVariantSize(t *testing.T) {
	tl := llvmir.NewTypeLowerer()
	e := &st.Enum{Name: "Shape", Variants: []st.EnumVariant{
		{Name: "Point", Assoc: nil},
		{Name: "Circle", Assoc: []st.Type{&st.Builtin{Kind: st.F64}}},
		{Name: "Rect", Assoc: []st.Type{&st.Builtin{Kind: st.F64}, &st.Builtin{Kind: st.F64}}},
	}}

	lt := tl.Lower(e).(*types.StructType)

	require.Len(t, lt.Fields, 2)
	assert.Equal(t, types.I32, lt.Fields[0])
	arr, ok := lt.Fields[1].(*types.ArrayType)
	require.True(t, ok)
	assert.Equal(t, uint64(16), arr.Len) // two f64 = 16 bytes, the largest variant
	assert.Equal(t, 16, tl.EnumDataBytes("Shape"))
}

func TestResultLayoutTagAtZeroDataAtFour(t *testing.T) {
	tl := llvmir.NewTypeLowerer()
	result := st.Result(&st.Builtin{Kind: st.I32}, &st.Enum{Name: "StdError"})

	lt := tl.Lower(result)

	st2, ok := lt.(*types.StructType)
	require.True(t, ok)
	assert.Equal(t, types.I32, st2.Fields[0])
	arr, ok := st2.Fields[1].(*types.ArrayType)
	require.True(t, ok)
	assert.Equal(t, uint64(4), arr.Len)
}

func TestMangleExtensionProducesValidIdentifier(t *testing.T) {
	name := llvmir.MangleExtension("HashMap", []st.Type{&st.Builtin{Kind: st.String}, &st.Builtin{Kind: st.I32}}, "get")

	assert.Equal(t, "HashMap__string_i32__get", name)
}
