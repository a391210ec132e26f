package symbols_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/symbols"
	"github.com/sushi-lang/sushic/internal/types"
)

func i32() types.Type { return &types.Builtin{Kind: types.I32} }
func strT() types.Type { return &types.Builtin{Kind: types.String} }

func TestCollectFunctionAppliesResultSugar(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)

	fn := &ast.FuncDecl{Name: "double", Params: []ast.Param{{Name: "x", Type: i32()}}, ReturnType: i32(), ErrorType: strT()}
	c.Collect([]*ast.File{{Decls: []ast.Decl{fn}}})

	require.False(t, r.HasErrors())
	entry, ok := c.Tables.Functions.Get("double")
	require.True(t, ok)
	ok2, err2, isResult := types.IsResult(entry.Return)
	require.True(t, isResult)
	assert.Equal(t, "i32", ok2.String())
	assert.Equal(t, "string", err2.String())
}

func TestCollectFunctionWithoutSugarStillWrapsInResult(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)

	fn := &ast.FuncDecl{Name: "parse", Params: []ast.Param{{Name: "s", Type: strT()}}, ReturnType: i32()}
	c.Collect([]*ast.File{{Decls: []ast.Decl{fn}}})

	require.False(t, r.HasErrors())
	entry, ok := c.Tables.Functions.Get("parse")
	require.True(t, ok)
	okT, errT, isResult := types.IsResult(entry.Return)
	require.True(t, isResult, "a bare-T return must be wrapped to Result<T, StdError> even without `| ErrorType` sugar")
	assert.Equal(t, "i32", okT.String())
	assert.Equal(t, "StdError", errT.String())
}

func TestCollectDuplicateFunctionReportsCE0101(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)

	fn1 := &ast.FuncDecl{Name: "f", ReturnType: i32(), ErrorType: strT()}
	fn2 := &ast.FuncDecl{Name: "f", ReturnType: i32(), ErrorType: strT()}
	c.Collect([]*ast.File{{Decls: []ast.Decl{fn1, fn2}}})

	require.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeDuplicateFunction, r.Diagnostics()[0].Code)
}

func TestCollectMainAcceptsIntegerReturn(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)

	fn := &ast.FuncDecl{Name: "main", ReturnType: i32()}
	c.Collect([]*ast.File{{Decls: []ast.Decl{fn}}})

	require.False(t, r.HasErrors())
	entry, ok := c.Tables.Functions.Get("main")
	require.True(t, ok)
	okT, errT, isResult := types.IsResult(entry.Return)
	require.True(t, isResult, "main's return is internally wrapped to Result<i32, StdError>")
	assert.Equal(t, "i32", okT.String())
	assert.Equal(t, "StdError", errT.String())
}

func TestCollectMainRejectsNonIntegerReturn(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)

	fn := &ast.FuncDecl{Name: "main", ReturnType: strT()}
	c.Collect([]*ast.File{{Decls: []ast.Decl{fn}}})

	require.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeMainBadReturn, r.Diagnostics()[0].Code)
}

func TestCollectResultSugarClashReportsCE2085(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)

	fn := &ast.FuncDecl{
		Name:       "f",
		ReturnType: types.Result(i32(), strT()),
		ErrorType:  strT(),
	}
	c.Collect([]*ast.File{{Decls: []ast.Decl{fn}}})

	require.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeResultSugarClash, r.Diagnostics()[0].Code)
}

func TestCollectGenericStructSkipsConcreteTable(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)

	d := &ast.StructDecl{Name: "Box", TypeParams: []string{"T"}, Fields: []ast.FieldDecl{{Name: "value", Type: &types.TypeParameter{Name: "T"}}}}
	c.Collect([]*ast.File{{Decls: []ast.Decl{d}}})

	require.False(t, r.HasErrors())
	assert.False(t, c.Tables.Structs.Has("Box"))
	assert.True(t, c.Tables.GenericStructs.Has("Box"))
}

func TestCollectEnumVariantDynamicArrayFieldRejected(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)

	d := &ast.EnumDecl{Name: "Bad", Variants: []ast.VariantDecl{
		{Name: "V", Assoc: []types.Type{&types.DynamicArray{Elem: i32()}}},
	}}
	c.Collect([]*ast.File{{Decls: []ast.Decl{d}}})

	require.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeVariantDynArray, r.Diagnostics()[0].Code)
}

func TestCollectGenericExtensionRewritesUnknownToTypeParameter(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)

	extend := &ast.ExtendDecl{
		Target: &types.GenericRef{Base: "HashMap", Args: []types.Type{&types.Unknown{Name: "K"}, &types.Unknown{Name: "V"}}},
		Methods: []*ast.FuncDecl{
			{Name: "get", Params: []ast.Param{{Name: "key", Type: &types.Unknown{Name: "K"}}}, ReturnType: &types.Unknown{Name: "V"}, ErrorType: strT()},
		},
	}
	c.Collect([]*ast.File{{Decls: []ast.Decl{extend}}})

	require.False(t, r.HasErrors())
	entry, ok := c.Tables.GetGenericExtension("HashMap", "get")
	require.True(t, ok)
	_, isTP := entry.Params[0].Type.(*types.TypeParameter)
	assert.True(t, isTP)
}

func TestCollectUseActivatesHashMapProvider(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)

	c.Collect([]*ast.File{{Decls: []ast.Decl{&ast.UseDecl{ModulePath: "std.collections.hashmap"}}}})

	assert.True(t, c.Tables.ProviderActive("HashMap"))
}

func TestSeedSyntheticHashableRegistersPrimitives(t *testing.T) {
	r := diag.NewReporter()
	c := symbols.NewCollector(r)
	c.SeedSyntheticHashable()

	assert.True(t, c.Tables.Implements("i32", "Hashable"))
	assert.True(t, c.Tables.Implements("string", "Hashable"))
	assert.False(t, c.Tables.Implements("i32", "Comparable"))
}
