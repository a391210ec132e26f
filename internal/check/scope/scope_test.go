package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/check/scope"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/symbols"
	"github.com/sushi-lang/sushic/internal/types"
)

func fn(body *ast.Block, params ...ast.Param) *symbols.FunctionEntry {
	return &symbols.FunctionEntry{Decl: &ast.FuncDecl{Params: params, Body: body}}
}

func TestScopeRejectsUndeclaredName(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	tab.Functions.Set("f", fn(&ast.Block{Tail: &ast.Ident{Name: "missing"}}))

	scope.NewAnalyzer(tab, r).Run()

	assert := assert.New(t)
	assert.True(r.HasErrors())
	assert.Equal(diag.CodeUndeclaredName, r.Diagnostics()[0].Code)
}

func TestScopeAllowsDeclaredParameter(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	tab.Functions.Set("f", fn(&ast.Block{Tail: &ast.Ident{Name: "x"}}, ast.Param{Name: "x", Type: &types.Builtin{Kind: types.I32}}))

	scope.NewAnalyzer(tab, r).Run()

	assert.False(t, r.HasErrors())
}

func TestScopeRejectsSameScopeShadow(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Let{Name: "x", Value: &ast.IntLit{Value: 1}},
		&ast.Let{Name: "x", Value: &ast.IntLit{Value: 2}},
	}}
	tab.Functions.Set("f", fn(body))

	scope.NewAnalyzer(tab, r).Run()

	assert.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeShadowConflict, r.Diagnostics()[0].Code)
}

func TestScopeUseAfterDestroyReported(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Let{Name: "arr", Value: &ast.ArrayLit{Dynamic: true}},
		&ast.ExprStmt{X: &ast.MethodCall{Receiver: &ast.Ident{Name: "arr"}, Method: "destroy"}},
		&ast.ExprStmt{X: &ast.Ident{Name: "arr"}},
	}}
	tab.Functions.Set("f", fn(body))

	scope.NewAnalyzer(tab, r).Run()

	assert.True(t, r.HasErrors())
	found := false
	for _, d := range r.Diagnostics() {
		if d.Code == diag.CodeUseAfterDestroy {
			found = true
		}
	}
	assert.True(t, found)
}
