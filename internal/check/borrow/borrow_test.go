package borrow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/check/borrow"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/symbols"
)

func TestBorrowRejectsUseAfterMove(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Let{Name: "a", Value: &ast.IntLit{Value: 1}},
		&ast.Let{Name: "b", Value: &ast.Ident{Name: "a"}},
		&ast.ExprStmt{X: &ast.Ident{Name: "a"}},
	}}
	tab.Functions.Set("f", &symbols.FunctionEntry{Decl: &ast.FuncDecl{Body: body}})

	borrow.NewChecker(tab, r).Run()

	assert.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeUseAfterMove, r.Diagnostics()[0].Code)
}

func TestBorrowRejectsDestroyWhileBorrowed(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Let{Name: "arr", Value: &ast.ArrayLit{Dynamic: true}},
		&ast.Let{Name: "r", Value: &ast.Ref{Inner: &ast.Ident{Name: "arr"}}},
		&ast.ExprStmt{X: &ast.MethodCall{Receiver: &ast.Ident{Name: "arr"}, Method: "destroy"}},
	}}
	tab.Functions.Set("f", &symbols.FunctionEntry{Decl: &ast.FuncDecl{Body: body}})

	borrow.NewChecker(tab, r).Run()

	assert.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeMoveWhileBorrowed, r.Diagnostics()[0].Code)
}

func TestBorrowAllowsOrdinaryUse(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	body := &ast.Block{Stmts: []ast.Stmt{
		&ast.Let{Name: "x", Value: &ast.IntLit{Value: 1}},
		&ast.ExprStmt{X: &ast.Ident{Name: "x"}},
	}}
	tab.Functions.Set("f", &symbols.FunctionEntry{Decl: &ast.FuncDecl{Body: body}})

	borrow.NewChecker(tab, r).Run()

	assert.False(t, r.HasErrors())
}
