package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/types"
)

func TestWalkVisitsNestedCallArguments(t *testing.T) {
	inner := &ast.Call{Callee: "id"}
	outer := &ast.Call{Callee: "wrap", Args: []ast.Expr{inner}}

	var names []string
	ast.Walk(outer, func(n ast.Node) bool {
		if c, ok := n.(*ast.Call); ok {
			names = append(names, c.Callee)
		}
		return true
	})

	assert.Equal(t, []string{"wrap", "id"}, names)
}

func TestWalkStopsDescendingWhenVisitorReturnsFalse(t *testing.T) {
	lit := &ast.IntLit{Value: 1}
	bin := &ast.Binary{Op: ast.OpAdd, Left: lit, Right: lit}

	visited := 0
	ast.Walk(bin, func(n ast.Node) bool {
		visited++
		return false
	})
	assert.Equal(t, 1, visited)
}

func TestExprTypeRoundTrip(t *testing.T) {
	var e ast.Expr = &ast.Ident{Name: "x"}
	assert.Nil(t, e.ExprType())
	e.SetType(&types.Builtin{Kind: types.I32})
	assert.Equal(t, "i32", e.ExprType().String())
}
