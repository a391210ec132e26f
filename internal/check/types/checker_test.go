package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushi-lang/sushic/internal/ast"
	checktypes "github.com/sushi-lang/sushic/internal/check/types"
	"github.com/sushi-lang/sushic/internal/diag"
	"github.com/sushi-lang/sushic/internal/symbols"
	st "github.com/sushi-lang/sushic/internal/types"
)

func i32() st.Type { return &st.Builtin{Kind: st.I32} }

func TestCheckerInfersIntLiteralAsI32(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	body := &ast.Block{Tail: &ast.IntLit{Value: 42}}
	tab.Functions.Set("f", &symbols.FunctionEntry{Return: st.Result(i32(), &st.Enum{Name: "StdError"}), Decl: &ast.FuncDecl{Body: body}})

	checktypes.NewChecker(tab, r).Run()

	require.False(t, r.HasErrors())
	assert.Equal(t, "i32", body.Tail.ExprType().String())
}

func TestCheckerRejectsFieldAccessOnNonStruct(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	body := &ast.Block{Tail: &ast.FieldAccess{Receiver: &ast.IntLit{Value: 1}, Field: "x"}}
	tab.Functions.Set("f", &symbols.FunctionEntry{Return: st.Result(i32(), &st.Enum{Name: "StdError"}), Decl: &ast.FuncDecl{Body: body}})

	checktypes.NewChecker(tab, r).Run()

	require.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeNoSuchField, r.Diagnostics()[0].Code)
}

func TestCheckerTryRequiresExactErrorTypeMatch(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	inner := &ast.Call{Callee: "parse"}
	body := &ast.Block{Tail: &ast.Try{Inner: inner}}
	tab.Functions.Set("parse", &symbols.FunctionEntry{Return: st.Result(i32(), &st.Enum{Name: "IoError"})})
	tab.Functions.Set("f", &symbols.FunctionEntry{Return: st.Result(i32(), &st.Enum{Name: "StdError"}), Decl: &ast.FuncDecl{Body: body}})

	checktypes.NewChecker(tab, r).Run()

	require.True(t, r.HasErrors())
	assert.Equal(t, diag.CodeTypeMismatch, r.Diagnostics()[0].Code)
}

func TestCheckerTryOrSynthesizeAllowsMismatchedErrorType(t *testing.T) {
	r := diag.NewReporter()
	tab := symbols.NewTables()
	inner := &ast.Call{Callee: "parse"}
	body := &ast.Block{Tail: &ast.TryOrSynthesize{Inner: inner}}
	tab.Functions.Set("parse", &symbols.FunctionEntry{Return: st.Result(i32(), &st.Enum{Name: "IoError"})})
	tab.Functions.Set("f", &symbols.FunctionEntry{Return: st.Result(i32(), &st.Enum{Name: "StdError"}), Decl: &ast.FuncDecl{Body: body}})

	checktypes.NewChecker(tab, r).Run()

	assert.False(t, r.HasErrors())
}
