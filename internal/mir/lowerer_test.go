package mir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/mir"
	"github.com/sushi-lang/sushic/internal/symbols"
	st "github.com/sushi-lang/sushic/internal/types"
)

func i32() st.Type { return &st.Builtin{Kind: st.I32} }

func TestLowerFunctionReturnsLiteral(t *testing.T) {
	tab := symbols.NewTables()
	lit := &ast.IntLit{Value: 42}
	lit.SetType(i32())
	body := &ast.Block{Tail: lit}
	tab.Functions.Set("f", &symbols.FunctionEntry{
		Name:   "f",
		Return: st.Result(i32(), &st.Enum{Name: "StdError"}),
		Decl:   &ast.FuncDecl{Body: body},
	})

	entry, _ := tab.Functions.Get("f")
	fn := mir.NewLowerer(tab).LowerFunction(entry)

	require.NotNil(t, fn.Entry)
	require.IsType(t, &mir.Return{}, fn.Entry.Terminator)
	ret := fn.Entry.Terminator.(*mir.Return)
	// The declared return is Result<i32, StdError>, so the i32 tail is
	// wrapped in Ok(42) before being returned.
	ref, ok := ret.Value.(*mir.LocalRef)
	require.True(t, ok)
	require.Len(t, fn.Entry.Statements, 1)
	ctor, ok := fn.Entry.Statements[0].(*mir.ConstructEnum)
	require.True(t, ok)
	assert.Equal(t, ref.Local.ID, ctor.Result.ID)
	assert.Equal(t, "Ok", ctor.Variant)
	require.Len(t, ctor.Values, 1)
	litOperand, ok := ctor.Values[0].(*mir.Literal)
	require.True(t, ok)
	assert.Equal(t, int64(42), litOperand.Value)
}

func TestLowerIfProducesBranchAndJoinBlocks(t *testing.T) {
	tab := symbols.NewTables()
	cond := &ast.BoolLit{Value: true}
	cond.SetType(&st.Builtin{Kind: st.Bool})
	thenLit := &ast.IntLit{Value: 1}
	thenLit.SetType(i32())
	elseLit := &ast.IntLit{Value: 2}
	elseLit.SetType(i32())
	ifExpr := &ast.If{
		Cond: cond,
		Then: &ast.Block{Tail: thenLit},
		Else: &ast.Block{Tail: elseLit},
	}
	ifExpr.SetType(i32())
	body := &ast.Block{Tail: ifExpr}
	tab.Functions.Set("f", &symbols.FunctionEntry{
		Name:   "f",
		Return: st.Result(i32(), &st.Enum{Name: "StdError"}),
		Decl:   &ast.FuncDecl{Body: body},
	})

	entry, _ := tab.Functions.Get("f")
	fn := mir.NewLowerer(tab).LowerFunction(entry)

	require.IsType(t, &mir.Branch{}, fn.Entry.Terminator)
	assert.Greater(t, len(fn.Blocks), 3)
}

func TestLowerLetTracksOwnedDynamicArrayForDestroy(t *testing.T) {
	tab := symbols.NewTables()
	arrLit := &ast.ArrayLit{Dynamic: true}
	arrLit.SetType(&st.DynamicArray{Elem: i32()})
	body := &ast.Block{
		Stmts: []ast.Stmt{&ast.Let{Name: "arr", Value: arrLit}},
	}
	tab.Functions.Set("f", &symbols.FunctionEntry{
		Name:   "f",
		Return: st.Result(&st.Builtin{Kind: st.Blank}, &st.Enum{Name: "StdError"}),
		Decl:   &ast.FuncDecl{Body: body},
	})

	entry, _ := tab.Functions.Get("f")
	fn := mir.NewLowerer(tab).LowerFunction(entry)

	found := false
	for _, b := range fn.Blocks {
		for _, s := range b.Statements {
			if _, ok := s.(*mir.Destroy); ok {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a Destroy statement for the unmoved dynamic array")
}
