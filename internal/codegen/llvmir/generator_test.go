package llvmir

import (
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushi-lang/sushic/internal/mir"
	st "github.com/sushi-lang/sushic/internal/types"
)

func TestStoreFieldRebindsLocalViaInsertValue(t *testing.T) {
	point := &st.Struct{Name: "Point", Fields: []st.StructField{
		{Name: "x", Type: &st.Builtin{Kind: st.I32}},
		{Name: "y", Type: &st.Builtin{Kind: st.I32}},
	}}

	g := NewGenerator()
	g.Types.RegisterStruct(point)
	g.cur = g.Module.NewFunc("set_x", g.Types.Lower(point))
	g.block = g.cur.NewBlock("entry")
	g.locals = make(map[int]value.Value)

	recvLocal := mir.Local{ID: 0, Name: "self", Type: point}
	g.locals[recvLocal.ID] = g.constructStruct(&mir.ConstructStruct{
		Type: point,
		Fields: map[string]mir.Operand{
			"x": &mir.Literal{Type: &st.Builtin{Kind: st.I32}, Value: int64(1)},
			"y": &mir.Literal{Type: &st.Builtin{Kind: st.I32}, Value: int64(2)},
		},
	})

	g.lowerStmt(&mir.StoreField{
		Target: &mir.LocalRef{Local: recvLocal},
		Field:  "x",
		Value:  &mir.Literal{Type: &st.Builtin{Kind: st.I32}, Value: int64(99)},
	})

	updated := g.locals[recvLocal.ID]
	require.NotNil(t, updated)
	_, ok := updated.(*ir.InstInsertValue)
	assert.True(t, ok, "StoreField should rebind the local to an insertvalue result")
}
