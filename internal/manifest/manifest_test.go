package manifest_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/manifest"
	"github.com/sushi-lang/sushic/internal/symbols"
	st "github.com/sushi-lang/sushic/internal/types"
)

func i32() st.Type { return &st.Builtin{Kind: st.I32} }

func TestBuildFromTablesRendersCanonicalTypeStrings(t *testing.T) {
	tab := symbols.NewTables()
	tab.Functions.Set("add", &symbols.FunctionEntry{
		Name:   "add",
		Params: []ast.Param{{Name: "a", Type: i32()}, {Name: "b", Type: i32()}},
		Return: st.Result(i32(), &st.Enum{Name: "StdError"}),
	})
	tab.Constants.Set("MAX", &symbols.ConstantEntry{Name: "MAX", Type: i32()})
	tab.Structs.Set("Point", &st.Struct{Name: "Point", Fields: []st.StructField{
		{Name: "x", Type: i32()}, {Name: "y", Type: i32()},
	}})
	tab.Enums.Set("Shape", &st.Enum{Name: "Shape", Variants: []st.EnumVariant{
		{Name: "Point"},
		{Name: "Circle", Assoc: []st.Type{&st.Builtin{Kind: st.F64}}},
	}})

	m := manifest.BuildFromTables(tab, "geometry", "2026-08-01T00:00:00Z", "0.1.0")

	require.Len(t, m.PublicFunctions, 1)
	assert.Equal(t, "add", m.PublicFunctions[0].Name)
	assert.False(t, m.PublicFunctions[0].IsGeneric)

	require.Len(t, m.PublicConstants, 1)
	assert.Equal(t, "i32", m.PublicConstants[0].Type)

	require.Len(t, m.Structs, 1)
	assert.Equal(t, "Point", m.Structs[0].Name)

	require.Len(t, m.Enums, 1)
	require.Len(t, m.Enums[0].Variants, 2)
	assert.False(t, m.Enums[0].Variants[0].HasData)
	require.True(t, m.Enums[0].Variants[1].HasData)
	assert.Equal(t, "f64", *m.Enums[0].Variants[1].DataType)

	assert.Equal(t, "1.0", m.SushiLibVersion)
	assert.Contains(t, []string{"darwin", "linux", "unknown"}, m.Platform)
}

func TestWriteProducesValidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib.sushilib")

	m := manifest.Manifest{
		SushiLibVersion: "1.0",
		LibraryName:     "geometry",
		CompiledAt:      "2026-08-01T00:00:00Z",
		Platform:        "linux",
		CompilerVersion: "0.1.0",
	}
	require.NoError(t, manifest.Write(path, m))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var roundTripped map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &roundTripped))
	assert.Equal(t, "geometry", roundTripped["library_name"])
	assert.Equal(t, "1.0", roundTripped["sushi_lib_version"])
}
