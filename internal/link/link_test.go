package link_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushi-lang/sushic/internal/link"
)

func TestPipelineIsCumulativeAcrossTiers(t *testing.T) {
	assert.Nil(t, link.Pipeline("none"))
	assert.Equal(t, []string{"sroa"}, link.Pipeline("mem2reg"))

	o1 := link.Pipeline("o1")
	assert.Equal(t, []string{"sroa", "simplifycfg", "instcombine", "dce", "globaldce"}, o1)

	o2 := link.Pipeline("o2")
	require.True(t, len(o2) > len(o1))
	assert.Equal(t, o1, o2[:len(o1)])
	assert.Contains(t, o2, "gvn")
	assert.Contains(t, o2, "constmerge")

	o3 := link.Pipeline("o3")
	require.True(t, len(o3) > len(o2))
	assert.Equal(t, o2, o3[:len(o2)])
	assert.Contains(t, o3, "mergefunc")
	assert.Contains(t, o3, "loop-unroll")
}

func TestPassesStringJoinsWithCommas(t *testing.T) {
	assert.Equal(t, "", link.PassesString("none"))
	assert.Equal(t, "sroa", link.PassesString("mem2reg"))
	assert.Equal(t, "sroa,simplifycfg,instcombine,dce,globaldce", link.PassesString("o1"))
}

func TestResolveUnitPrefersSingleFileOverDirectory(t *testing.T) {
	dist := t.TempDir()
	platformDir := filepath.Join(dist, "linux")
	require.NoError(t, os.MkdirAll(filepath.Join(platformDir, "collections"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(platformDir, "collections.bc"), []byte("bc"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(platformDir, "collections", "hashmap.bc"), []byte("bc"), 0o644))

	files, err := link.ResolveUnit(dist, "linux", "collections")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(platformDir, "collections.bc")}, files)
}

func TestResolveUnitExpandsDirectoryWhenNoSingleFile(t *testing.T) {
	dist := t.TempDir()
	platformDir := filepath.Join(dist, "linux")
	unitDir := filepath.Join(platformDir, "io")
	require.NoError(t, os.MkdirAll(unitDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(unitDir, "file.bc"), []byte("bc"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(unitDir, "stream.bc"), []byte("bc"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(unitDir, "README.md"), []byte("not bitcode"), 0o644))

	files, err := link.ResolveUnit(dist, "linux", "io")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(unitDir, "file.bc"),
		filepath.Join(unitDir, "stream.bc"),
	}, files)
}

func TestResolveUnitErrorsWhenMissing(t *testing.T) {
	dist := t.TempDir()
	_, err := link.ResolveUnit(dist, "linux", "nonexistent")
	assert.Error(t, err)
}

func TestResolveUnitsFlattensInOrder(t *testing.T) {
	dist := t.TempDir()
	platformDir := filepath.Join(dist, "darwin")
	require.NoError(t, os.MkdirAll(platformDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(platformDir, "core.bc"), []byte("bc"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(platformDir, "collections.bc"), []byte("bc"), 0o644))

	files, err := link.ResolveUnits(dist, "darwin", []string{"core", "collections"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(platformDir, "core.bc"),
		filepath.Join(platformDir, "collections.bc"),
	}, files)
}

func TestPlatformIsOneOfSpecSet(t *testing.T) {
	p := link.Platform()
	assert.Contains(t, []string{"darwin", "linux", "unknown"}, p)
}
