package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRequiresAtLeastOneSourceArgument(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"sushic"}

	code := run()

	assert.Equal(t, 2, code)
}

func TestRunVersionSubcommandSucceeds(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"sushic", "version"}

	code := run()

	assert.Equal(t, 0, code)
}

func TestRunWithoutFrontendReportsInternalError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.sushi")
	require.NoError(t, os.WriteFile(path, []byte("fn main() {}"), 0o644))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"sushic", path}

	code := run()

	assert.Equal(t, 2, code)
}
