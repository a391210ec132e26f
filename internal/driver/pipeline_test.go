package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sushi-lang/sushic/internal/ast"
	"github.com/sushi-lang/sushic/internal/driver"
)

func TestCompileReturnsInternalErrorWithoutFrontend(t *testing.T) {
	s := driver.NewSession(driver.DefaultConfig())

	res := s.Compile(context.Background(), []string{"main.sushi"})

	assert.Equal(t, 2, res.ExitCode)
}

func TestCompileReturnsInternalErrorWhenFrontendFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.sushi")
	require.NoError(t, os.WriteFile(path, []byte("fn main() {}"), 0o644))

	s := driver.NewSession(driver.DefaultConfig())
	s.Frontend = func(path string, src []byte) (*ast.File, error) {
		return nil, errors.New("boom")
	}

	res := s.Compile(context.Background(), []string{path})

	assert.Equal(t, 2, res.ExitCode)
}
