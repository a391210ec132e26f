package driver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sushi-lang/sushic/internal/driver"
)

func TestDefaultConfigMatchesCLIDefaults(t *testing.T) {
	cfg := driver.DefaultConfig()

	assert.Equal(t, "a.out", cfg.Output)
	assert.Equal(t, "cc", cfg.CC)
	assert.Equal(t, "mem2reg", cfg.OptLevel)
	assert.False(t, cfg.EmitLL)
	assert.False(t, cfg.DebugInfo)
	assert.False(t, cfg.KeepObject)
}

func TestNewSessionAssignsDistinctRunIDs(t *testing.T) {
	a := driver.NewSession(driver.DefaultConfig())
	b := driver.NewSession(driver.DefaultConfig())

	assert.NotEmpty(t, a.ID)
	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotNil(t, a.Log)
}
