package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1, cfg.Solutions)
	assert.Equal(t, "int", cfg.Encoding)
	assert.Equal(t, 20, cfg.DefaultCapacity)
	assert.Equal(t, 16, cfg.MaxRepairRounds)
	assert.Equal(t, 4000*time.Second, time.Duration(cfg.Timeout))
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`solutions: 10
timeout: 30s
encoding: matrix
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Solutions)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.Timeout))
	assert.Equal(t, "matrix", cfg.Encoding)
	// untouched keys keep their defaults
	assert.Equal(t, 16, cfg.MaxRepairRounds)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: soonish\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}
