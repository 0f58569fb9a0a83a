package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	exp := Default()
	assert.Equal(t, "moons", exp.Dataset)
	assert.Equal(t, "planar", exp.Family)
	assert.Greater(t, exp.Learners, 0)
	assert.Greater(t, exp.RhoStep, 0.0)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("family: radial\nlearners: 8\nrho_step: 0.01\n"), 0644))

	exp, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "radial", exp.Family)
	assert.Equal(t, 8, exp.Learners)
	assert.Equal(t, 0.01, exp.RhoStep)
	// untouched fields keep the defaults
	assert.Equal(t, "moons", exp.Dataset)
	assert.Equal(t, Default().Batch, exp.Batch)
}

func TestLoadEmptyPath(t *testing.T) {
	exp, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), exp)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
