package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInit_WritesTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lawrag.yaml")

	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rrf_constant")

	// Refuses to overwrite without --force.
	_, err = execute(t, "config", "init", path)
	assert.Error(t, err)

	_, err = execute(t, "config", "init", path, "--force")
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("search:\n  vector_weight: 1.0\n"), 0o644))
	out, err := execute(t, "config", "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cache:\n  threshold: 2.0\n"), 0o644))
	_, err = execute(t, "config", "validate", bad)
	assert.Error(t, err)
}
