package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietlegal/lawrag/internal/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1.0, cfg.Search.BM25K1)
	assert.Equal(t, 0.2, cfg.Search.BM25B)
	assert.Equal(t, 60, cfg.Search.RRFConstant)
	assert.Equal(t, 1.5, cfg.Search.VectorWeight)
	assert.Equal(t, 0.75, cfg.Cache.Threshold)
	assert.Equal(t, 6, cfg.Search.ContextTopK)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
paths:
  corpus: /data/clauses.jsonl
search:
  vector_weight: 2.0
  source_timeout: 5s
vector:
  backend: local
  snapshot_path: /data/vectors.jsonl
cache:
  max_entries: 128
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/clauses.jsonl", cfg.Paths.Corpus)
	assert.Equal(t, 2.0, cfg.Search.VectorWeight)
	assert.Equal(t, 5*time.Second, cfg.Search.SourceTimeout)
	assert.Equal(t, "local", cfg.Vector.Backend)
	assert.Equal(t, 128, cfg.Cache.MaxEntries)

	// Untouched fields keep their defaults.
	assert.Equal(t, 60, cfg.Search.RRFConstant)
	assert.Equal(t, "bge-m3", cfg.Embeddings.Model)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigNotFound, errors.GetCode(err))
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search: ["), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LAWRAG_OLLAMA_HOST", "http://embedder:11434")
	t.Setenv("LAWRAG_VECTOR_WEIGHT", "1.0")
	t.Setenv("LAWRAG_CACHE_THRESHOLD", "0.9")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://embedder:11434", cfg.Embeddings.OllamaHost)
	assert.Equal(t, 1.0, cfg.Search.VectorWeight)
	assert.Equal(t, 0.9, cfg.Cache.Threshold)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative k1", func(c *Config) { c.Search.BM25K1 = -0.1 }},
		{"b above one", func(c *Config) { c.Search.BM25B = 1.1 }},
		{"zero top_k", func(c *Config) { c.Search.LexicalTopK = 0 }},
		{"zero rrf constant", func(c *Config) { c.Search.RRFConstant = 0 }},
		{"zero vector weight", func(c *Config) { c.Search.VectorWeight = 0 }},
		{"threshold above one", func(c *Config) { c.Cache.Threshold = 1.5 }},
		{"negative cache bound", func(c *Config) { c.Cache.MaxEntries = -1 }},
		{"unknown backend", func(c *Config) { c.Vector.Backend = "pinecone2" }},
		{"remote without endpoint", func(c *Config) { c.Vector.Backend = "remote" }},
		{"local without snapshot", func(c *Config) { c.Vector.Backend = "local" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeConfigInvalid, errors.GetCode(err))
		})
	}
}
