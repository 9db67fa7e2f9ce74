// Package config loads and validates the lawrag configuration.
//
// Precedence: defaults < YAML file < LAWRAG_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vietlegal/lawrag/internal/errors"
)

// Config is the complete lawrag configuration.
type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Search     SearchConfig     `yaml:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Vector     VectorConfig     `yaml:"vector"`
	Cache      CacheConfig      `yaml:"cache"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// PathsConfig locates the corpus and tokenizer resources.
type PathsConfig struct {
	// Corpus is the JSONL clause corpus indexed at startup.
	Corpus string `yaml:"corpus"`

	// Stopwords is the stopword list, one word per line. Missing file
	// means an empty stopword set.
	Stopwords string `yaml:"stopwords"`
}

// SearchConfig tunes lexical scoring and rank fusion.
type SearchConfig struct {
	// BM25K1 and BM25B are the Okapi BM25 parameters.
	BM25K1 float64 `yaml:"bm25_k1"`
	BM25B  float64 `yaml:"bm25_b"`

	// LexicalTopK and VectorTopK are how many candidates each source
	// contributes before fusion.
	LexicalTopK int `yaml:"lexical_top_k"`
	VectorTopK  int `yaml:"vector_top_k"`

	// RRFConstant is the rank fusion smoothing parameter k.
	RRFConstant int `yaml:"rrf_constant"`

	// VectorWeight scales the vector list's fusion contributions.
	VectorWeight float64 `yaml:"vector_weight"`

	// ContextTopK is the default number of fused clauses returned.
	ContextTopK int `yaml:"context_top_k"`

	// SourceTimeout bounds the concurrent lexical+vector fetch.
	SourceTimeout time.Duration `yaml:"source_timeout"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	OllamaHost string        `yaml:"ollama_host"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	CacheSize  int           `yaml:"cache_size"`
}

// VectorConfig selects and configures the vector index backend.
type VectorConfig struct {
	// Backend is "remote" (hosted index service) or "local" (in-process
	// index over a vector snapshot). Empty disables vector search.
	Backend string `yaml:"backend"`

	// Endpoint and APIKey configure the remote backend.
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`

	// Namespace selects the remote index partition.
	Namespace string `yaml:"namespace"`

	// SnapshotPath is the JSONL vector snapshot for the local backend.
	SnapshotPath string `yaml:"snapshot_path"`

	// Timeout bounds a single remote query.
	Timeout time.Duration `yaml:"timeout"`
}

// CacheConfig tunes the semantic result cache.
type CacheConfig struct {
	// Threshold is the cosine similarity at or above which a cached
	// entry answers a query.
	Threshold float64 `yaml:"threshold"`

	// MaxEntries bounds the cache; 0 means unbounded.
	MaxEntries int `yaml:"max_entries"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	FilePath string `yaml:"file_path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			BM25K1:        1.0,
			BM25B:         0.2,
			LexicalTopK:   5,
			VectorTopK:    5,
			RRFConstant:   60,
			VectorWeight:  1.5,
			ContextTopK:   6,
			SourceTimeout: 15 * time.Second,
		},
		Embeddings: EmbeddingsConfig{
			OllamaHost: "http://localhost:11434",
			Model:      "bge-m3",
			Dimensions: 1024,
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			CacheSize:  512,
		},
		Vector: VectorConfig{
			Timeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Threshold: 0.75,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration file at path on top of the defaults, then
// applies LAWRAG_* environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.New(errors.ErrCodeConfigNotFound,
					fmt.Sprintf("config file not found: %s", path), err)
			}
			return nil, errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("reading config: %v", err), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("parsing config: %v", err), err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies LAWRAG_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LAWRAG_CORPUS"); v != "" {
		c.Paths.Corpus = v
	}
	if v := os.Getenv("LAWRAG_STOPWORDS"); v != "" {
		c.Paths.Stopwords = v
	}
	if v := os.Getenv("LAWRAG_OLLAMA_HOST"); v != "" {
		c.Embeddings.OllamaHost = v
	}
	if v := os.Getenv("LAWRAG_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("LAWRAG_VECTOR_BACKEND"); v != "" {
		c.Vector.Backend = v
	}
	if v := os.Getenv("LAWRAG_VECTOR_ENDPOINT"); v != "" {
		c.Vector.Endpoint = v
	}
	if v := os.Getenv("LAWRAG_VECTOR_API_KEY"); v != "" {
		c.Vector.APIKey = v
	}
	if v := os.Getenv("LAWRAG_VECTOR_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Search.VectorWeight = f
		}
	}
	if v := os.Getenv("LAWRAG_RRF_CONSTANT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.RRFConstant = n
		}
	}
	if v := os.Getenv("LAWRAG_CACHE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Cache.Threshold = f
		}
	}
	if v := os.Getenv("LAWRAG_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Search.BM25K1 < 0 {
		return errors.ConfigError(fmt.Sprintf("bm25_k1 must be non-negative, got %g", c.Search.BM25K1), nil)
	}
	if c.Search.BM25B < 0 || c.Search.BM25B > 1 {
		return errors.ConfigError(fmt.Sprintf("bm25_b must be in [0, 1], got %g", c.Search.BM25B), nil)
	}
	if c.Search.LexicalTopK <= 0 || c.Search.VectorTopK <= 0 {
		return errors.ConfigError("lexical_top_k and vector_top_k must be positive", nil)
	}
	if c.Search.RRFConstant <= 0 {
		return errors.ConfigError(fmt.Sprintf("rrf_constant must be positive, got %d", c.Search.RRFConstant), nil)
	}
	if c.Search.VectorWeight <= 0 {
		return errors.ConfigError(fmt.Sprintf("vector_weight must be positive, got %g", c.Search.VectorWeight), nil)
	}
	if c.Search.ContextTopK <= 0 {
		return errors.ConfigError("context_top_k must be positive", nil)
	}
	if c.Cache.Threshold <= 0 || c.Cache.Threshold > 1 {
		return errors.ConfigError(fmt.Sprintf("cache threshold must be in (0, 1], got %g", c.Cache.Threshold), nil)
	}
	if c.Cache.MaxEntries < 0 {
		return errors.ConfigError("cache max_entries must be non-negative", nil)
	}

	switch c.Vector.Backend {
	case "", "remote", "local":
	default:
		return errors.ConfigError(fmt.Sprintf("unknown vector backend %q", c.Vector.Backend), nil)
	}
	if c.Vector.Backend == "remote" && c.Vector.Endpoint == "" {
		return errors.ConfigError("remote vector backend requires an endpoint", nil)
	}
	if c.Vector.Backend == "local" && c.Vector.SnapshotPath == "" {
		return errors.ConfigError("local vector backend requires a snapshot_path", nil)
	}

	return nil
}
