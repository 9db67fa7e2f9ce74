package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vietlegal/lawrag/internal/errors"
)

// HTTPConfig configures the HTTP embedding client.
type HTTPConfig struct {
	// Host is the base URL of an Ollama-compatible embedding server.
	Host string

	// Model is the embedding model name.
	Model string

	// Dimensions is the expected embedding dimension. 0 accepts whatever
	// the server returns.
	Dimensions int

	// Timeout bounds a single request attempt.
	Timeout time.Duration

	// MaxRetries is the number of attempts per call.
	MaxRetries int

	// PoolSize is the HTTP connection pool size.
	PoolSize int
}

// HTTPEmbedder generates embeddings via an Ollama-compatible /api/embed
// endpoint. Failures are surfaced as ERR_301_EMBEDDING_UNAVAILABLE so the
// retrieval engine can degrade to lexical-only ranking.
type HTTPEmbedder struct {
	client    *http.Client
	transport *http.Transport
	config    HTTPConfig

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*HTTPEmbedder)(nil)

// embedRequest is the /api/embed request body.
type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embedResponse is the /api/embed response body.
type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// NewHTTPEmbedder creates the HTTP embedding client. No network call is
// made at construction; availability surfaces on first use.
func NewHTTPEmbedder(cfg HTTPConfig) *HTTPEmbedder {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = DefaultPoolSize
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.PoolSize,
		MaxIdleConnsPerHost: cfg.PoolSize,
		IdleConnTimeout:     10 * time.Second,
	}

	// No client-level timeout: the per-request context timeout in
	// doEmbed governs, so caller deadlines are honored.
	return &HTTPEmbedder{
		client:    &http.Client{Transport: transport},
		transport: transport,
		config:    cfg,
	}
}

// Embed generates the embedding for a single text, retrying transient
// failures with exponential backoff.
func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return nil, errors.New(errors.ErrCodeEmbeddingUnavailable, "embedder is closed", nil)
	}
	e.mu.RUnlock()

	if strings.TrimSpace(text) == "" {
		return make([]float32, e.config.Dimensions), nil
	}

	var lastErr error
	for attempt := 0; attempt < e.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100<<attempt) * time.Millisecond
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(errors.ErrCodeEmbeddingUnavailable, ctx.Err())
			case <-time.After(backoff):
			}

			slog.Debug("embedding_retry",
				slog.Int("attempt", attempt+1),
				slog.String("model", e.config.Model))
		}

		vec, err := e.doEmbed(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeEmbeddingUnavailable, ctx.Err())
		}
	}

	return nil, errors.New(errors.ErrCodeEmbeddingUnavailable,
		fmt.Sprintf("embedding failed after %d attempts: %v", e.config.MaxRetries, lastErr), lastErr)
}

// doEmbed performs a single request attempt under the configured timeout.
func (e *HTTPEmbedder) doEmbed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	body, err := json.Marshal(embedRequest{Model: e.config.Model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.Host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}

	raw := result.Embeddings[0]
	if e.config.Dimensions > 0 && len(raw) != e.config.Dimensions {
		return nil, fmt.Errorf("unexpected embedding dimension %d, want %d", len(raw), e.config.Dimensions)
	}

	vec := make([]float32, len(raw))
	for i, v := range raw {
		vec[i] = float32(v)
	}
	return normalizeVector(vec), nil
}

// Dimensions returns the embedding dimension.
func (e *HTTPEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// ModelName returns the model identifier.
func (e *HTTPEmbedder) ModelName() string {
	return e.config.Model
}

// Close releases idle connections.
func (e *HTTPEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.transport.CloseIdleConnections()
	return nil
}
