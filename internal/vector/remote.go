package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vietlegal/lawrag/internal/errors"
)

// RemoteConfig configures the remote vector index client.
type RemoteConfig struct {
	// Endpoint is the base URL of the index service.
	Endpoint string

	// APIKey authenticates requests. Empty disables the header.
	APIKey string

	// Namespace selects the index partition to query.
	Namespace string

	// Timeout bounds a single query.
	Timeout time.Duration
}

// RemoteIndex queries a hosted vector index over HTTP. A failed or
// timed-out query is reported as ERR_302_VECTOR_UNAVAILABLE, never as an
// empty result set, so the caller can distinguish "nothing similar" from
// "index unreachable".
type RemoteIndex struct {
	client *http.Client
	config RemoteConfig
}

var _ Index = (*RemoteIndex)(nil)

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace,omitempty"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []struct {
		ID       string            `json:"id"`
		Score    float64           `json:"score"`
		Metadata map[string]string `json:"metadata"`
	} `json:"matches"`
}

// NewRemoteIndex creates the remote index client. No network call is made
// at construction.
func NewRemoteIndex(cfg RemoteConfig) (*RemoteIndex, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.ConfigError("vector index endpoint is required", nil)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &RemoteIndex{
		client: &http.Client{},
		config: cfg,
	}, nil
}

// Query runs a nearest-neighbor search against the remote index.
func (r *RemoteIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	body, err := json.Marshal(queryRequest{
		Vector:          vector,
		TopK:            topK,
		Namespace:       r.config.Namespace,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(r.config.Endpoint, "/")+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.config.APIKey != "" {
		req.Header.Set("Api-Key", r.config.APIKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.ErrCodeNetworkTimeout,
				fmt.Sprintf("vector query timed out after %s", r.config.Timeout), err)
		}
		return nil, errors.New(errors.ErrCodeVectorUnavailable,
			fmt.Sprintf("vector query failed: %v", err), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.New(errors.ErrCodeVectorUnavailable,
			fmt.Sprintf("vector index returned status %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.New(errors.ErrCodeVectorUnavailable, "malformed vector index response", err)
	}

	matches := make([]Match, 0, len(result.Matches))
	for _, m := range result.Matches {
		if m.ID == "" {
			continue
		}
		matches = append(matches, Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return matches, nil
}

// Close releases idle connections.
func (r *RemoteIndex) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
