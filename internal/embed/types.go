// Package embed provides query embedding generation for semantic retrieval.
package embed

import (
	"context"
	"math"
	"time"
)

// Defaults for the HTTP embedding client.
const (
	// DefaultHost is the Ollama-compatible embedding endpoint.
	DefaultHost = "http://localhost:11434"

	// DefaultModel is the multilingual embedding model used for Vietnamese
	// legal text.
	DefaultModel = "bge-m3"

	// DefaultDimensions is the embedding dimension of the default model.
	DefaultDimensions = 1024

	// DefaultTimeout bounds a single embedding request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of attempts per embedding call.
	DefaultMaxRetries = 3

	// DefaultPoolSize is the HTTP connection pool size.
	DefaultPoolSize = 4
)

// Embedder generates vector embeddings for text.
//
// Implementations must be safe for concurrent use.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding dimension.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Close releases resources.
	Close() error
}

// normalizeVector normalizes a vector to unit length. Cosine similarity is
// unchanged by this; it keeps dot products directly comparable.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
