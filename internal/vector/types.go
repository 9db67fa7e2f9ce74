// Package vector provides vector similarity search over clause embeddings,
// either against a remote index service or a local in-process index.
package vector

import (
	"context"
	"time"
)

// Defaults for vector search.
const (
	// DefaultTopK is the number of matches requested when the caller
	// passes zero.
	DefaultTopK = 5

	// DefaultTimeout bounds a single remote query.
	DefaultTimeout = 10 * time.Second
)

// Metadata keys carried alongside each indexed clause. Absent keys read
// as the empty string.
const (
	MetaClauseText   = "clause_text"
	MetaLawTitle     = "law_title"
	MetaArticleTitle = "article_title"
	MetaClauseNo     = "clause_no"
	MetaArticleLink  = "article_link"
)

// Match is a single vector search result.
type Match struct {
	// ID is the clause identifier, shared with the lexical corpus.
	ID string

	// Score is the similarity score reported by the index. Higher is
	// closer. Only the ordering is consumed downstream.
	Score float64

	// Metadata carries the clause payload stored with the vector.
	Metadata map[string]string
}

// Meta returns the metadata value for key, or "" when absent.
func (m Match) Meta(key string) string {
	if m.Metadata == nil {
		return ""
	}
	return m.Metadata[key]
}

// Index is a vector similarity search backend.
//
// Implementations must be safe for concurrent use.
type Index interface {
	// Query returns the topK nearest matches to the query vector,
	// ordered by descending similarity.
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)

	// Close releases resources.
	Close() error
}
