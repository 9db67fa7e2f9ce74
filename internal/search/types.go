// Package search implements hybrid retrieval: reciprocal rank fusion of
// lexical and vector rankings, a similarity-keyed result cache, and the
// retrieval engine tying the sources together.
package search

import "time"

// Defaults for fusion and caching.
const (
	// DefaultRRFK is the rank-smoothing constant of reciprocal rank fusion.
	DefaultRRFK = 60

	// DefaultVectorWeight scales the vector list's rank contributions.
	DefaultVectorWeight = 1.0

	// DefaultCacheThreshold is the cosine similarity at or above which a
	// cached entry answers a query.
	DefaultCacheThreshold = 0.75

	// DefaultSourceTopK is how many candidates each source contributes
	// before fusion.
	DefaultSourceTopK = 5

	// DefaultContextTopK is how many fused clauses the assembled context
	// carries.
	DefaultContextTopK = 6

	// DefaultSourceTimeout is the shared budget for the concurrent
	// lexical and vector fetches.
	DefaultSourceTimeout = 15 * time.Second
)

// Provenance identifies where a clause comes from in the statute corpus.
type Provenance struct {
	LawTitle     string `json:"law_title"`
	ArticleTitle string `json:"article_title"`
	ClauseNo     string `json:"clause_no"`
	ArticleLink  string `json:"article_link"`
}

// RankedResult is one entry of a single-source ranked list. Score is the
// source's own scale (BM25 or cosine similarity); fusion consumes only the
// list position.
type RankedResult struct {
	ID         string     `json:"id"`
	Score      float64    `json:"score"`
	Text       string     `json:"text"`
	Provenance Provenance `json:"provenance"`
}

// FusedResult is a clause after rank fusion. LexicalRank and VectorRank
// are 1-indexed positions in the source lists; 0 means the clause was
// absent from that list.
type FusedResult struct {
	ID          string     `json:"id"`
	Score       float64    `json:"score"`
	Text        string     `json:"text"`
	Provenance  Provenance `json:"provenance"`
	LexicalRank int        `json:"lexical_rank"`
	VectorRank  int        `json:"vector_rank"`
}

// FusionConfig holds the reciprocal rank fusion parameters.
type FusionConfig struct {
	// K is the rank-smoothing constant; larger flattens the difference
	// between adjacent ranks.
	K int

	// VectorWeight scales the vector list's contributions relative to
	// the lexical list's.
	VectorWeight float64
}

// withDefaults fills zero fields.
func (c FusionConfig) withDefaults() FusionConfig {
	if c.K <= 0 {
		c.K = DefaultRRFK
	}
	if c.VectorWeight <= 0 {
		c.VectorWeight = DefaultVectorWeight
	}
	return c
}

// Response is the outcome of one retrieval.
type Response struct {
	// Results are the fused clauses, best first.
	Results []FusedResult `json:"results"`

	// Context is the assembled clause text for the generation step.
	Context string `json:"context"`

	// Degraded is set when one ranking source was unavailable and the
	// results come from the surviving source alone.
	Degraded bool `json:"degraded"`

	// CacheHit is set when the response was answered from the semantic
	// cache; CacheSimilarity is the matched entry's cosine similarity.
	CacheHit        bool    `json:"cache_hit"`
	CacheSimilarity float64 `json:"cache_similarity,omitempty"`
}
