package search

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// SemanticCache caches fused results keyed by query embedding. Lookup
// scans entries in insertion order and answers from the FIRST entry whose
// cosine similarity reaches the threshold, not the closest one overall;
// downstream behavior depends on that ordering, so keep it.
type SemanticCache struct {
	mu      sync.RWMutex
	entries []cacheEntry

	threshold  float64
	maxEntries int
}

type cacheEntry struct {
	embedding []float32
	results   []FusedResult
	createdAt time.Time
}

// NewSemanticCache creates a cache. threshold <= 0 uses
// DefaultCacheThreshold; maxEntries 0 means unbounded, otherwise the
// oldest entries are evicted FIFO once the bound is exceeded.
func NewSemanticCache(threshold float64, maxEntries int) *SemanticCache {
	if threshold <= 0 {
		threshold = DefaultCacheThreshold
	}
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &SemanticCache{threshold: threshold, maxEntries: maxEntries}
}

// Lookup returns the cached results of the first entry similar enough to
// the query embedding, with the matched cosine similarity. Entries whose
// embedding cannot be compared (dimension mismatch, zero vector) are
// skipped.
func (c *SemanticCache) Lookup(embedding []float32) ([]FusedResult, float64, bool) {
	if len(embedding) == 0 {
		return nil, 0, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.entries {
		sim, ok := cosineSimilarity(embedding, c.entries[i].embedding)
		if !ok {
			continue
		}
		if sim >= c.threshold {
			results := make([]FusedResult, len(c.entries[i].results))
			copy(results, c.entries[i].results)
			return results, sim, true
		}
	}
	return nil, 0, false
}

// Store appends a new entry, evicting the oldest when the bound is
// exceeded. Empty embeddings are ignored.
func (c *SemanticCache) Store(embedding []float32, results []FusedResult) {
	if len(embedding) == 0 {
		return
	}

	emb := make([]float32, len(embedding))
	copy(emb, embedding)
	res := make([]FusedResult, len(results))
	copy(res, results)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, cacheEntry{
		embedding: emb,
		results:   res,
		createdAt: time.Now(),
	})

	if c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		evicted := len(c.entries) - c.maxEntries
		c.entries = append([]cacheEntry(nil), c.entries[evicted:]...)
		slog.Debug("cache_evicted", slog.Int("count", evicted))
	}
}

// Len returns the number of cached entries.
func (c *SemanticCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cosineSimilarity computes the cosine of the angle between a and b.
// ok is false when the vectors are incomparable.
func cosineSimilarity(a, b []float32) (float64, bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, false
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), true
}
