// Package lexical provides the in-memory BM25 index over the statute
// corpus.
//
// The index is built once from the full document set at startup and is
// read-only afterwards, which makes it safe for unsynchronized concurrent
// reads on the request path.
package lexical

import (
	"math"
	"sort"

	"github.com/vietlegal/lawrag/internal/corpus"
	"github.com/vietlegal/lawrag/internal/errors"
	"github.com/vietlegal/lawrag/internal/tokenize"
)

// BM25 tuning defaults, matched to the corpus of short statute clauses:
// low b because clause length carries little relevance signal.
const (
	DefaultK1 = 1.0
	DefaultB  = 0.2
)

// posting records one document containing a term, in corpus insertion order.
type posting struct {
	ord int // document ordinal
	tf  int // term frequency
}

// Hit is a scored document returned by Search, best first.
type Hit struct {
	Doc   *corpus.Document
	Score float64
}

// Index is the inverted index plus the per-document and corpus statistics
// BM25 needs.
type Index struct {
	tokenizer *tokenize.Tokenizer
	k1        float64
	b         float64

	docs       []corpus.Document
	docLengths []int
	inverted   map[string][]posting
	avgDocLen  float64
}

// Option configures index construction.
type Option func(*Index)

// WithParams overrides the term-frequency saturation constant k1 and the
// length-normalization constant b.
func WithParams(k1, b float64) Option {
	return func(ix *Index) {
		ix.k1 = k1
		ix.b = b
	}
}

// Build constructs the index from the full document set. An empty document
// set is a startup failure.
func Build(docs []corpus.Document, tokenizer *tokenize.Tokenizer, opts ...Option) (*Index, error) {
	if len(docs) == 0 {
		return nil, errors.IndexBuildError("cannot build lexical index from empty corpus", nil)
	}

	ix := &Index{
		tokenizer:  tokenizer,
		k1:         DefaultK1,
		b:          DefaultB,
		docs:       docs,
		docLengths: make([]int, len(docs)),
		inverted:   make(map[string][]posting),
	}
	for _, opt := range opts {
		opt(ix)
	}

	totalLen := 0
	for ord := range docs {
		tokens := tokenizer.Tokenize(docs[ord].Text)
		ix.docLengths[ord] = len(tokens)
		totalLen += len(tokens)

		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		for t, count := range tf {
			ix.inverted[t] = append(ix.inverted[t], posting{ord: ord, tf: count})
		}
	}
	ix.avgDocLen = float64(totalLen) / float64(len(docs))

	return ix, nil
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.docs)
}

// Score computes BM25 scores for a token sequence, keyed by document
// ordinal. The result is unsorted; documents matching no query token are
// absent rather than present with score zero, which materially changes
// downstream fusion ranks. Query tokens absent from the corpus contribute
// zero.
func (ix *Index) Score(tokens []string) map[int]float64 {
	scores := make(map[int]float64)

	for _, t := range tokens {
		postings, ok := ix.inverted[t]
		if !ok {
			continue
		}

		idf := ix.idf(len(postings))
		for _, p := range postings {
			tf := float64(p.tf)
			docLen := float64(ix.docLengths[p.ord])

			num := tf * (ix.k1 + 1)
			denom := tf + ix.k1*(1-ix.b+ix.b*(docLen/ix.avgDocLen))
			scores[p.ord] += idf * (num / denom)
		}
	}

	return scores
}

// Search tokenizes text, scores it against the corpus, and returns the topK
// best hits sorted by score descending. Ties keep corpus insertion order.
// An empty-after-filtering query matches nothing and returns an empty list.
func (ix *Index) Search(text string, topK int) ([]Hit, error) {
	if topK <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidTopK, "top_k must be positive", nil)
	}

	scores := ix.Score(ix.tokenizer.Tokenize(text))
	if len(scores) == 0 {
		return []Hit{}, nil
	}

	// Collect ordinals in insertion order so the stable sort breaks score
	// ties in favor of earlier corpus documents.
	ords := make([]int, 0, len(scores))
	for ord := range scores {
		ords = append(ords, ord)
	}
	sort.Ints(ords)
	sort.SliceStable(ords, func(i, j int) bool {
		return scores[ords[i]] > scores[ords[j]]
	})

	if len(ords) > topK {
		ords = ords[:topK]
	}

	hits := make([]Hit, len(ords))
	for i, ord := range ords {
		hits[i] = Hit{Doc: &ix.docs[ord], Score: scores[ord]}
	}
	return hits, nil
}

// idf computes ln(1 + (N - n + 0.5) / (n + 0.5)); always positive, so a
// term present in every document still contributes.
func (ix *Index) idf(df int) float64 {
	n := float64(df)
	return math.Log(1 + (float64(len(ix.docs))-n+0.5)/(n+0.5))
}
