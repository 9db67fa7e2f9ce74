package search

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietlegal/lawrag/internal/embed"
	"github.com/vietlegal/lawrag/internal/errors"
	"github.com/vietlegal/lawrag/internal/lexical"
	"github.com/vietlegal/lawrag/internal/vector"
)

// EngineConfig tunes the retrieval engine.
type EngineConfig struct {
	// Fusion holds the rank fusion parameters.
	Fusion FusionConfig

	// LexicalTopK and VectorTopK are how many candidates each source
	// contributes before fusion.
	LexicalTopK int
	VectorTopK  int

	// SourceTimeout is the shared budget for the concurrent lexical and
	// vector fetches.
	SourceTimeout time.Duration
}

// Engine answers retrieval queries by fusing lexical and vector rankings.
// Construct once at startup and share; the index, vector backend,
// embedder and cache are injected and never rebuilt per request.
type Engine struct {
	lexical  *lexical.Index
	vector   vector.Index
	embedder embed.Embedder
	cache    *SemanticCache
	config   EngineConfig
}

// NewEngine wires the retrieval engine. vectorIndex, embedder and cache
// may be nil; a nil vector side degrades every query to lexical-only and
// a nil cache disables caching.
func NewEngine(ix *lexical.Index, vectorIndex vector.Index, embedder embed.Embedder, cache *SemanticCache, cfg EngineConfig) *Engine {
	if cfg.LexicalTopK <= 0 {
		cfg.LexicalTopK = DefaultSourceTopK
	}
	if cfg.VectorTopK <= 0 {
		cfg.VectorTopK = DefaultSourceTopK
	}
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}
	cfg.Fusion = cfg.Fusion.withDefaults()

	return &Engine{
		lexical:  ix,
		vector:   vectorIndex,
		embedder: embedder,
		cache:    cache,
		config:   cfg,
	}
}

// Retrieve runs one hybrid retrieval and assembles the context for the
// answer generation step. topK bounds the fused result list.
//
// Embedding or vector index failure degrades the query to lexical-only
// results, marked Degraded; only when both sources fail does Retrieve
// return an error.
func (e *Engine) Retrieve(ctx context.Context, query string, topK int) (*Response, error) {
	if topK <= 0 {
		return nil, errors.InvalidArgument("top_k must be positive")
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New(errors.ErrCodeEmptyQuery, "query must not be empty", nil)
	}

	start := time.Now()
	slog.Info("retrieve_started",
		slog.Int("top_k", topK),
		slog.Int("query_len", len(query)))

	queryVec, embErr := e.embedQuery(ctx, query)
	if embErr != nil {
		slog.Warn("embedding_degraded", slog.String("error", embErr.Error()))
	}

	if queryVec != nil && e.cache != nil {
		if cached, sim, ok := e.cache.Lookup(queryVec); ok {
			if len(cached) > topK {
				cached = cached[:topK]
			}
			slog.Info("cache_hit",
				slog.Float64("similarity", sim),
				slog.Int("results", len(cached)))
			return &Response{
				Results:         cached,
				Context:         Assemble(cached),
				CacheHit:        true,
				CacheSimilarity: sim,
			}, nil
		}
	}

	lexicalHits, vectorMatches, lexErr, vecErr := e.fetchSources(ctx, query, queryVec, embErr)

	if lexErr != nil && vecErr != nil {
		return nil, errors.New(errors.ErrCodeVectorUnavailable,
			"all retrieval sources failed", vecErr)
	}

	fused := Fuse(fromLexical(lexicalHits), fromVector(vectorMatches), e.config.Fusion, topK)

	if queryVec != nil && e.cache != nil {
		e.cache.Store(queryVec, fused)
	}

	degraded := lexErr != nil || vecErr != nil
	slog.Info("retrieve_completed",
		slog.Int("lexical_hits", len(lexicalHits)),
		slog.Int("vector_matches", len(vectorMatches)),
		slog.Int("fused", len(fused)),
		slog.Bool("degraded", degraded),
		slog.Duration("elapsed", time.Since(start)))

	return &Response{
		Results:  fused,
		Context:  Assemble(fused),
		Degraded: degraded,
	}, nil
}

// embedQuery returns the query embedding, or nil with the cause when the
// vector side is unavailable.
func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if e.embedder == nil || e.vector == nil {
		return nil, errors.New(errors.ErrCodeEmbeddingUnavailable, "no vector backend configured", nil)
	}
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return vec, nil
}

// fetchSources runs the lexical search and the vector query concurrently
// under a shared timeout. Per-source failures are captured, not fatal to
// the group; the caller decides how to degrade.
func (e *Engine) fetchSources(ctx context.Context, query string, queryVec []float32, embErr error) ([]lexical.Hit, []vector.Match, error, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.SourceTimeout)
	defer cancel()

	var (
		lexicalHits   []lexical.Hit
		vectorMatches []vector.Match
		lexErr        error
		vecErr        error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lexicalHits, lexErr = e.lexical.Search(query, e.config.LexicalTopK)
		return nil
	})

	g.Go(func() error {
		if queryVec == nil {
			vecErr = embErr
			return nil
		}
		vectorMatches, vecErr = e.vector.Query(gctx, queryVec, e.config.VectorTopK)
		if vecErr != nil {
			slog.Warn("vector_search_degraded", slog.String("error", vecErr.Error()))
		}
		return nil
	})

	_ = g.Wait()
	return lexicalHits, vectorMatches, lexErr, vecErr
}

// fromLexical converts BM25 hits to the fusion input shape.
func fromLexical(hits []lexical.Hit) []RankedResult {
	results := make([]RankedResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, RankedResult{
			ID:    h.Doc.ID,
			Score: h.Score,
			Text:  h.Doc.Text,
			Provenance: Provenance{
				LawTitle:     h.Doc.LawTitle,
				ArticleTitle: h.Doc.ArticleTitle,
				ClauseNo:     h.Doc.ClauseNo,
				ArticleLink:  h.Doc.ArticleLink,
			},
		})
	}
	return results
}

// fromVector converts vector matches to the fusion input shape. Metadata
// fields may be absent and read as "".
func fromVector(matches []vector.Match) []RankedResult {
	results := make([]RankedResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, RankedResult{
			ID:    m.ID,
			Score: m.Score,
			Text:  m.Meta(vector.MetaClauseText),
			Provenance: Provenance{
				LawTitle:     m.Meta(vector.MetaLawTitle),
				ArticleTitle: m.Meta(vector.MetaArticleTitle),
				ClauseNo:     m.Meta(vector.MetaClauseNo),
				ArticleLink:  m.Meta(vector.MetaArticleLink),
			},
		})
	}
	return results
}
