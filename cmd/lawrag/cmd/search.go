package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietlegal/lawrag/internal/config"
	"github.com/vietlegal/lawrag/internal/corpus"
	"github.com/vietlegal/lawrag/internal/embed"
	"github.com/vietlegal/lawrag/internal/lexical"
	"github.com/vietlegal/lawrag/internal/logging"
	"github.com/vietlegal/lawrag/internal/search"
	"github.com/vietlegal/lawrag/internal/tokenize"
	"github.com/vietlegal/lawrag/internal/vector"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	limit       int
	format      string // "text", "json"
	lexicalOnly bool
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Retrieve statute clauses for a question",
		Long: `Retrieve the statute clauses most relevant to a legal question.

Combines BM25 keyword ranking with embedding similarity search and
merges both lists with Reciprocal Rank Fusion.

Examples:
  lawrag search "người lao động đơn phương chấm dứt hợp đồng"
  lawrag search "mức lương tối thiểu vùng" --limit 3
  lawrag search "thuế thu nhập cá nhân" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSearch(cmd.Context(), cmd, query, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of clauses (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	cmd.Flags().BoolVar(&opts.lexicalOnly, "lexical-only", false, "Skip embedding and vector search")

	return cmd
}

func runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logCfg := logging.Config{Level: cfg.Logging.Level, FilePath: cfg.Logging.FilePath}
	if debugMode {
		logCfg.Level = "debug"
		logCfg.WriteToStderr = true
	}
	cleanup, err := logging.SetupDefault(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer cleanup()

	engine, closers, err := buildEngine(cfg, opts.lexicalOnly)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			_ = c()
		}
	}()

	limit := opts.limit
	if limit <= 0 {
		limit = cfg.Search.ContextTopK
	}

	resp, err := engine.Retrieve(ctx, query, limit)
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	default:
		printText(cmd, resp)
		return nil
	}
}

// buildEngine wires corpus, index, embedder, vector backend and cache
// into a retrieval engine. Returned closers release the backends.
func buildEngine(cfg *config.Config, lexicalOnly bool) (*search.Engine, []func() error, error) {
	stopwords, err := tokenize.LoadStopwords(cfg.Paths.Stopwords)
	if err != nil {
		return nil, nil, err
	}
	tokenizer := tokenize.New(tokenize.WithStopwords(stopwords))

	docs, err := corpus.Load(cfg.Paths.Corpus)
	if err != nil {
		return nil, nil, err
	}

	index, err := lexical.Build(docs, tokenizer,
		lexical.WithParams(cfg.Search.BM25K1, cfg.Search.BM25B))
	if err != nil {
		return nil, nil, err
	}

	var (
		embedder    embed.Embedder
		vectorIndex vector.Index
		closers     []func() error
	)

	if !lexicalOnly && cfg.Vector.Backend != "" {
		vectorIndex, err = buildVectorIndex(cfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, vectorIndex.Close)

		httpEmbedder := embed.NewHTTPEmbedder(embed.HTTPConfig{
			Host:       cfg.Embeddings.OllamaHost,
			Model:      cfg.Embeddings.Model,
			Dimensions: cfg.Embeddings.Dimensions,
			Timeout:    cfg.Embeddings.Timeout,
			MaxRetries: cfg.Embeddings.MaxRetries,
		})
		embedder = embed.NewCachedEmbedder(httpEmbedder, cfg.Embeddings.CacheSize)
		closers = append(closers, embedder.Close)
	}

	cache := search.NewSemanticCache(cfg.Cache.Threshold, cfg.Cache.MaxEntries)

	engine := search.NewEngine(index, vectorIndex, embedder, cache, search.EngineConfig{
		Fusion: search.FusionConfig{
			K:            cfg.Search.RRFConstant,
			VectorWeight: cfg.Search.VectorWeight,
		},
		LexicalTopK:   cfg.Search.LexicalTopK,
		VectorTopK:    cfg.Search.VectorTopK,
		SourceTimeout: cfg.Search.SourceTimeout,
	})
	return engine, closers, nil
}

func buildVectorIndex(cfg *config.Config) (vector.Index, error) {
	switch cfg.Vector.Backend {
	case "remote":
		return vector.NewRemoteIndex(vector.RemoteConfig{
			Endpoint:  cfg.Vector.Endpoint,
			APIKey:    cfg.Vector.APIKey,
			Namespace: cfg.Vector.Namespace,
			Timeout:   cfg.Vector.Timeout,
		})
	case "local":
		return vector.LoadSnapshot(cfg.Vector.SnapshotPath, cfg.Embeddings.Dimensions)
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Vector.Backend)
	}
}

// printText renders a human-readable result listing.
func printText(cmd *cobra.Command, resp *search.Response) {
	out := cmd.OutOrStdout()

	if resp.CacheHit {
		fmt.Fprintf(out, "(cache hit, similarity %.3f)\n\n", resp.CacheSimilarity)
	}
	if resp.Degraded {
		fmt.Fprintln(out, "(degraded: keyword results only)")
		fmt.Fprintln(out)
	}

	if len(resp.Results) == 0 {
		fmt.Fprintln(out, "No matching clauses found.")
		return
	}

	for i, r := range resp.Results {
		header := r.Provenance.LawTitle
		if r.Provenance.ArticleTitle != "" {
			if header != "" {
				header += " - "
			}
			header += r.Provenance.ArticleTitle
		}
		if r.Provenance.ClauseNo != "" {
			header += " (khoản " + r.Provenance.ClauseNo + ")"
		}
		if header == "" {
			header = r.ID
		}

		fmt.Fprintf(out, "%d. %s [score %.4f]\n", i+1, header, r.Score)
		if r.Text != "" {
			fmt.Fprintf(out, "   %s\n", r.Text)
		}
		if r.Provenance.ArticleLink != "" {
			fmt.Fprintf(out, "   %s\n", r.Provenance.ArticleLink)
		}
		fmt.Fprintln(out)
	}

	slog.Debug("search_printed", slog.Int("results", len(resp.Results)))
}
