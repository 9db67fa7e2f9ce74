package search

import (
	"sort"
	"strings"
)

// Fuse merges a lexical and a vector ranked list with reciprocal rank
// fusion. Each list contributes 1/(K+rank) per document, the vector side
// scaled by VectorWeight; a document in both lists sums both
// contributions. Rank position is all that matters, so the two sources'
// incomparable score scales never mix.
//
// Ties break toward the better lexical rank, then toward first
// appearance (lexical list first), which keeps the output deterministic.
func Fuse(lexical, vector []RankedResult, cfg FusionConfig, topK int) []FusedResult {
	cfg = cfg.withDefaults()

	fused := make(map[string]*FusedResult)
	order := make([]string, 0, len(lexical)+len(vector))

	for i, r := range lexical {
		rank := i + 1
		f := &FusedResult{
			ID:          r.ID,
			Score:       1.0 / float64(cfg.K+rank),
			Text:        r.Text,
			Provenance:  r.Provenance,
			LexicalRank: rank,
		}
		fused[r.ID] = f
		order = append(order, r.ID)
	}

	for i, r := range vector {
		rank := i + 1
		contribution := cfg.VectorWeight / float64(cfg.K+rank)

		if f, ok := fused[r.ID]; ok {
			f.Score += contribution
			f.VectorRank = rank
			// Lexical text is the complete clause; vector metadata may
			// be truncated, so only fill gaps.
			if f.Text == "" {
				f.Text = r.Text
			}
			fillProvenance(&f.Provenance, r.Provenance)
			continue
		}

		fused[r.ID] = &FusedResult{
			ID:         r.ID,
			Score:      contribution,
			Text:       r.Text,
			Provenance: r.Provenance,
			VectorRank: rank,
		}
		order = append(order, r.ID)
	}

	results := make([]FusedResult, 0, len(order))
	seen := make(map[string]int, len(order))
	for i, id := range order {
		seen[id] = i
		results = append(results, *fused[id])
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		if la, lb := lexicalTieRank(results[a]), lexicalTieRank(results[b]); la != lb {
			return la < lb
		}
		return seen[results[a].ID] < seen[results[b].ID]
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results
}

// lexicalTieRank orders absent-from-lexical (rank 0) after any present rank.
func lexicalTieRank(r FusedResult) int {
	if r.LexicalRank == 0 {
		return int(^uint(0) >> 1)
	}
	return r.LexicalRank
}

// fillProvenance copies fields from src into empty fields of dst.
func fillProvenance(dst *Provenance, src Provenance) {
	if dst.LawTitle == "" {
		dst.LawTitle = src.LawTitle
	}
	if dst.ArticleTitle == "" {
		dst.ArticleTitle = src.ArticleTitle
	}
	if dst.ClauseNo == "" {
		dst.ClauseNo = src.ClauseNo
	}
	if dst.ArticleLink == "" {
		dst.ArticleLink = src.ArticleLink
	}
}

// Assemble joins the fused clauses' texts in order with a blank line
// between them. Results without text are skipped. Empty input yields "",
// meaning "no context".
func Assemble(fused []FusedResult) string {
	parts := make([]string, 0, len(fused))
	for _, f := range fused {
		if f.Text == "" {
			continue
		}
		parts = append(parts, f.Text)
	}
	return strings.Join(parts, "\n\n")
}
