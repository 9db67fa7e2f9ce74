// Package corpus defines the retrievable document model and the JSONL
// corpus snapshot loader.
//
// A Document is the atomic retrievable unit of legal text: one clause of a
// statute plus provenance metadata. Documents are created at corpus load
// time and never mutated afterwards.
package corpus

// Document is an immutable retrievable unit.
//
// Provenance fields (law title, article title, clause number, source link)
// are opaque pass-through values; retrieval never interprets them.
type Document struct {
	// ID is the unique document identifier.
	ID string `json:"id"`

	// Text is the full clause text. This is the field indexed lexically
	// and the text assembled into generation context.
	Text string `json:"clause_text"`

	// LawTitle is the title of the law this clause belongs to.
	LawTitle string `json:"law_title"`

	// ArticleTitle is the title of the containing article.
	ArticleTitle string `json:"article_title"`

	// ClauseNo is the clause number within the article.
	ClauseNo string `json:"clause_no"`

	// ArticleLink is the source link for the article.
	ArticleLink string `json:"article_link"`
}
