// Package tokenize turns raw legal text into the canonical token sequence
// used by the lexical index.
//
// The pipeline is a fixed sequence of pure transformations: markup
// stripping, punctuation normalization, law-name phrase injection,
// structural abbreviation rewrites, whitespace splitting, and stopword
// filtering. A Tokenizer is built once at startup and is safe for
// concurrent use.
package tokenize

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

var (
	tagRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// asciiPunct is string.punctuation minus underscore; underscore is the
// joining character for injected phrase tokens and rewrites, so it
// survives normalization.
const asciiPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^`{|}~"

// Rewrite is a literal pattern rewrite applied to the normalized text.
// Structural markers like "điều 6" become single tokens like "dieu_6".
type Rewrite struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// DefaultRewrites returns the structural abbreviation rewrites for
// Vietnamese statutes: article ("điều") and clause ("khoản") markers
// followed by a number collapse into one normalized token.
func DefaultRewrites() []Rewrite {
	return []Rewrite{
		{Pattern: regexp.MustCompile(`(?i)điều\s*(\d+)`), Replacement: "dieu_$1"},
		{Pattern: regexp.MustCompile(`(?i)khoản\s*(\d+)`), Replacement: "khoan_$1"},
	}
}

// DefaultPhrases returns the law short-name lookup list. Order matters:
// phrase matching is first-hit in list order.
func DefaultPhrases() []string {
	return []string{
		"luật lao động",
		"luật bảo hiểm xã hội",
		"luật bảo vệ môi trường",
		"luật bảo vệ quyền lợi người tiêu dùng",
		"luật chứng khoán",
		"luật căn cước",
		"luật cạnh tranh",
		"luật giao dịch điện tử",
		"luật kinh doanh bảo hiểm",
		"luật kế toán",
		"luật phá sản",
		"luật phòng chống rửa tiền",
		"luật quản lý thuế",
		"luật sở hữu trí tuệ",
		"luật xây dựng",
		"luật đất đai",
		"luật đầu tư",
		"nghị định 121 2021",
		"nghị định 168 2025",
		"nghị định 23 2021",
		"nghị định 80 2021",
		"thông tư 05 2022",
		"thông tư 07 2022",
		"nghị định 124 2021",
		"thông tư 20 2022",
		"luật thuế thu nhập cá nhân",
		"luật doanh nghiệp",
		"luật thuế doanh nghiệp",
	}
}

// Tokenizer converts raw text into normalized token sequences.
type Tokenizer struct {
	stopwords map[string]struct{}
	phrases   []string
	rewrites  []Rewrite
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithStopwords sets the stopword set. Containment is case-insensitive;
// words are lowercased on insertion.
func WithStopwords(words []string) Option {
	return func(t *Tokenizer) {
		t.stopwords = buildStopwordSet(words)
	}
}

// WithPhrases overrides the law short-name phrase list.
func WithPhrases(phrases []string) Option {
	return func(t *Tokenizer) {
		t.phrases = phrases
	}
}

// WithRewrites overrides the structural abbreviation rewrite table.
func WithRewrites(rewrites []Rewrite) Option {
	return func(t *Tokenizer) {
		t.rewrites = rewrites
	}
}

// New creates a Tokenizer with the default phrase list and rewrites and an
// empty stopword set.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{
		stopwords: map[string]struct{}{},
		phrases:   DefaultPhrases(),
		rewrites:  DefaultRewrites(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize converts text into an ordered sequence of normalized tokens.
// An empty result is valid and signals "matches nothing" downstream.
func (t *Tokenizer) Tokenize(text string) []string {
	text = cleanText(text)
	text = normalizeText(text)

	// First-hit phrase injection: the first known law short name found in
	// the normalized text is removed from the stream and re-inserted at the
	// front as a single underscore-joined token. First hit wins, no overlap
	// handling.
	lawToken := ""
	for _, name := range t.phrases {
		if strings.Contains(text, name) {
			lawToken = strings.Join(strings.Fields(foldASCII(name)), "_")
			text = strings.ReplaceAll(text, name, "")
			break
		}
	}

	for _, rw := range t.rewrites {
		text = rw.Pattern.ReplaceAllString(text, rw.Replacement)
	}

	if lawToken != "" {
		text = lawToken + " " + strings.TrimSpace(text)
	}

	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := t.stopwords[w]; stop {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// cleanText strips markup-like tags and collapses whitespace runs.
func cleanText(text string) string {
	text = tagRe.ReplaceAllString(text, "")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// normalizeText lowercases and replaces punctuation (except underscore)
// with spaces.
func normalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 && strings.ContainsRune(asciiPunct, r) {
			b.WriteByte(' ')
		} else {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}

// LoadStopwords reads a newline-delimited stopword file. A missing file is
// non-fatal and yields an empty set.
func LoadStopwords(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer func() { _ = file.Close() }()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, word)
		}
	}
	return words, scanner.Err()
}

func buildStopwordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}
