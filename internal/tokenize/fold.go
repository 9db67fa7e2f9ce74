package tokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// đ/Đ do not decompose under NFD, so they are mapped before the transform.
var dReplacer = strings.NewReplacer("đ", "d", "Đ", "D")

// foldASCII removes Vietnamese diacritics from s by stripping combining
// marks after canonical decomposition, turning "luật lao động" into
// "luat lao dong". The transform chain is stateful, so it is built per
// call rather than shared.
func foldASCII(s string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, dReplacer.Replace(s))
	if err != nil {
		return s
	}
	return folded
}
