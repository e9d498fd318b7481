package items

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Normalizer maps a raw item name to its canonical form. Whether "eggs"
// and "egg" are the same item is a normalizer decision, not a store one;
// the default keeps them distinct.
type Normalizer interface {
	Normalize(string) string
}

// Fold is the default normalizer: NFKC, unicode lowercasing, collapsed
// whitespace. No plural folding.
type Fold struct{}

var _ Normalizer = Fold{}

func (Fold) Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Lower(language.Und).String(s)
	return strings.Join(strings.Fields(s), " ")
}

var listSeparators = regexp.MustCompile(`[,\n;，、،]+`)

// SplitList splits free-form command text into item names. Commas,
// semicolons, newlines and common unicode comma variants all separate
// items; stray command tokens are dropped.
func SplitList(text string) []string {
	var out []string
	for _, part := range listSeparators.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part == "" || strings.HasPrefix(part, "/") {
			continue
		}
		out = append(out, part)
	}
	return out
}
