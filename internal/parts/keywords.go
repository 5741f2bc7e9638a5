package parts

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Controlled keyword set. A query has to hit one of these before any
// provider is called: backends cannot service arbitrary descriptions, so
// unrecognized queries get a clarification prompt instead of a wasted call.
var keywords = []string{
	"фильтр", "filter",
	"масло", "oil",
	"колодк", "brake", "pad",
	"свеч", "spark", "plug",
	"ремень", "belt",
	"аккумулятор", "battery",
	"амортизатор", "shock",
	"сцеплени", "clutch",
	"радиатор", "radiator",
	"артикул",
}

// Bare article codes ("MANN W712/75", "0986452041") are serviceable too.
var articleCodeRegex = regexp.MustCompile(`\b[A-Za-z0-9][A-Za-z0-9/\-.]{5,}\d\b|\b\d{6,}\b`)

// Fold normalizes a query for matching: lowercase, accents stripped,
// whitespace collapsed.
func Fold(s string) string {
	s = strings.ToLower(s)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, s)
	return strings.Join(strings.Fields(s), " ")
}

// RecognizedQuery reports whether a free-text part query contains something
// a provider can work with.
func RecognizedQuery(query string) bool {
	folded := Fold(query)
	if folded == "" {
		return false
	}
	for _, kw := range keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return articleCodeRegex.MatchString(query)
}
