package csv

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// HeaderKey normalizes a header cell into a column key: BOM and surrounding
// space removed, diacritics folded, lower-cased, inner spaces, dots and
// dashes turned into underscores. "Total Laid-Off" becomes "total_laid_off".
func HeaderKey(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, utf8BOM))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, h); err == nil {
		h = folded
	}
	h = strings.ToLower(h)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.':
			return '_'
		}
		return r
	}, h)
}
