package issue

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugLen caps slug length so branch names stay readable.
const maxSlugLen = 50

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// asciiFold decomposes to NFKD, strips combining marks and drops everything
// that still isn't ASCII ("Fix café" -> "Fix cafe", "日本語" -> "").
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// Slug converts a free-text title into a short ASCII token suitable for
// branch names and directory paths. Returns "" when the title yields no
// usable characters. Deterministic: same title, same slug.
func Slug(title string) string {
	folded, _, err := transform.String(asciiFold, title)
	if err != nil {
		folded = title
	}
	s := strings.ToLower(folded)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if len(s) > maxSlugLen {
		cut := s[:maxSlugLen]
		// Prefer cutting at a token boundary over splitting a word.
		if idx := strings.LastIndex(cut, "-"); idx > 0 && s[maxSlugLen] != '-' {
			cut = cut[:idx]
		}
		s = strings.TrimRight(cut, "-")
	}
	return s
}
