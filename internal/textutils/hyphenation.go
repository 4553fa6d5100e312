// Package textutils repairs typographic artifacts in OCR'd text before any
// segmentation runs.
package textutils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// lineBreakHyphen matches a hyphen at the end of a line together with the
// line break and the horizontal whitespace around it.
var lineBreakHyphen = regexp.MustCompile(`-[ \t]*\r?\n[ \t]*`)

// MergeHyphenations removes line-wrap hyphenation: a word ending in "-" at
// the end of a line, continued on the next line by a token starting with a
// lowercase letter, is joined without the hyphen and without the line break.
// Any other continuation is left alone. Applying it twice gives the same result as once.
func MergeHyphenations(text string) string {
	breaks := lineBreakHyphen.FindAllStringIndex(text, -1)
	if len(breaks) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, br := range breaks {
		start, end := br[0], br[1]
		if !endsWithWordRune(text[:start]) || !startsWithLower(text[end:]) {
			continue
		}
		b.WriteString(text[last:start])
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// CountHyphenations reports how many line-wrap hyphenations MergeHyphenations
// would repair.
func CountHyphenations(text string) int {
	n := 0
	for _, br := range lineBreakHyphen.FindAllStringIndex(text, -1) {
		if endsWithWordRune(text[:br[0]]) && startsWithLower(text[br[1]:]) {
			n++
		}
	}
	return n
}

// NormalizeUnicode composes decomposed characters (NFC) so that accented
// letters coming out of OCR compare equal to their precomposed spelling.
func NormalizeUnicode(text string) string {
	return norm.NFC.String(text)
}

func endsWithWordRune(s string) bool {
	r, size := utf8.DecodeLastRuneInString(s)
	if size == 0 {
		return false
	}
	if unicode.Is(unicode.Mn, r) {
		// combining mark: judge the base letter it belongs to
		return endsWithWordRune(s[:len(s)-size])
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func startsWithLower(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && unicode.IsLower(r)
}
