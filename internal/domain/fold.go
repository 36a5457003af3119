package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that carry no combining mark and so survive NFD decomposition.
var letterFolds = strings.NewReplacer(
	"ð", "d", "Ð", "d",
	"þ", "th", "Þ", "th",
	"æ", "ae", "Æ", "ae",
	"ø", "o", "Ø", "o",
)

// fold lowercases s and strips diacritics so that "Háteigsvegur",
// "HATEIGSVEGUR" and "hateigsvegur" compare equal.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(letterFolds.Replace(out))
}
