package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Буквы, которые не раскладываются в NFD на базовую букву + диакритику.
var letterFold = strings.NewReplacer(
	"ł", "l",
	"đ", "d",
	"ø", "o",
	"ß", "ss",
	"æ", "ae",
	"œ", "oe",
)

// ToSlug строит URL-безопасный идентификатор из отображаемого имени:
// нижний регистр, диакритика снята, серии не-алфанумерических символов
// схлопнуты в один дефис, без дефисов по краям.
func ToSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = letterFold.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err == nil {
		s = folded
	}

	s = nonAlnumRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// TrimmedLen — длина строки в символах (не байтах) после TrimSpace.
func TrimmedLen(s string) int {
	return len([]rune(strings.TrimSpace(s)))
}
