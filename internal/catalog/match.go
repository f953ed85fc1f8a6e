// Package catalog pre-selects variants and colors from the free-text
// hints a storefront page hands to the checkout. Matching is best-effort:
// a wrong pick is harmless because the selection stays user-editable
// until order submission.
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tanvtse183061-eng/dealer-checkout/internal/dealer"
)

// colorSynonyms maps folded Vietnamese color names to their English
// equivalents. Matching consults the table in both directions.
var colorSynonyms = map[string]string{
	"do":         "red",
	"den":        "black",
	"trang":      "white",
	"xanh duong": "blue",
	"xanh la":    "green",
	"bac":        "silver",
	"xam":        "gray",
	"vang":       "yellow",
	"cam":        "orange",
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and strips Vietnamese diacritics, so "Đỏ" and "do"
// compare equal.
func Fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return strings.ReplaceAll(s, "đ", "d") // đ survives mark stripping
}

// contains reports case- and diacritic-insensitive substring containment
// in either direction.
func contains(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// MatchVariant returns the first variant whose name (or model name)
// matches the hint.
func MatchVariant(hint string, variants []dealer.Variant) (dealer.Variant, bool) {
	h := Fold(hint)
	if h == "" {
		return dealer.Variant{}, false
	}
	for _, v := range variants {
		if contains(h, Fold(v.Name)) || contains(h, Fold(v.Model+" "+v.Name)) {
			return v, true
		}
	}
	return dealer.Variant{}, false
}

// MatchColor returns the first color matching the hint, consulting the
// bilingual synonym table: "red" selects "Đỏ" and "đỏ" selects "Red".
func MatchColor(hint string, colors []dealer.Color) (dealer.Color, bool) {
	terms := expandColorHint(Fold(hint))
	if len(terms) == 0 {
		return dealer.Color{}, false
	}
	for _, c := range colors {
		name := Fold(c.Name)
		for _, t := range terms {
			if contains(name, t) {
				return c, true
			}
		}
	}
	return dealer.Color{}, false
}

// expandColorHint returns the hint plus the synonym counterparts of any
// color word it contains.
func expandColorHint(h string) []string {
	if h == "" {
		return nil
	}
	terms := []string{h}
	for viet, eng := range colorSynonyms {
		switch {
		case strings.Contains(h, viet):
			terms = append(terms, eng)
		case strings.Contains(h, eng):
			terms = append(terms, viet)
		}
	}
	return terms
}
