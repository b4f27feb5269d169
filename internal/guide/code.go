// Package guide derives the physical sampling protocol and the templated
// rationale that accompany a synthesized recipe.
package guide

import (
	"fmt"
	"strings"
	"unicode"
)

// CanonicalName folds an ingredient name for comparison: lower case, with
// surrounding whitespace trimmed and inner runs collapsed to one space.
func CanonicalName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// SameScent reports whether two ingredient names refer to the same scent.
func SameScent(a, b string) bool {
	return a == b || CanonicalName(a) == CanonicalName(b)
}

// ScentCode returns the short sampling code of an ingredient: a letter or
// digit derived from the first letter or digit of its canonical name,
// followed by the sum of the canonical name's code points modulo 100 as two
// digits. ASCII letters and digits are used as is (upper-cased); letters from
// other scripts map onto A-Z by code point.
func ScentCode(name string) string {
	canonical := CanonicalName(name)

	prefix := 'X'
	for _, r := range canonical {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			prefix = codeRune(r)
			break
		}
	}

	sum := 0
	for _, r := range canonical {
		sum += int(r)
	}
	return fmt.Sprintf("%c%02d", prefix, sum%100)
}

func codeRune(r rune) rune {
	if r < unicode.MaxASCII {
		return unicode.ToUpper(r)
	}
	return 'A' + r%26
}

// UniqueCodes returns the ScentCode of each name, suffixed with B, C, ...
// where an earlier name in the list already took the same code.
func UniqueCodes(names []string) []string {
	codes := make([]string, len(names))
	taken := make(map[string]bool, len(names))
	for i, name := range names {
		base := ScentCode(name)
		code := base
		for n := 1; taken[code]; n++ {
			code = base + suffix(n)
		}
		taken[code] = true
		codes[i] = code
	}
	return codes
}

// suffix maps 1, 2, ... to B, C, ..., Z, ZB, ZC, ...
func suffix(n int) string {
	var sb strings.Builder
	for ; n > 25; n -= 25 {
		sb.WriteByte('Z')
	}
	sb.WriteByte(byte('A' + n))
	return sb.String()
}
