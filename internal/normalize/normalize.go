// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package normalize cleans sentence text before it enters a bitext corpus.
package normalize

import (
	"strings"
	"unicode"

	unorm "golang.org/x/text/unicode/norm"
)

// majorClasses lists the assigned general category classes. Anything not in
// one of them (control, format, surrogate, private use, unassigned) is "C".
var majorClasses = []struct {
	class string
	table *unicode.RangeTable
}{
	{"L", unicode.L},
	{"M", unicode.M},
	{"N", unicode.N},
	{"P", unicode.P},
	{"S", unicode.S},
	{"Z", unicode.Z},
}

// MajorCategory returns the first letter of the Unicode general category of r.
func MajorCategory(r rune) string {
	for _, c := range majorClasses {
		if unicode.Is(c.table, r) {
			return c.class
		}
	}
	return "C"
}

// RemoveCategory drops every rune whose major general category is class.
func RemoveCategory(s, class string) string {
	return strings.Map(func(r rune) rune {
		if MajorCategory(r) == class {
			return -1
		}
		return r
	}, s)
}

// RemoveControlCharacters drops control, format, private use and unassigned runes.
func RemoveControlCharacters(s string) string {
	return RemoveCategory(s, "C")
}

// isPrintable mirrors the ASCII printable set: letters, digits, punctuation and
// the six ASCII whitespace characters.
func isPrintable(r rune) bool {
	switch {
	case r >= 0x20 && r <= 0x7e:
		return true
	case r == '\t', r == '\n', r == '\r', r == '\v', r == '\f':
		return true
	}
	return false
}

// StripNonPrintable removes every rune outside the ASCII printable set.
func StripNonPrintable(s string) string {
	return strings.Map(func(r rune) rune {
		if isPrintable(r) {
			return r
		}
		return -1
	}, s)
}

// Text normalises a sentence written in lang:
//   - compatibility decomposition (NFKD), so accented letters split into a
//     base letter and a combining mark
//   - control characters removed
//   - Moses punctuation normalisation for lang
//   - everything outside printable ASCII removed (which also drops the
//     combining marks produced by the decomposition)
func Text(text, lang string) string {
	text = unorm.NFKD.String(text)
	text = RemoveControlCharacters(text)
	text = NewPunctNormalizer(lang).Normalize(text)
	return StripNonPrintable(text)
}
