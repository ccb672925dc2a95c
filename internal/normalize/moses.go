// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package normalize

import (
	"regexp"
	"strings"
)

type substitution struct {
	re   *regexp.Regexp
	repl string
}

func rules(pairs ...string) []substitution {
	out := make([]substitution, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, substitution{re: regexp.MustCompile(pairs[i]), repl: pairs[i+1]})
	}
	return out
}

// Substitution tables of the Moses normalize-punctuation script, applied in
// this order.
var (
	extraWhitespace = rules(
		`\r`, ``,
		`\(`, ` (`,
		`\)`, `) `,
		` +`, ` `,
		`\) ([.!:?;,])`, `)${1}`,
		`\( `, `(`,
		` \)`, `)`,
		`(\p{Nd}) %`, `${1}%`,
		` :`, `:`,
		` ;`, `;`,
	)

	nonPennQuotes = rules(
		"`", `'`,
		`''`, ` " `,
	)

	unicodeQuotes = rules(
		`„`, `"`,
		`“`, `"`,
		`”`, `"`,
		`–`, `-`,
		`—`, ` - `,
		` +`, ` `,
		`´`, `'`,
		`([a-zA-Z])‘([a-zA-Z])`, `${1}'${2}`,
		`([a-zA-Z])’([a-zA-Z])`, `${1}'${2}`,
		`‘`, `'`,
		`‚`, `'`,
		`’`, `"`,
		`''`, `"`,
		`´´`, `"`,
		`…`, `...`,
	)

	frenchQuotes = rules(
		`\x{00A0}«\x{00A0}`, `"`,
		`«\x{00A0}`, `"`,
		`«`, `"`,
		`\x{00A0}»\x{00A0}`, `"`,
		`\x{00A0}»`, `"`,
		`»`, `"`,
	)

	pseudoSpaces = rules(
		`\x{00A0}%`, `%`,
		`nº\x{00A0}`, `nº `,
		`\x{00A0}:`, `:`,
		`\x{00A0}ºC`, ` ºC`,
		`\x{00A0}cm`, ` cm`,
		`\x{00A0}\?`, `?`,
		`\x{00A0}!`, `!`,
		`\x{00A0};`, `;`,
		`,\x{00A0}`, `, `,
		` +`, ` `,
	)

	enQuoteComma = rules(
		`"([,.]+)`, `${1}"`,
	)

	deEsFrQuoteComma = rules(
		`,"`, `",`,
		`(\.+)"([\s\p{Z}]*[^<])`, `"${1}${2}`,
	)

	decimalComma = rules(
		`(\p{Nd})\x{00A0}(\p{Nd})`, `${1},${2}`,
	)

	decimalPoint = rules(
		`(\p{Nd})\x{00A0}(\p{Nd})`, `${1}.${2}`,
	)
)

// PunctNormalizer is the Moses punctuation normaliser for a single language.
type PunctNormalizer struct {
	substitutions []substitution
}

// NewPunctNormalizer builds the substitution chain for lang. Quote/comma
// ordering and the digit group separator depend on the language.
func NewPunctNormalizer(lang string) *PunctNormalizer {
	lang = strings.ToLower(lang)

	subs := make([]substitution, 0, 64)
	subs = append(subs, extraWhitespace...)
	subs = append(subs, nonPennQuotes...)
	subs = append(subs, unicodeQuotes...)
	subs = append(subs, frenchQuotes...)
	subs = append(subs, pseudoSpaces...)

	switch lang {
	case "en":
		subs = append(subs, enQuoteComma...)
	case "de", "es", "fr":
		subs = append(subs, deEsFrQuoteComma...)
	}

	switch lang {
	case "de", "es", "cz", "cs", "fr":
		subs = append(subs, decimalComma...)
	default:
		subs = append(subs, decimalPoint...)
	}

	return &PunctNormalizer{substitutions: subs}
}

// Normalize applies every substitution in order and trims the result.
func (n *PunctNormalizer) Normalize(text string) string {
	for _, s := range n.substitutions {
		text = s.re.ReplaceAllString(text, s.repl)
	}
	return strings.TrimSpace(text)
}
