// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bitext

import (
	"fmt"
	"strings"

	"github.com/techiaith/techiaith-utils/internal/normalize"
)

// Replacement substitutes From with To in sentence text.
type Replacement struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultReplacements flattens line breaks to a single space and expands tabs
// to four spaces.
var DefaultReplacements = []Replacement{
	{From: "\r\n", To: "\n"},
	{From: "\n", To: " "},
	{From: "\t", To: "    "},
}

// DefaultMaxTMXBytes caps how much of a TMX file is decoded.
const DefaultMaxTMXBytes int64 = 2 << 30

// Options controls how a bitext file is read.
type Options struct {
	// Languages is the expected (source, target) order. When zero, Open
	// infers it from the file name.
	Languages LanguagePair
	// Separator overrides the CSV/TSV field delimiter.
	Separator rune
	// Fieldnames names the source and target columns of a CSV/TSV file.
	// Defaults to the language codes.
	Fieldnames [2]string
	// Replacements is applied to every sentence after normalisation. Nil
	// means DefaultReplacements; an empty non-nil slice disables it.
	Replacements []Replacement
	// MaxTMXBytes limits TMX input size. Zero means DefaultMaxTMXBytes.
	MaxTMXBytes int64
}

func (o Options) replacements() []Replacement {
	if o.Replacements == nil {
		return DefaultReplacements
	}
	return o.Replacements
}

func (o Options) keys() [2]string {
	if o.Fieldnames[0] != "" && o.Fieldnames[1] != "" {
		return o.Fieldnames
	}
	return [2]string{o.Languages.Source, o.Languages.Target}
}

// ProcessSentence applies replacements in order and trims surrounding whitespace.
func ProcessSentence(s Sentence, replacements []Replacement) Sentence {
	text := s.Text
	for _, r := range replacements {
		if r.From == "" {
			continue
		}
		text = strings.ReplaceAll(text, r.From, r.To)
	}
	return Sentence{Text: strings.TrimSpace(text), Lang: s.Lang}
}

// ProcessPair applies ProcessSentence to both sides of p.
func ProcessPair(p Pair, replacements []Replacement) Pair {
	return Pair{
		Source: ProcessSentence(p.Source, replacements),
		Target: ProcessSentence(p.Target, replacements),
	}
}

// SentencesFromFields builds a normalised pair from a record keyed by field
// name. keys name the source and target fields, in that order.
func SentencesFromFields(fields map[string]string, langs LanguagePair, keys [2]string) (Pair, error) {
	src, ok := fields[keys[0]]
	if !ok {
		return Pair{}, fmt.Errorf("%w: %q", ErrMissingColumn, keys[0])
	}
	tgt, ok := fields[keys[1]]
	if !ok {
		return Pair{}, fmt.Errorf("%w: %q", ErrMissingColumn, keys[1])
	}
	srcLang := CanonicalLang(langs.Source)
	tgtLang := CanonicalLang(langs.Target)
	return Pair{
		Source: Sentence{Text: normalize.Text(src, srcLang), Lang: srcLang},
		Target: Sentence{Text: normalize.Text(tgt, tgtLang), Lang: tgtLang},
	}, nil
}
