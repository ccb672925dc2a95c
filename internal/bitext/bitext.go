// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package bitext reads parallel corpora (pairs of sentences in a source and
// a target language) from CSV, TSV and TMX files.
package bitext

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// LanguagePair names the source and target language of a bitext.
type LanguagePair struct {
	Source string `yaml:"source" json:"source"`
	Target string `yaml:"target" json:"target"`
}

// IsZero reports whether neither language is set.
func (p LanguagePair) IsZero() bool {
	return p.Source == "" && p.Target == ""
}

// String renders the pair as "src-tgt".
func (p LanguagePair) String() string {
	return p.Source + "-" + p.Target
}

// Canonical lower-cases both codes and drops any region subtag.
func (p LanguagePair) Canonical() LanguagePair {
	return LanguagePair{Source: CanonicalLang(p.Source), Target: CanonicalLang(p.Target)}
}

// CanonicalLang turns "en-GB" or "EN_gb" into "en".
func CanonicalLang(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return strings.ToLower(code)
}

var pairPattern = regexp.MustCompile(`^([A-Za-z]{2,3})[-_]([A-Za-z]{2,3})$`)

// ParseLanguagePair parses "en-cy" (or "en_cy") into a LanguagePair.
func ParseLanguagePair(s string) (LanguagePair, error) {
	m := pairPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return LanguagePair{}, fmt.Errorf("%w: %q is not of the form src-tgt", ErrNoLanguagePair, s)
	}
	return LanguagePair{Source: strings.ToLower(m[1]), Target: strings.ToLower(m[2])}, nil
}

var pathPairPattern = regexp.MustCompile(`(?i)(?:^|[_.\s-])([a-z]{2,3})-([a-z]{2,3})(?:[_.\s-]|$)`)

// PairFromPath infers a language pair from a file name such as
// "en-cy_health.tmx" or "corpus.en-cy.csv".
func PairFromPath(path string) (LanguagePair, bool) {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	m := pathPairPattern.FindStringSubmatch(name)
	if m == nil {
		return LanguagePair{}, false
	}
	return LanguagePair{Source: strings.ToLower(m[1]), Target: strings.ToLower(m[2])}, true
}

// Sentence is a piece of text in language Lang.
type Sentence struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// Pair is one aligned unit of a bitext.
type Pair struct {
	Source Sentence `json:"source"`
	Target Sentence `json:"target"`
}

// Empty reports whether both sides carry no text.
func (p Pair) Empty() bool {
	return p.Source.Text == "" && p.Target.Text == ""
}
