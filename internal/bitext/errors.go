// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bitext

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for files whose extension has no reader.
	ErrUnsupportedFormat = errors.New("unsupported bitext format")
	// ErrNoLanguagePair is returned when no language pair was given and none
	// could be inferred from the file name.
	ErrNoLanguagePair = errors.New("no language pair")
	// ErrLanguageOrder classifies translation units whose languages do not
	// match the expected pair. Use errors.As with *LanguageOrderError for details.
	ErrLanguageOrder = errors.New("languages not in the expected order")
	// ErrMissingColumn is returned when a CSV/TSV header lacks a language column.
	ErrMissingColumn = errors.New("missing column")
	// ErrMalformedTMX wraps XML decoding failures.
	ErrMalformedTMX = errors.New("malformed tmx")
)

// LanguageOrderError reports the languages found in a translation unit.
type LanguageOrderError struct {
	Unit     int
	Found    LanguagePair
	Expected LanguagePair
}

func (e *LanguageOrderError) Error() string {
	return fmt.Sprintf("tmx unit %d: found %s, expected %s: %s",
		e.Unit, e.Found, e.Expected, ErrLanguageOrder)
}

// Is makes errors.Is(err, ErrLanguageOrder) hold.
func (e *LanguageOrderError) Is(target error) bool {
	return target == ErrLanguageOrder
}
