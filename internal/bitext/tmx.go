// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bitext

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

type tmxUnit struct {
	ID       string       `xml:"tuid,attr"`
	Variants []tmxVariant `xml:"tuv"`
}

type tmxVariant struct {
	Attrs []xml.Attr  `xml:",any,attr"`
	Seg   *tmxSegment `xml:"seg"`
}

// lang prefers xml:lang, then the TMX 1.1 lang attribute, then whatever
// attribute comes first.
func (v tmxVariant) lang() string {
	for _, a := range v.Attrs {
		if a.Name.Local == "lang" && (a.Name.Space == xmlNamespace || a.Name.Space == "xml") {
			return CanonicalLang(a.Value)
		}
	}
	for _, a := range v.Attrs {
		if a.Name.Local == "lang" {
			return CanonicalLang(a.Value)
		}
	}
	if len(v.Attrs) > 0 {
		return CanonicalLang(v.Attrs[0].Value)
	}
	return ""
}

// tmxSegment keeps both the full character data of a <seg> and the runs of
// text sitting directly under it, outside any inline markup element.
type tmxSegment struct {
	full   string
	direct []string
}

func (s *tmxSegment) UnmarshalXML(d *xml.Decoder, _ xml.StartElement) error {
	var full strings.Builder
	depth := 0
	adjacent := false
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			adjacent = false
		case xml.EndElement:
			if depth == 0 {
				s.full = full.String()
				return nil
			}
			depth--
			adjacent = false
		case xml.CharData:
			full.Write(t)
			if depth != 0 {
				continue
			}
			if adjacent {
				s.direct[len(s.direct)-1] += string(t)
			} else {
				s.direct = append(s.direct, string(t))
			}
			adjacent = true
		default:
			adjacent = false
		}
	}
}

// Text returns the segment text. Level 1 segments are plain text. Level 2
// segments carry formatting codes such as "{b>" inside <bpt>/<ept>/<ph>;
// for those only the text outside the inline elements is kept, joined by a
// space when a "{j}" join placeholder is present.
func (s *tmxSegment) Text() string {
	if !strings.ContainsAny(s.full, "{}") {
		return s.full
	}
	sep := ""
	if strings.Contains(s.full, "{j") {
		sep = " "
	}
	return strings.Join(s.direct, sep)
}

// TMXReader streams translation units from a TMX document.
type TMXReader struct {
	dec     *xml.Decoder
	langs   LanguagePair
	units   int
	skipped int
}

// NewTMXReader returns a reader expecting units in opts.Languages order.
func NewTMXReader(r io.Reader, opts Options) *TMXReader {
	limit := opts.MaxTMXBytes
	if limit <= 0 {
		limit = DefaultMaxTMXBytes
	}
	dec := xml.NewDecoder(io.LimitReader(r, limit))
	dec.Strict = true
	dec.Entity = make(map[string]string)
	dec.CharsetReader = charset.NewReaderLabel
	return &TMXReader{dec: dec, langs: opts.Languages.Canonical()}
}

// Read returns the next usable translation unit, or io.EOF.
func (t *TMXReader) Read() (Pair, error) {
	for {
		tok, err := t.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Pair{}, io.EOF
			}
			return Pair{}, fmt.Errorf("%w: %w", ErrMalformedTMX, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "tu" {
			continue
		}
		var unit tmxUnit
		if err := t.dec.DecodeElement(&unit, &start); err != nil {
			return Pair{}, fmt.Errorf("%w: unit %d: %w", ErrMalformedTMX, t.units+1, err)
		}
		t.units++
		pair, ok, err := t.pairFromUnit(unit)
		if err != nil {
			return Pair{}, err
		}
		if !ok {
			t.skipped++
			continue
		}
		return pair, nil
	}
}

func (t *TMXReader) pairFromUnit(unit tmxUnit) (Pair, bool, error) {
	if len(unit.Variants) < 2 {
		return Pair{}, false, nil
	}
	src, tgt := unit.Variants[0], unit.Variants[1]
	found := LanguagePair{Source: src.lang(), Target: tgt.lang()}
	if found != t.langs {
		return Pair{}, false, &LanguageOrderError{Unit: t.units, Found: found, Expected: t.langs}
	}
	if found.Source == found.Target || src.Seg == nil || tgt.Seg == nil {
		return Pair{}, false, nil
	}
	fields := map[string]string{
		found.Source: src.Seg.Text(),
		found.Target: tgt.Seg.Text(),
	}
	pair, err := SentencesFromFields(fields, found, [2]string{found.Source, found.Target})
	if err != nil {
		return Pair{}, false, fmt.Errorf("%w: unit %d: %w", ErrMalformedTMX, t.units, err)
	}
	return pair, true, nil
}

// Units returns how many translation units have been decoded.
func (t *TMXReader) Units() int { return t.units }

// Skipped returns how many units were dropped so far.
func (t *TMXReader) Skipped() int { return t.skipped }
