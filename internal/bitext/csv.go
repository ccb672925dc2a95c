// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bitext

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// CSVReader reads a delimited file whose first row names the columns.
// Rows too short to hold both language columns are skipped.
type CSVReader struct {
	r       *csv.Reader
	opts    Options
	keys    [2]string
	index   [2]int
	started bool
	err     error
	skipped int
}

// NewCSVReader returns a reader for comma separated input unless
// opts.Separator says otherwise.
func NewCSVReader(r io.Reader, opts Options) *CSVReader {
	if opts.Separator == 0 {
		opts.Separator = ','
	}
	cr := csv.NewReader(r)
	cr.Comma = opts.Separator
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return &CSVReader{r: cr, opts: opts, keys: opts.keys()}
}

// NewTSVReader returns a reader for tab separated input.
func NewTSVReader(r io.Reader, opts Options) *CSVReader {
	if opts.Separator == 0 {
		opts.Separator = '\t'
	}
	return NewCSVReader(r, opts)
}

func (c *CSVReader) readHeader() error {
	header, err := c.r.Read()
	if err != nil {
		return err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i, key := range c.keys {
		c.index[i] = -1
		for col, name := range header {
			if name == key {
				c.index[i] = col
				break
			}
		}
		if c.index[i] < 0 {
			return fmt.Errorf("%w: %q", ErrMissingColumn, key)
		}
	}
	return nil
}

// Read returns the next row as a normalised pair, or io.EOF.
func (c *CSVReader) Read() (Pair, error) {
	if !c.started {
		c.started = true
		c.err = c.readHeader()
	}
	if c.err != nil {
		return Pair{}, c.err
	}
	for {
		record, err := c.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Pair{}, io.EOF
			}
			return Pair{}, fmt.Errorf("read row: %w", err)
		}
		fields := make(map[string]string, 2)
		for i, key := range c.keys {
			if c.index[i] < len(record) {
				fields[key] = record[c.index[i]]
			}
		}
		pair, err := SentencesFromFields(fields, c.opts.Languages, c.keys)
		if errors.Is(err, ErrMissingColumn) {
			c.skipped++
			continue
		}
		if err != nil {
			return Pair{}, err
		}
		return pair, nil
	}
}

// Skipped returns how many rows were dropped so far.
func (c *CSVReader) Skipped() int { return c.skipped }
