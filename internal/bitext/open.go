// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bitext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Reader yields pairs until it returns io.EOF.
type Reader interface {
	Read() (Pair, error)
	// Skipped counts input records that did not produce a pair.
	Skipped() int
}

// Format identifies an input file format by its extension.
type Format string

const (
	FormatCSV Format = "csv"
	FormatTSV Format = "tsv"
	FormatTMX Format = "tmx"
)

// ReaderFunc constructs a Reader over r.
type ReaderFunc func(r io.Reader, opts Options) Reader

var readers = map[Format]ReaderFunc{
	FormatCSV: func(r io.Reader, opts Options) Reader { return NewCSVReader(r, opts) },
	FormatTSV: func(r io.Reader, opts Options) Reader { return NewTSVReader(r, opts) },
	FormatTMX: func(r io.Reader, opts Options) Reader { return NewTMXReader(r, opts) },
}

// Formats lists the supported formats in sorted order.
func Formats() []Format {
	out := make([]Format, 0, len(readers))
	for f := range readers {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func joinFormats(fs []Format) string {
	names := make([]string, len(fs))
	for i, f := range fs {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// FormatFromPath returns the format implied by the file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	f := Format(ext)
	if _, ok := readers[f]; !ok {
		return "", fmt.Errorf("%w: no reader implemented for %q files (supported: %s)",
			ErrUnsupportedFormat, ext, joinFormats(Formats()))
	}
	return f, nil
}

// Supported reports whether path has a readable extension.
func Supported(path string) bool {
	_, err := FormatFromPath(path)
	return err == nil
}

// File is an open bitext file. Every pair it returns has had the configured
// replacements applied and its whitespace trimmed.
type File struct {
	Path      string
	Format    Format
	Languages LanguagePair

	reader       Reader
	closer       io.Closer
	replacements []Replacement
	read         int
}

// Open opens path with the reader matching its extension. When
// opts.Languages is zero the pair is inferred from the file name.
func Open(path string, opts Options) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if opts.Languages.IsZero() {
		langs, ok := PairFromPath(path)
		if !ok {
			return nil, fmt.Errorf("%w: pass one explicitly or name the file like en-cy_%s",
				ErrNoLanguagePair, filepath.Base(path))
		}
		opts.Languages = langs
	}
	if opts.Languages.Source == "" || opts.Languages.Target == "" {
		return nil, fmt.Errorf("%w: incomplete pair %s", ErrNoLanguagePair, opts.Languages)
	}

	// #nosec G304 -- input paths are chosen by the operator
	fh, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	f, err := NewFile(fh, format, opts)
	if err != nil {
		_ = fh.Close()
		return nil, err
	}
	f.Path = path
	f.closer = fh
	return f, nil
}

// NewFile wraps an already open stream.
func NewFile(r io.Reader, format Format, opts Options) (*File, error) {
	newReader, ok := readers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if opts.Languages.Source == "" || opts.Languages.Target == "" {
		return nil, ErrNoLanguagePair
	}
	return &File{
		Format:       format,
		Languages:    opts.Languages,
		reader:       newReader(r, opts),
		closer:       io.NopCloser(r),
		replacements: opts.replacements(),
	}, nil
}

// Read returns the next processed pair, or io.EOF.
func (f *File) Read() (Pair, error) {
	p, err := f.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Pair{}, io.EOF
		}
		if f.Path != "" {
			return Pair{}, fmt.Errorf("%s: %w", f.Path, err)
		}
		return Pair{}, err
	}
	f.read++
	return ProcessPair(p, f.replacements), nil
}

// Count returns how many pairs have been read.
func (f *File) Count() int { return f.read }

// Skipped returns how many input records were dropped.
func (f *File) Skipped() int { return f.reader.Skipped() }

// Close releases the underlying file.
func (f *File) Close() error {
	return f.closer.Close()
}

// ReadAll opens path and calls fn for every pair until the file ends, fn
// fails or ctx is done.
func ReadAll(ctx context.Context, path string, opts Options, fn func(Pair) error) error {
	f, err := Open(path, opts)
	if err != nil {
		return err
	}
	defer f.Close()
	return Each(ctx, f, fn)
}

// Each drains f into fn.
func Each(ctx context.Context, f *File, fn func(Pair) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := f.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
}
