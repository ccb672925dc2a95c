// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package corpus writes sentence pairs to NMT-ready outputs: parallel text
// files, TSV, JSON lines and a deduplicating SQLite store.
package corpus

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/techiaith/techiaith-utils/internal/bitext"
)

// Writer accepts pairs and publishes them on Commit. Close discards
// anything not committed.
type Writer interface {
	Write(p bitext.Pair) error
	Commit() error
	Close() error
}

// Format names an output layout.
type Format string

const (
	FormatText  Format = "text"
	FormatTSV   Format = "tsv"
	FormatJSONL Format = "jsonl"
)

// ErrUnknownFormat is returned for output formats other than text, tsv and jsonl.
var ErrUnknownFormat = errors.New("unknown output format")

// ErrCommitted is returned when writing after Commit.
var ErrCommitted = errors.New("writer already committed")

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatTSV, FormatJSONL:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Paths returns the files a writer of format f creates for base.
func (f Format) Paths(base string, langs bitext.LanguagePair) []string {
	switch f {
	case FormatText:
		return []string{base + "." + langs.Source, base + "." + langs.Target}
	case FormatTSV:
		return []string{base + ".tsv"}
	case FormatJSONL:
		return []string{base + ".jsonl"}
	}
	return nil
}

// NewWriter opens a writer of format f for base.
func NewWriter(f Format, base string, langs bitext.LanguagePair) (Writer, error) {
	switch f {
	case FormatText:
		return NewTextWriter(base, langs)
	case FormatTSV:
		return NewTSVWriter(base + ".tsv")
	case FormatJSONL:
		return NewJSONLWriter(base + ".jsonl")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// pending couples a renameio pending file with a buffered writer.
type pending struct {
	path string
	file *renameio.PendingFile
	buf  *bufio.Writer
}

func newPending(path string) (*pending, error) {
	pf, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return nil, fmt.Errorf("create pending file %s: %w", path, err)
	}
	return &pending{path: path, file: pf, buf: bufio.NewWriter(pf)}, nil
}

func (p *pending) flush() error {
	if err := p.buf.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", p.file.Name(), err)
	}
	return nil
}

func (p *pending) commit() error {
	if err := p.flush(); err != nil {
		return err
	}
	// fsync + rename
	if err := p.file.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace %s: %w", p.file.Name(), err)
	}
	return nil
}

func (p *pending) cleanup() error {
	return p.file.Cleanup()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// oneLine keeps a sentence on a single line so parallel files stay aligned.
func oneLine(s string) string {
	return lineBreaks.Replace(s)
}

// TextWriter writes Moses-style parallel files base.<src> and base.<tgt>,
// one sentence per line.
type TextWriter struct {
	src, tgt  *pending
	committed bool
}

// NewTextWriter creates the two pending files for base.
func NewTextWriter(base string, langs bitext.LanguagePair) (*TextWriter, error) {
	paths := FormatText.Paths(base, langs)
	src, err := newPending(paths[0])
	if err != nil {
		return nil, err
	}
	tgt, err := newPending(paths[1])
	if err != nil {
		_ = src.cleanup()
		return nil, err
	}
	return &TextWriter{src: src, tgt: tgt}, nil
}

func (w *TextWriter) Write(p bitext.Pair) error {
	if w.committed {
		return ErrCommitted
	}
	if _, err := w.src.buf.WriteString(oneLine(p.Source.Text) + "\n"); err != nil {
		return err
	}
	_, err := w.tgt.buf.WriteString(oneLine(p.Target.Text) + "\n")
	return err
}

// Commit publishes both files. The target file is renamed first; if the
// source rename then fails the target is removed again, so a half-published
// pair of files is never left behind. A target from an earlier run at the
// same path is lost in that case.
func (w *TextWriter) Commit() error {
	if w.committed {
		return nil
	}
	if err := errors.Join(w.src.flush(), w.tgt.flush()); err != nil {
		return err
	}
	if err := w.tgt.commit(); err != nil {
		return err
	}
	if err := w.src.commit(); err != nil {
		if rerr := os.Remove(w.tgt.path); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			return errors.Join(err, fmt.Errorf("withdraw %s: %w", w.tgt.path, rerr))
		}
		return err
	}
	w.committed = true
	return nil
}

func (w *TextWriter) Close() error {
	return errors.Join(w.src.cleanup(), w.tgt.cleanup())
}

// TSVWriter writes "source<TAB>target" lines.
type TSVWriter struct {
	out       *pending
	committed bool
}

var tsvEscaper = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// NewTSVWriter creates a pending TSV file at path.
func NewTSVWriter(path string) (*TSVWriter, error) {
	out, err := newPending(path)
	if err != nil {
		return nil, err
	}
	return &TSVWriter{out: out}, nil
}

func (w *TSVWriter) Write(p bitext.Pair) error {
	if w.committed {
		return ErrCommitted
	}
	_, err := w.out.buf.WriteString(tsvEscaper.Replace(p.Source.Text) + "\t" + tsvEscaper.Replace(p.Target.Text) + "\n")
	return err
}

func (w *TSVWriter) Commit() error {
	if w.committed {
		return nil
	}
	if err := w.out.commit(); err != nil {
		return err
	}
	w.committed = true
	return nil
}

func (w *TSVWriter) Close() error { return w.out.cleanup() }

// JSONLWriter writes one JSON encoded pair per line.
type JSONLWriter struct {
	out       *pending
	enc       *json.Encoder
	committed bool
}

// NewJSONLWriter creates a pending JSON lines file at path.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	out, err := newPending(path)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(out.buf)
	enc.SetEscapeHTML(false)
	return &JSONLWriter{out: out, enc: enc}, nil
}

func (w *JSONLWriter) Write(p bitext.Pair) error {
	if w.committed {
		return ErrCommitted
	}
	return w.enc.Encode(p)
}

func (w *JSONLWriter) Commit() error {
	if w.committed {
		return nil
	}
	if err := w.out.commit(); err != nil {
		return err
	}
	w.committed = true
	return nil
}

func (w *JSONLWriter) Close() error { return w.out.cleanup() }
