// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package pipeline runs bitext files through a sink, several files at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/techiaith/techiaith-utils/internal/bitext"
	"github.com/techiaith/techiaith-utils/internal/corpus"
	xglog "github.com/techiaith/techiaith-utils/internal/log"
	"github.com/techiaith/techiaith-utils/internal/metrics"
)

// ErrOutputCollision is returned when two inputs would write the same output.
var ErrOutputCollision = errors.New("inputs map to the same output")

// Input describes a file about to be processed.
type Input struct {
	Path      string
	Format    bitext.Format
	Languages bitext.LanguagePair
}

// SinkFactory opens the writer for one input. A nil writer means the pairs
// are only counted.
type SinkFactory func(ctx context.Context, in Input) (corpus.Writer, error)

// Options configures a run.
type Options struct {
	Bitext  bitext.Options
	Workers int
	// Sink labels the metrics of written pairs ("text", "store", ...).
	Sink string
}

// Stats summarises one processed file.
type Stats struct {
	Path      string
	Format    bitext.Format
	Languages bitext.LanguagePair
	Read      int
	Written   int
	// Skipped counts input records the reader could not turn into a pair.
	Skipped int
	// Empty counts pairs dropped because both sides were blank.
	Empty int
	// Duplicates counts written pairs a deduplicating sink already held.
	Duplicates int
	Duration   time.Duration
}

// Run processes paths concurrently, at most opts.Workers at a time. The first
// failure cancels the remaining files; stats for every file that finished
// are still returned in input order.
func Run(ctx context.Context, paths []string, opts Options, newSink SinkFactory) ([]Stats, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	logger := xglog.WithComponentFromContext(ctx, "pipeline")
	logger.Info().
		Int(xglog.FieldWorkers, workers).
		Int("files", len(paths)).
		Msg("starting run")

	stats := make([]Stats, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			st, err := ProcessFile(gctx, path, opts, newSink)
			stats[i] = st
			return err
		})
	}
	err := g.Wait()
	metrics.MarkRun(time.Now())
	return stats, err
}

// ProcessFile reads one file into the sink returned by newSink and commits it.
func ProcessFile(ctx context.Context, path string, opts Options, newSink SinkFactory) (st Stats, err error) {
	start := time.Now()
	st = Stats{Path: path}
	logger := xglog.WithComponentFromContext(ctx, "pipeline").With().Str(xglog.FieldPath, path).Logger()

	f, err := bitext.Open(path, opts.Bitext)
	if err != nil {
		if format, ferr := bitext.FormatFromPath(path); ferr == nil {
			metrics.RecordFile(string(format), err, time.Since(start))
		}
		return st, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	st.Format = f.Format
	st.Languages = f.Languages
	format := string(f.Format)
	defer func() {
		st.Duration = time.Since(start)
		metrics.RecordFile(format, err, st.Duration)
	}()

	var sink corpus.Writer
	if newSink != nil {
		sink, err = newSink(ctx, Input{Path: path, Format: f.Format, Languages: f.Languages})
		if err != nil {
			return st, fmt.Errorf("open sink for %s: %w", path, err)
		}
	}
	if sink != nil {
		defer func() {
			if cerr := sink.Close(); cerr != nil {
				logger.Debug().Err(cerr).Msg("close sink")
			}
		}()
	}

	err = bitext.Each(ctx, f, func(p bitext.Pair) error {
		st.Read++
		metrics.RecordPairRead(format)
		if p.Empty() {
			st.Empty++
			return nil
		}
		if sink == nil {
			return nil
		}
		if err := sink.Write(p); err != nil {
			return fmt.Errorf("write pair: %w", err)
		}
		st.Written++
		metrics.RecordPairWritten(opts.Sink)
		return nil
	})
	st.Skipped = f.Skipped()
	metrics.RecordSkipped(format, "incomplete", st.Skipped)
	metrics.RecordSkipped(format, "empty", st.Empty)
	if err != nil {
		logger.Error().Err(err).Int(xglog.FieldRead, st.Read).Msg("file failed")
		return st, err
	}

	if sink != nil {
		if err = sink.Commit(); err != nil {
			return st, fmt.Errorf("commit %s: %w", path, err)
		}
		if d, ok := sink.(interface{ Duplicates() int }); ok {
			st.Duplicates = d.Duplicates()
		}
	}

	logger.Info().
		Str(xglog.FieldFormat, format).
		Str(xglog.FieldLanguages, f.Languages.String()).
		Int(xglog.FieldRead, st.Read).
		Int(xglog.FieldWritten, st.Written).
		Int(xglog.FieldSkipped, st.Skipped+st.Empty).
		Msg("file processed")
	return st, nil
}

// FileSinks writes each input to outDir in format, naming the output after
// the input file without its extension.
func FileSinks(outDir string, format corpus.Format) SinkFactory {
	var mu sync.Mutex
	claimed := make(map[string]string)
	return func(_ context.Context, in Input) (corpus.Writer, error) {
		name := filepath.Base(in.Path)
		base := filepath.Join(outDir, strings.TrimSuffix(name, filepath.Ext(name)))

		mu.Lock()
		if other, ok := claimed[base]; ok {
			mu.Unlock()
			return nil, fmt.Errorf("%w: %s and %s", ErrOutputCollision, other, in.Path)
		}
		claimed[base] = in.Path
		mu.Unlock()

		return corpus.NewWriter(format, base, in.Languages)
	}
}

// StoreSinks imports each input into store, one transaction per file.
func StoreSinks(store *corpus.Store) SinkFactory {
	return func(ctx context.Context, in Input) (corpus.Writer, error) {
		w, err := store.Begin(ctx, in.Path)
		if err != nil {
			return nil, err
		}
		return &countingStoreWriter{StoreWriter: w}, nil
	}
}

type countingStoreWriter struct {
	*corpus.StoreWriter
}

func (w *countingStoreWriter) Commit() error {
	if err := w.StoreWriter.Commit(); err != nil {
		return err
	}
	metrics.RecordDuplicates(w.Duplicates())
	return nil
}
