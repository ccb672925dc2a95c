// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package watch hands new bitext files dropped into an inbox directory to a
// handler.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/techiaith/techiaith-utils/internal/bitext"
	"github.com/techiaith/techiaith-utils/internal/fsutil"
	xglog "github.com/techiaith/techiaith-utils/internal/log"
)

// DefaultDebounce is how long a file must stay quiet before it is handled.
const DefaultDebounce = 500 * time.Millisecond

// Handler processes one ready file. Errors are logged; the watcher keeps going.
type Handler func(ctx context.Context, path string) error

// Watcher watches a single directory (not recursively).
type Watcher struct {
	dir      string
	debounce time.Duration
	existing bool
	handle   Handler
	logger   zerolog.Logger
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithExisting makes Run handle files already in the directory first.
func WithExisting() Option {
	return func(w *Watcher) { w.existing = true }
}

// New returns a watcher for dir.
func New(dir string, h Handler, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		debounce: DefaultDebounce,
		handle:   h,
		logger:   xglog.WithComponent("watch"),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

func eligible(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return bitext.Supported(path)
}

// Run blocks until ctx is done or the underlying watcher fails to start.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	logger := xglog.WithContext(ctx, w.logger)
	logger.Info().
		Str(xglog.FieldEvent, "watch.started").
		Str(xglog.FieldPath, w.dir).
		Msg("watching inbox")

	deb := newDebouncer(w.debounce)
	defer deb.stop()

	if w.existing {
		existing, err := w.scan()
		if err != nil {
			return err
		}
		for _, p := range existing {
			deb.schedule(ctx, p)
		}
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str(xglog.FieldEvent, "watch.stopped").Msg("inbox watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !eligible(event.Name) {
				continue
			}
			logger.Debug().
				Str(xglog.FieldEvent, "watch.file_changed").
				Str("op", event.Op.String()).
				Str(xglog.FieldPath, event.Name).
				Msg("inbox file changed")
			deb.schedule(ctx, event.Name)

		case dl := <-deb.ready:
			if !deb.accept(dl) {
				logger.Debug().
					Str(xglog.FieldEvent, "watch.stale_timer").
					Str(xglog.FieldPath, dl.path).
					Msg("dropping superseded debounce delivery")
				continue
			}
			path := dl.path
			if err := fsutil.IsRegularFile(path); err != nil {
				logger.Debug().
					Err(err).
					Str(xglog.FieldEvent, "watch.file_gone").
					Str(xglog.FieldPath, path).
					Msg("skipping inbox entry")
				continue
			}
			if err := w.handle(ctx, path); err != nil {
				logger.Error().
					Err(err).
					Str(xglog.FieldEvent, "watch.handle_failed").
					Str(xglog.FieldPath, path).
					Msg("failed to process inbox file")
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "watch.error").
				Msg("inbox watcher error")
		}
	}
}

func (w *Watcher) scan() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", w.dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(w.dir, e.Name())
		if eligible(p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, nil
}
