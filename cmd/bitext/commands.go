// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/techiaith/techiaith-utils/internal/bitext"
	"github.com/techiaith/techiaith-utils/internal/config"
	"github.com/techiaith/techiaith-utils/internal/corpus"
	xglog "github.com/techiaith/techiaith-utils/internal/log"
	"github.com/techiaith/techiaith-utils/internal/metrics"
	"github.com/techiaith/techiaith-utils/internal/pipeline"
	"github.com/techiaith/techiaith-utils/internal/validate"
	"github.com/techiaith/techiaith-utils/internal/watch"
)

// errCorrupt is returned by verify when the store fails its integrity check.
var errCorrupt = errors.New("corpus store failed integrity check")

func newFlagSet(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("bitext "+name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{msg: err.Error()}
	}
	return nil
}

func applyLangs(cfg *config.AppConfig, value string) error {
	if err := config.LanguagesOverride(cfg, value); err != nil {
		return usagef("-langs: %v", err)
	}
	return nil
}

func parseWorkers(n int) error {
	if n < 1 {
		return usagef("-workers must be at least 1, got %d", n)
	}
	return nil
}

func printStats(w io.Writer, stats []pipeline.Stats) {
	for _, st := range stats {
		if st.Path == "" {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\tread=%d written=%d skipped=%d empty=%d duplicates=%d\n",
			st.Path, st.Format, st.Languages, st.Read, st.Written, st.Skipped, st.Empty, st.Duplicates)
	}
}

func runConvert(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "convert")
	langs := fs.String("langs", "", "language pair src-tgt (default: config, then file name)")
	format := fs.String("format", e.cfg.Output.Format, "output format: text, tsv or jsonl")
	out := fs.String("out", e.cfg.Output.Dir, "output directory")
	workers := fs.Int("workers", e.cfg.Workers, "files processed concurrently")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usagef("convert: at least one input file is required")
	}
	if err := applyLangs(&e.cfg, *langs); err != nil {
		return err
	}
	if err := parseWorkers(*workers); err != nil {
		return err
	}
	f, err := corpus.ParseFormat(*format)
	if err != nil {
		return usagef("-format: %v", err)
	}
	if err := os.MkdirAll(*out, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	logger := xglog.WithComponentFromContext(ctx, "cli")
	logger.Info().
		Str(xglog.FieldOutput, *out).
		Str(xglog.FieldFormat, string(f)).
		Msg("converting files")
	opts := pipeline.Options{Bitext: e.cfg.BitextOptions(), Workers: *workers, Sink: string(f)}
	stats, err := pipeline.Run(ctx, fs.Args(), opts, pipeline.FileSinks(*out, f))
	printStats(e.stdout, stats)
	return err
}

func openStore(ctx context.Context, e *env, path string) (*corpus.Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, usagef("-store is required")
	}
	logger := xglog.WithComponentFromContext(ctx, "cli")
	logger.Debug().
		Str(xglog.FieldStorePath, path).
		Msg("opening corpus store")
	return corpus.OpenStore(ctx, path, e.cfg.StoreOptions())
}

func runImport(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "import")
	langs := fs.String("langs", "", "language pair src-tgt (default: config, then file name)")
	storePath := fs.String("store", e.cfg.Store.Path, "SQLite corpus store")
	workers := fs.Int("workers", e.cfg.Workers, "files processed concurrently")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return usagef("import: at least one input file is required")
	}
	if err := applyLangs(&e.cfg, *langs); err != nil {
		return err
	}
	if err := parseWorkers(*workers); err != nil {
		return err
	}

	store, err := openStore(ctx, e, *storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	opts := pipeline.Options{Bitext: e.cfg.BitextOptions(), Workers: *workers, Sink: "store"}
	stats, err := pipeline.Run(ctx, fs.Args(), opts, pipeline.StoreSinks(store))
	printStats(e.stdout, stats)
	if err != nil {
		return err
	}
	total, err := store.Count(ctx, e.cfg.Languages)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(e.stdout, "store %s holds %d pairs\n", store.Path(), total)
	return nil
}

func runExport(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "export")
	langs := fs.String("langs", "", "language pair src-tgt (required when the store holds several)")
	storePath := fs.String("store", e.cfg.Store.Path, "SQLite corpus store")
	format := fs.String("format", e.cfg.Output.Format, "output format: text, tsv or jsonl")
	out := fs.String("o", "", "output path prefix")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *out == "" {
		return usagef("export: -o is required")
	}
	if err := applyLangs(&e.cfg, *langs); err != nil {
		return err
	}
	f, err := corpus.ParseFormat(*format)
	if err != nil {
		return usagef("-format: %v", err)
	}

	store, err := openStore(ctx, e, *storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	lp := e.cfg.Languages
	if lp.IsZero() {
		pairs, err := store.LanguagePairs(ctx)
		if err != nil {
			return err
		}
		switch len(pairs) {
		case 0:
			return fmt.Errorf("store %s holds no pairs", store.Path())
		case 1:
			lp = pairs[0]
		default:
			return usagef("export: store holds %d language pairs, choose one with -langs", len(pairs))
		}
	}

	w, err := corpus.NewWriter(f, *out, lp)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	n, err := store.Export(ctx, lp, w)
	if err != nil {
		return fmt.Errorf("export %s: %w", lp, err)
	}
	metrics.RecordExported(string(f), n)
	logger := xglog.WithComponentFromContext(ctx, "cli")
	logger.Info().
		Str(xglog.FieldStorePath, store.Path()).
		Str(xglog.FieldOutput, *out).
		Str(xglog.FieldLanguages, lp.String()).
		Int(xglog.FieldWritten, n).
		Msg("exported pairs")
	_, _ = fmt.Fprintf(e.stdout, "exported %d %s pairs to %s\n", n, lp, strings.Join(f.Paths(*out, lp), ", "))
	return nil
}

func runStats(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "stats")
	langs := fs.String("langs", "", "language pair src-tgt (default: config, then file name)")
	storePath := fs.String("store", "", "report the SQLite corpus store instead of files")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := applyLangs(&e.cfg, *langs); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		if *storePath == "" {
			return usagef("stats: give input files or -store")
		}
		return storeStats(ctx, e, *storePath)
	}

	opts := pipeline.Options{Bitext: e.cfg.BitextOptions(), Workers: e.cfg.Workers, Sink: "none"}
	stats, err := pipeline.Run(ctx, fs.Args(), opts, nil)
	printStats(e.stdout, stats)
	return err
}

func storeStats(ctx context.Context, e *env, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("store %s: %w", path, err)
	}
	store, err := openStore(ctx, e, path)
	if err != nil {
		return err
	}
	defer store.Close()

	lps, err := store.LanguagePairs(ctx)
	if err != nil {
		return err
	}
	if !e.cfg.Languages.IsZero() {
		lps = []bitext.LanguagePair{e.cfg.Languages}
	}
	for _, lp := range lps {
		n, err := store.Count(ctx, lp)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(e.stdout, "%s\t%d\n", lp, n)
	}
	return nil
}

func runWatch(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "watch")
	langs := fs.String("langs", "", "language pair src-tgt (default: config, then file name)")
	storePath := fs.String("store", e.cfg.Store.Path, "SQLite corpus store")
	debounce := fs.Duration("debounce", e.cfg.Watch.Debounce, "quiet period before a file is imported")
	existing := fs.Bool("existing", e.cfg.Watch.Existing, "import files already in the inbox first")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := applyLangs(&e.cfg, *langs); err != nil {
		return err
	}

	dir := e.cfg.Watch.Dir
	switch fs.NArg() {
	case 0:
	case 1:
		dir = fs.Arg(0)
	default:
		return usagef("watch: expected one inbox directory, got %d", fs.NArg())
	}
	if dir == "" {
		return usagef("watch: inbox directory is required")
	}
	v := validate.New()
	v.Directory("inbox", dir, true)
	if err := v.Err(); err != nil {
		return usagef("watch: %v", err)
	}
	if *debounce < 0 {
		return usagef("-debounce must not be negative")
	}

	store, err := openStore(ctx, e, *storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := xglog.WithComponentFromContext(ctx, "cli")
	opts := pipeline.Options{Bitext: e.cfg.BitextOptions(), Workers: 1, Sink: "store"}
	sinks := pipeline.StoreSinks(store)
	handle := func(ctx context.Context, path string) error {
		st, err := pipeline.ProcessFile(ctx, path, opts, sinks)
		if err != nil {
			return err
		}
		printStats(e.stdout, []pipeline.Stats{st})
		if e.cfg.MetricsFile != "" {
			if err := metrics.WriteTextfile(e.cfg.MetricsFile); err != nil {
				logger.Warn().Err(err).Str(xglog.FieldPath, e.cfg.MetricsFile).Msg("failed to write metrics")
			}
		}
		return nil
	}

	wopts := []watch.Option{watch.WithDebounce(*debounce)}
	if *existing {
		wopts = append(wopts, watch.WithExisting())
	}
	return watch.New(dir, handle, wopts...).Run(ctx)
}

func runVerify(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "verify")
	storePath := fs.String("store", e.cfg.Store.Path, "SQLite corpus store")
	full := fs.Bool("full", false, "run PRAGMA integrity_check instead of quick_check")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if _, err := os.Stat(*storePath); err != nil {
		return fmt.Errorf("store %s: %w", *storePath, err)
	}

	store, err := openStore(ctx, e, *storePath)
	if err != nil {
		return err
	}
	defer store.Close()

	issues, err := store.Verify(ctx, *full)
	if err != nil {
		return err
	}
	if issues != nil {
		for _, issue := range issues {
			_, _ = fmt.Fprintf(e.stdout, "  - %s\n", issue)
		}
		return fmt.Errorf("%w: %d issues", errCorrupt, len(issues))
	}
	_, _ = fmt.Fprintf(e.stdout, "%s: ok\n", store.Path())
	return nil
}
