// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// bitext converts, imports and inspects parallel corpora.
//
// Usage:
//
//	bitext [-config file] [-metrics-file file] <command> [flags] [args]
//
// Exit codes:
//   - 0: success
//   - 1: the command failed
//   - 2: usage error
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/techiaith/techiaith-utils/internal/config"
	xglog "github.com/techiaith/techiaith-utils/internal/log"
	"github.com/techiaith/techiaith-utils/internal/metrics"
	"github.com/techiaith/techiaith-utils/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env is what every command receives.
type env struct {
	cfg    config.AppConfig
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"convert": {"convert files into an NMT-ready corpus", runConvert},
	"import":  {"add files to the SQLite corpus store", runImport},
	"export":  {"write a language pair from the store", runExport},
	"stats":   {"count pairs in files or in the store", runStats},
	"watch":   {"import inbox files into the store as they arrive", runWatch},
	"verify":  {"check the integrity of the store", runVerify},
}

var commandOrder = []string{"convert", "import", "export", "stats", "watch", "verify"}

// usageError marks errors that should exit with status 2.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "Usage:")
	_, _ = fmt.Fprintln(w, "  bitext [-config file] [-metrics-file file] [-log-level level] <command> [flags] [args]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "Commands:")
	for _, name := range commandOrder {
		_, _ = fmt.Fprintf(w, "  %-9s %s\n", name, commands[name].summary)
	}
	_, _ = fmt.Fprintf(w, "  %-9s %s\n", "version", "print version and exit")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bitext", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr) }

	configPath := fs.String("config", "", "path to config file (YAML)")
	metricsFile := fs.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")
	logLevel := fs.String("log-level", "", "override the configured log level")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	rest := fs.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return 2
	}
	name, cmdArgs := rest[0], rest[1:]
	switch name {
	case "version":
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	case "help":
		printUsage(stdout)
		return 0
	}
	cmd, ok := commands[name]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n\n", name)
		printUsage(stderr)
		return 2
	}

	// Safe defaults until the configuration is loaded.
	xglog.Configure(xglog.Config{
		Level:   "info",
		Output:  stderr,
		Service: "bitext",
		Version: version.Version,
	})
	logger := xglog.WithComponent("cli")

	loader := config.NewLoader(*configPath, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "config.load_failed").
			Str("config_path", *configPath).
			Msg("failed to load configuration")
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = strings.ToLower(*logLevel)
	}
	if *metricsFile != "" {
		cfg.MetricsFile = *metricsFile
	}
	if *logLevel != "" || *metricsFile != "" {
		if err := config.Validate(cfg); err != nil {
			logger.Error().
				Err(err).
				Str(xglog.FieldEvent, "flags.invalid").
				Msg("invalid command-line flags")
			return 2
		}
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  stderr,
		Service: "bitext",
		Version: cfg.Version,
	})

	ctx = xglog.ContextWithJobID(ctx, uuid.NewString())
	logger = xglog.WithComponentFromContext(ctx, "cli")
	logger.Debug().
		Str(xglog.FieldEvent, "command.started").
		Str("command", name).
		Msg("running command")

	err = cmd.run(ctx, &env{cfg: cfg, stdout: stdout, stderr: stderr}, cmdArgs)

	if cfg.MetricsFile != "" {
		if merr := metrics.WriteTextfile(cfg.MetricsFile); merr != nil {
			logger.Error().Err(merr).Str(xglog.FieldPath, cfg.MetricsFile).Msg("failed to write metrics")
			err = errors.Join(err, merr)
		}
	}
	return exitCode(logger, name, err)
}

func exitCode(logger zerolog.Logger, name string, err error) int {
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.As(err, &ue):
		logger.Error().Str("command", name).Msg(ue.msg)
		return 2
	default:
		logger.Error().
			Err(err).
			Str(xglog.FieldEvent, "command.failed").
			Str("command", name).
			Msg("command failed")
		return 1
	}
}
