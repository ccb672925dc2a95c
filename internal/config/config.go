// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config provides configuration management for the bitext tools.
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/techiaith/techiaith-utils/internal/bitext"
	"github.com/techiaith/techiaith-utils/internal/corpus"
)

// AppConfig is the fully resolved configuration.
type AppConfig struct {
	LogLevel     string               `yaml:"logLevel"`
	Languages    bitext.LanguagePair  `yaml:"languages"`
	CSV          CSVConfig            `yaml:"csv"`
	Replacements []bitext.Replacement `yaml:"replacements"`
	MaxTMXBytes  int64                `yaml:"maxTmxBytes"`
	Workers      int                  `yaml:"workers"`
	Output       OutputConfig         `yaml:"output"`
	Store        StoreConfig          `yaml:"store"`
	Watch        WatchConfig          `yaml:"watch"`
	MetricsFile  string               `yaml:"metricsFile"`

	// Version is set from the binary, never from file or env.
	Version string `yaml:"-"`
}

// CSVConfig controls CSV/TSV reading.
type CSVConfig struct {
	// Separator overrides the delimiter implied by the file extension.
	// "tab" and "\t" both mean a tab.
	Separator string `yaml:"separator"`
	// Fieldnames names the source and target columns.
	Fieldnames []string `yaml:"fieldnames"`
}

// OutputConfig controls convert.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Format string `yaml:"format"`
}

// StoreConfig locates the SQLite corpus.
type StoreConfig struct {
	Path        string        `yaml:"path"`
	BusyTimeout time.Duration `yaml:"busyTimeout"`
}

// WatchConfig controls the inbox watcher.
type WatchConfig struct {
	Dir      string        `yaml:"dir"`
	Debounce time.Duration `yaml:"debounce"`
	Existing bool          `yaml:"existing"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() AppConfig {
	return AppConfig{
		LogLevel:    "info",
		MaxTMXBytes: bitext.DefaultMaxTMXBytes,
		Workers:     4,
		Output: OutputConfig{
			Dir:    ".",
			Format: string(corpus.FormatText),
		},
		Store: StoreConfig{
			Path:        "corpus.db",
			BusyTimeout: corpus.DefaultStoreConfig().BusyTimeout,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
	}
}

// SeparatorRune resolves CSV.Separator; zero means "use the extension default".
func (c AppConfig) SeparatorRune() rune {
	switch sep := c.CSV.Separator; strings.ToLower(sep) {
	case "":
		return 0
	case "tab", `\t`:
		return '\t'
	default:
		r, _ := utf8.DecodeRuneInString(sep)
		return r
	}
}

// BitextOptions converts the configuration into reader options.
func (c AppConfig) BitextOptions() bitext.Options {
	opts := bitext.Options{
		Languages:    c.Languages,
		Separator:    c.SeparatorRune(),
		Replacements: c.Replacements,
		MaxTMXBytes:  c.MaxTMXBytes,
	}
	if len(c.CSV.Fieldnames) == 2 {
		opts.Fieldnames = [2]string{c.CSV.Fieldnames[0], c.CSV.Fieldnames[1]}
	}
	return opts
}

// StoreOptions converts the store section into corpus settings.
func (c AppConfig) StoreOptions() corpus.StoreConfig {
	sc := corpus.DefaultStoreConfig()
	if c.Store.BusyTimeout > 0 {
		sc.BusyTimeout = c.Store.BusyTimeout
	}
	return sc
}

// OutputFormat parses Output.Format.
func (c AppConfig) OutputFormat() (corpus.Format, error) {
	f, err := corpus.ParseFormat(c.Output.Format)
	if err != nil {
		return "", fmt.Errorf("output.format: %w", err)
	}
	return f, nil
}
