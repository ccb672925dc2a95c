// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/techiaith/techiaith-utils/internal/corpus"
	"github.com/techiaith/techiaith-utils/internal/validate"
)

// Validate checks a resolved configuration.
func Validate(cfg AppConfig) error {
	v := validate.New()

	if _, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err != nil || cfg.LogLevel == "" {
		v.AddError("logLevel", "must be one of trace, debug, info, warn, error", cfg.LogLevel)
	}

	// Languages may be left empty and inferred per file.
	if !cfg.Languages.IsZero() {
		v.LanguageCode("languages.source", cfg.Languages.Source)
		v.LanguageCode("languages.target", cfg.Languages.Target)
		if cfg.Languages.Source == cfg.Languages.Target {
			v.AddError("languages", "source and target must differ", cfg.Languages.String())
		}
	}

	if cfg.CSV.Separator != "" && cfg.SeparatorRune() != '\t' {
		v.Separator("csv.separator", cfg.CSV.Separator)
	}
	if n := len(cfg.CSV.Fieldnames); n != 0 && n != 2 {
		v.AddError("csv.fieldnames", "must name exactly two columns (source, target)", cfg.CSV.Fieldnames)
	}
	for i, r := range cfg.Replacements {
		if r.From == "" {
			v.AddError("replacements", "entry has an empty 'from'", i)
		}
	}

	v.NonNegative("maxTmxBytes", cfg.MaxTMXBytes)
	v.Range("workers", cfg.Workers, 1, 256)

	v.OneOf("output.format", strings.ToLower(cfg.Output.Format),
		[]string{string(corpus.FormatText), string(corpus.FormatTSV), string(corpus.FormatJSONL)})
	v.Path("output.dir", cfg.Output.Dir)
	v.Path("store.path", cfg.Store.Path)
	v.Path("metricsFile", cfg.MetricsFile)

	if cfg.Watch.Debounce < 0 {
		v.AddError("watch.debounce", "must not be negative", cfg.Watch.Debounce.String())
	}

	return v.Err()
}
