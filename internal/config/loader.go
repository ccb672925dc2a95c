// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/techiaith/techiaith-utils/internal/bitext"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{} // Mechanical tracking of consumed keys
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

func (l *Loader) envString(key, defaultVal string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, defaultVal)
}

func (l *Loader) envInt(key string, defaultVal int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, defaultVal)
}

func (l *Loader) envInt64(key string, defaultVal int64) int64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt64(key, defaultVal)
}

// Load loads configuration with precedence: ENV > File > Defaults, then validates it.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)

	if !cfg.Languages.IsZero() {
		cfg.Languages = cfg.Languages.Canonical()
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (l *Loader) mergeEnv(cfg *AppConfig) {
	cfg.LogLevel = l.envString(EnvLogLevel, cfg.LogLevel)
	cfg.Languages.Source = l.envString(EnvSourceLang, cfg.Languages.Source)
	cfg.Languages.Target = l.envString(EnvTargetLang, cfg.Languages.Target)
	cfg.CSV.Separator = l.envString(EnvSeparator, cfg.CSV.Separator)
	cfg.Workers = l.envInt(EnvWorkers, cfg.Workers)
	cfg.MaxTMXBytes = l.envInt64(EnvMaxTMXBytes, cfg.MaxTMXBytes)
	cfg.Output.Dir = l.envString(EnvOutputDir, cfg.Output.Dir)
	cfg.Output.Format = l.envString(EnvOutputFormat, cfg.Output.Format)
	cfg.Store.Path = l.envString(EnvStorePath, cfg.Store.Path)
	cfg.Watch.Dir = l.envString(EnvWatchDir, cfg.Watch.Dir)
	l.ConsumedEnvKeys[EnvWatchDelay] = struct{}{}
	cfg.Watch.Debounce = ParseDuration(EnvWatchDelay, cfg.Watch.Debounce)
	l.ConsumedEnvKeys[EnvWatchExist] = struct{}{}
	cfg.Watch.Existing = ParseBool(EnvWatchExist, cfg.Watch.Existing)
	cfg.MetricsFile = l.envString(EnvMetricsFile, cfg.MetricsFile)
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields cause an error to prevent silent misconfiguration.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("%w: %s (only YAML supported)", ErrUnsupportedConfigFormat, ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		if strings.Contains(err.Error(), "field") && strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("%w: %w", ErrUnknownConfigField, err)
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	// Strict: Ensure no multiple documents or trailing content
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

// LanguagesOverride applies a "src-tgt" flag value on top of cfg.
func LanguagesOverride(cfg *AppConfig, flagValue string) error {
	if strings.TrimSpace(flagValue) == "" {
		return nil
	}
	langs, err := bitext.ParseLanguagePair(flagValue)
	if err != nil {
		return err
	}
	cfg.Languages = langs
	return Validate(*cfg)
}
