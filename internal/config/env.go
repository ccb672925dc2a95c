// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/techiaith/techiaith-utils/internal/log"
)

// Environment keys. Values set here win over the config file.
const (
	EnvLogLevel     = "TECHIAITH_LOG_LEVEL"
	EnvSourceLang   = "TECHIAITH_SOURCE_LANG"
	EnvTargetLang   = "TECHIAITH_TARGET_LANG"
	EnvSeparator    = "TECHIAITH_SEPARATOR"
	EnvWorkers      = "TECHIAITH_WORKERS"
	EnvMaxTMXBytes  = "TECHIAITH_MAX_TMX_BYTES"
	EnvOutputDir    = "TECHIAITH_OUTPUT_DIR"
	EnvOutputFormat = "TECHIAITH_OUTPUT_FORMAT"
	EnvStorePath    = "TECHIAITH_STORE_PATH"
	EnvWatchDir     = "TECHIAITH_WATCH_DIR"
	EnvWatchDelay   = "TECHIAITH_WATCH_DEBOUNCE"
	EnvWatchExist   = "TECHIAITH_WATCH_EXISTING"
	EnvMetricsFile  = "TECHIAITH_METRICS_FILE"
)

// parseEnv looks key up and converts it with parse. Empty or unparsable
// values fall back to defaultValue; every decision is logged at debug level
// (warn for parse failures).
func parseEnv[T any](logger zerolog.Logger, key string, defaultValue T, parse func(string) (T, error)) T {
	v, ok := os.LookupEnv(key)
	if !ok {
		logger.Debug().
			Str("key", key).
			Interface("default", defaultValue).
			Str("source", "default").
			Msg("using default value")
		return defaultValue
	}
	if v == "" {
		logger.Debug().
			Str("key", key).
			Interface("default", defaultValue).
			Str("source", "default").
			Msg("using default value (environment variable is empty)")
		return defaultValue
	}
	parsed, err := parse(v)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", v).
			Interface("default", defaultValue).
			Msg("invalid value in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Interface("value", parsed).
		Str("source", "environment").
		Msg("using environment variable")
	return parsed
}

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	return parseEnv(log.WithComponent("config"), key, defaultValue, func(s string) (string, error) { return s, nil })
}

// ParseInt reads an integer from environment variable or returns default value.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(log.WithComponent("config"), key, defaultValue, strconv.Atoi)
}

// ParseInt64 reads a 64-bit integer from environment variable or returns default value.
func ParseInt64(key string, defaultValue int64) int64 {
	return parseEnv(log.WithComponent("config"), key, defaultValue, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// ParseDuration reads a duration from environment variable in Go duration format (e.g. "5s").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(log.WithComponent("config"), key, defaultValue, time.ParseDuration)
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(log.WithComponent("config"), key, defaultValue, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, strconv.ErrSyntax
	})
}
