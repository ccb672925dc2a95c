// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestConfigure_ServiceAndVersion(t *testing.T) {
	t.Cleanup(func() { Configure(Config{}) })

	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "bitext-test", Version: "v1.2.3"})

	base := Base()
	base.Info().Msg("hello")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "bitext-test", entry[FieldService])
	assert.Equal(t, "v1.2.3", entry[FieldVersion])
	assert.Equal(t, "hello", entry["message"])
}

func TestConfigure_LevelFilters(t *testing.T) {
	t.Cleanup(func() { Configure(Config{}) })

	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})

	base := Base()
	base.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	base.Warn().Msg("kept")
	assert.NotZero(t, buf.Len())
}

func TestWithComponentFromContext(t *testing.T) {
	t.Cleanup(func() { Configure(Config{}) })

	var buf bytes.Buffer
	Configure(Config{Output: &buf})

	ctx := ContextWithJobID(context.Background(), "job-42")
	l := WithComponentFromContext(ctx, "pipeline")
	l.Info().Msg("run")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "pipeline", entry[FieldComponent])
	assert.Equal(t, "job-42", entry[FieldJobID])
}

func TestJobIDFromContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{name: "nil context", ctx: nil, want: ""},
		{name: "missing", ctx: context.Background(), want: ""},
		{name: "present", ctx: ContextWithJobID(nil, "abc"), want: "abc"}, //nolint:staticcheck
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JobIDFromContext(tt.ctx))
		})
	}
}
