// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRegularFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.tmx")
	require.NoError(t, os.WriteFile(file, []byte("<tmx/>"), 0o600))

	assert.NoError(t, IsRegularFile(file))
	assert.ErrorIs(t, IsRegularFile(dir), ErrNotRegular)
	assert.ErrorIs(t, IsRegularFile(filepath.Join(dir, "missing.tmx")), fs.ErrNotExist)
}
