// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package validate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Accumulates(t *testing.T) {
	v := New()
	v.Range("workers", 0, 1, 64)
	v.LanguageCode("languages.source", "EN")
	v.OneOf("output.format", "xlsx", []string{"text", "tsv", "jsonl"})

	require.False(t, v.IsValid())
	assert.Len(t, v.Errors(), 3)

	err := v.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Contains(t, err.Error(), "workers")
	assert.Contains(t, err.Error(), "languages.source")

	var verr ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "xlsx", verr.Errors()[2].Value)
}

func TestValidator_Valid(t *testing.T) {
	v := New()
	v.Range("workers", 4, 1, 64)
	v.LanguageCode("languages.source", "cy")
	v.Separator("csv.separator", "\t")
	v.NonNegative("maxTmxBytes", 0)
	v.Path("store.path", "data/corpus.db")
	assert.True(t, v.IsValid())
	assert.NoError(t, v.Err())
}

func TestValidator_Separator(t *testing.T) {
	for _, bad := range []string{"", ",,", `"`, "\n"} {
		v := New()
		v.Separator("csv.separator", bad)
		assert.False(t, v.IsValid(), "%q", bad)
	}
	for _, good := range []string{",", ";", "\t", "|"} {
		v := New()
		v.Separator("csv.separator", good)
		assert.True(t, v.IsValid(), "%q", good)
	}
}

func TestValidator_Path(t *testing.T) {
	v := New()
	v.Path("output.dir", "../escape")
	assert.False(t, v.IsValid())

	v = New()
	v.Path("output.dir", "corpus..v2/out")
	assert.True(t, v.IsValid())
}

func TestValidator_Directory(t *testing.T) {
	root := t.TempDir()

	v := New()
	v.Directory("output.dir", filepath.Join(root, "created"), false)
	assert.True(t, v.IsValid())
	assert.DirExists(t, filepath.Join(root, "created"))

	v = New()
	v.Directory("output.dir", filepath.Join(root, "missing"), true)
	assert.False(t, v.IsValid())

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	v = New()
	v.Directory("output.dir", file, true)
	assert.False(t, v.IsValid())
}
