// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package corpus

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techiaith/techiaith-utils/internal/bitext"
)

var enCY = bitext.LanguagePair{Source: "en", Target: "cy"}

func pair(src, tgt string) bitext.Pair {
	return bitext.Pair{
		Source: bitext.Sentence{Text: src, Lang: "en"},
		Target: bitext.Sentence{Text: tgt, Lang: "cy"},
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	return lines
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "TSV", " jsonl "} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestTextWriter(t *testing.T) {
	base := filepath.Join(t.TempDir(), "health")
	w, err := NewWriter(FormatText, base, enCY)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Write(pair("Good morning", "Bore da")))
	require.NoError(t, w.Write(pair("two\nlines", "dwy\nllinell")))

	// Nothing is visible before Commit.
	_, err = os.Stat(base + ".en")
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, w.Commit())
	assert.Equal(t, []string{"Good morning", "two lines"}, readLines(t, base+".en"))
	assert.Equal(t, []string{"Bore da", "dwy llinell"}, readLines(t, base+".cy"))

	assert.ErrorIs(t, w.Write(pair("late", "hwyr")), ErrCommitted)
}

func TestTextWriter_CloseWithoutCommit(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "discarded")
	w, err := NewTextWriter(base, enCY)
	require.NoError(t, err)
	require.NoError(t, w.Write(pair("a", "b")))
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTextWriter_FailedSourceRenameWithdrawsTarget(t *testing.T) {
	base := filepath.Join(t.TempDir(), "corpus")
	// A non-empty directory where base.en should go makes the source rename fail.
	require.NoError(t, os.MkdirAll(base+".en", 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(base+".en", "keep"), nil, 0o600))

	w, err := NewTextWriter(base, enCY)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	require.NoError(t, w.Write(pair("Yes", "Ie")))

	require.Error(t, w.Commit())
	assert.NoFileExists(t, base+".cy")
	assert.DirExists(t, base+".en")
}

func TestTSVWriter(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")
	w, err := NewWriter(FormatTSV, base, enCY)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Write(pair("tab\there", "Diolch")))
	require.NoError(t, w.Commit())
	assert.Equal(t, []string{"tab here\tDiolch"}, readLines(t, base+".tsv"))
}

func TestJSONLWriter(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")
	w, err := NewWriter(FormatJSONL, base, enCY)
	require.NoError(t, err)
	defer w.Close()

	want := pair("<b>Yes</b>", "Ie")
	require.NoError(t, w.Write(want))
	require.NoError(t, w.Commit())

	lines := readLines(t, base+".jsonl")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"text":"<b>Yes</b>"`)

	var got bitext.Pair
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, want, got)
}

func TestFormatPaths(t *testing.T) {
	assert.Equal(t, []string{"c.en", "c.cy"}, FormatText.Paths("c", enCY))
	assert.Equal(t, []string{"c.tsv"}, FormatTSV.Paths("c", enCY))
	assert.Equal(t, []string{"c.jsonl"}, FormatJSONL.Paths("c", enCY))
}
