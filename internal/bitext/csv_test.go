// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package bitext

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, r Reader) []Pair {
	t.Helper()
	var out []Pair
	for {
		p, err := r.Read()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, p)
	}
}

func TestCSVReader(t *testing.T) {
	input := "en,cy\n" +
		"\"Good morning\",\"Bore da\"\n" +
		"\"Water, please\",\"Dŵr, os gwelwch yn dda\"\n" +
		"\"Line one\nline two\",\"Llinell\"\n"

	got := drain(t, NewCSVReader(strings.NewReader(input), Options{Languages: enCY}))
	want := []Pair{
		{Source: Sentence{Text: "Good morning", Lang: "en"}, Target: Sentence{Text: "Bore da", Lang: "cy"}},
		{Source: Sentence{Text: "Water, please", Lang: "en"}, Target: Sentence{Text: "Dwr, os gwelwch yn dda", Lang: "cy"}},
		{Source: Sentence{Text: "Line oneline two", Lang: "en"}, Target: Sentence{Text: "Llinell", Lang: "cy"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVReader_ColumnOrderFollowsLanguages(t *testing.T) {
	input := "id,cy,en\n1,Diolch,Thank you\n"
	got := drain(t, NewCSVReader(strings.NewReader(input), Options{Languages: enCY}))
	require.Len(t, got, 1)
	assert.Equal(t, "Thank you", got[0].Source.Text)
	assert.Equal(t, "Diolch", got[0].Target.Text)
}

func TestCSVReader_Fieldnames(t *testing.T) {
	input := "\ufeffsaesneg,cymraeg\nYes,Ie\n"
	opts := Options{Languages: enCY, Fieldnames: [2]string{"saesneg", "cymraeg"}}
	got := drain(t, NewCSVReader(strings.NewReader(input), opts))
	require.Len(t, got, 1)
	assert.Equal(t, Pair{
		Source: Sentence{Text: "Yes", Lang: "en"},
		Target: Sentence{Text: "Ie", Lang: "cy"},
	}, got[0])
}

func TestCSVReader_MissingColumn(t *testing.T) {
	r := NewCSVReader(strings.NewReader("en,de\nYes,Ja\n"), Options{Languages: enCY})
	_, err := r.Read()
	assert.ErrorIs(t, err, ErrMissingColumn)

	// The header error is sticky.
	_, err = r.Read()
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestCSVReader_ShortRowsSkipped(t *testing.T) {
	input := "en,cy\nYes,Ie\nonly english\nNo,Na\n"
	r := NewCSVReader(strings.NewReader(input), Options{Languages: enCY})
	got := drain(t, r)
	require.Len(t, got, 2)
	assert.Equal(t, 1, r.Skipped())
}

func TestCSVReader_Empty(t *testing.T) {
	_, err := NewCSVReader(strings.NewReader(""), Options{Languages: enCY}).Read()
	assert.ErrorIs(t, err, io.EOF)
}

func TestTSVReader(t *testing.T) {
	input := "en\tcy\nOne, two\tUn, dau\n"
	got := drain(t, NewTSVReader(strings.NewReader(input), Options{Languages: enCY}))
	require.Len(t, got, 1)
	assert.Equal(t, "One, two", got[0].Source.Text)
	assert.Equal(t, "Un, dau", got[0].Target.Text)
}

func TestOpen_Dispatch(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "en-cy_phrases.CSV")
	tsvPath := filepath.Join(dir, "phrases.en-cy.tsv")
	require.NoError(t, os.WriteFile(csvPath, []byte("en,cy\nHello,Helo\n"), 0o600))
	require.NoError(t, os.WriteFile(tsvPath, []byte("en\tcy\nHello\tHelo\n"), 0o600))

	for _, path := range []string{csvPath, tsvPath} {
		var got []Pair
		err := ReadAll(context.Background(), path, Options{}, func(p Pair) error {
			got = append(got, p)
			return nil
		})
		require.NoError(t, err, path)
		require.Len(t, got, 1, path)
		assert.Equal(t, "Helo", got[0].Target.Text, path)
	}
}

func TestOpen_UnsupportedFormat(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "en-cy.xlsx"), Options{Languages: enCY})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "supported: csv, tmx, tsv")
	assert.Equal(t, []Format{FormatCSV, FormatTMX, FormatTSV}, Formats())
}

func TestNewFile(t *testing.T) {
	f, err := NewFile(strings.NewReader("cy\ten\nIe\tYes\n"), FormatTSV, Options{Languages: enCY})
	require.NoError(t, err)
	defer f.Close()

	p, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, "Yes", p.Source.Text)
	assert.Equal(t, "Ie", p.Target.Text)
	_, err = f.Read()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, f.Count())

	_, err = NewFile(strings.NewReader(""), Format("xlsx"), Options{Languages: enCY})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = NewFile(strings.NewReader(""), FormatCSV, Options{})
	assert.ErrorIs(t, err, ErrNoLanguagePair)
}

func TestOpen_ReplacementsApplied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en-cy.csv")
	require.NoError(t, os.WriteFile(path, []byte("en,cy\nfoo bar,foo bar\n"), 0o600))

	opts := Options{Replacements: []Replacement{{From: "foo", To: "baz"}}}
	f, err := Open(path, opts)
	require.NoError(t, err)
	defer f.Close()

	p, err := f.Read()
	require.NoError(t, err)
	assert.Equal(t, "baz bar", p.Source.Text)
	assert.Equal(t, 1, f.Count())
	assert.Equal(t, enCY, f.Languages)
}

func TestReadAll_StopsOnCallbackError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en-cy.csv")
	require.NoError(t, os.WriteFile(path, []byte("en,cy\na,b\nc,d\n"), 0o600))

	stop := errors.New("stop")
	calls := 0
	err := ReadAll(context.Background(), path, Options{}, func(Pair) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestReadAll_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "en-cy.csv")
	require.NoError(t, os.WriteFile(path, []byte("en,cy\na,b\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ReadAll(ctx, path, Options{}, func(Pair) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
