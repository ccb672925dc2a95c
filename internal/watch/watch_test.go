// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu    sync.Mutex
	paths []string
	seen  chan string
}

func newRecorder() *recorder {
	return &recorder{seen: make(chan string, 16)}
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.seen <- path
	return nil
}

func (r *recorder) wait(t *testing.T) string {
	t.Helper()
	select {
	case p := <-r.seen:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler")
		return ""
	}
}

func startWatcher(t *testing.T, w *Watcher) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func TestWatcher_HandlesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en-cy_a.tmx"), []byte("<tmx/>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".en-cy_hidden.csv"), []byte("ignored"), 0o600))

	rec := newRecorder()
	stop := startWatcher(t, New(dir, rec.handle, WithExisting(), WithDebounce(10*time.Millisecond)))
	defer stop()

	assert.Equal(t, filepath.Join(dir, "en-cy_a.tmx"), rec.wait(t))
}

func TestWatcher_HandlesNewFileOnce(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	stop := startWatcher(t, New(dir, rec.handle, WithDebounce(100*time.Millisecond)))

	// Give the watcher a moment to register the directory.
	time.Sleep(50 * time.Millisecond)
	path := filepath.Join(dir, "en-cy_new.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	for _, line := range []string{"en,cy\n", "Yes,Ie\n", "No,Na\n"} {
		_, err := f.WriteString(line)
		require.NoError(t, err)
	}
	require.NoError(t, f.Close())

	assert.Equal(t, path, rec.wait(t))
	time.Sleep(200 * time.Millisecond)
	stop()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{path}, rec.paths)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), func(context.Context, string) error { return nil })
	assert.Error(t, w.Run(context.Background()))
}
