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
)

func receive(t *testing.T, d *debouncer) delivery {
	t.Helper()
	select {
	case dl := <-d.ready:
		return dl
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for debounce delivery")
		return delivery{}
	}
}

func TestDebouncer_RescheduleSupersedesPendingTimer(t *testing.T) {
	d := newDebouncer(time.Hour)
	defer d.stop()

	ctx := context.Background()
	d.schedule(ctx, "b.csv")
	d.schedule(ctx, "b.csv")

	assert.False(t, d.accept(delivery{path: "b.csv", gen: 1}))
	assert.True(t, d.accept(delivery{path: "b.csv", gen: 2}))
	assert.NotContains(t, d.timers, "b.csv")
}

func TestDebouncer_FiredTimerIsStaleAfterNewEvent(t *testing.T) {
	d := newDebouncer(time.Millisecond)
	defer d.stop()

	ctx := context.Background()
	d.schedule(ctx, "b.csv")
	first := receive(t, d)

	// The file changed again after the first timer fired but before its
	// delivery was handled.
	d.schedule(ctx, "b.csv")
	second := receive(t, d)

	assert.False(t, d.accept(first), "fired timer must not run the handler early")
	assert.True(t, d.accept(second))
	assert.False(t, d.accept(first), "generations are never reused")
}

func TestDebouncer_StopReleasesBlockedTimers(t *testing.T) {
	d := newDebouncer(time.Millisecond)
	d.schedule(context.Background(), "a.csv")
	d.schedule(context.Background(), "b.csv")
	time.Sleep(20 * time.Millisecond)
	d.stop()
	// goleak in TestMain fails the package if a callback is still blocked.
}

func TestWatcher_SlowHandlerDoesNotDoubleHandleRewrittenFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "en-cy_a.csv")
	b := filepath.Join(dir, "en-cy_b.csv")

	var mu sync.Mutex
	calls := make(map[string]int)
	rewritten := make(chan struct{})
	var once sync.Once
	handle := func(_ context.Context, path string) error {
		mu.Lock()
		calls[path]++
		mu.Unlock()
		if path == a {
			// b's timer fires while this handler runs; rewrite b meanwhile.
			time.Sleep(60 * time.Millisecond)
			assert.NoError(t, os.WriteFile(b, []byte("en,cy\nYes,Ie\nNo,Na\n"), 0o600))
			once.Do(func() { close(rewritten) })
			time.Sleep(60 * time.Millisecond)
		}
		return nil
	}

	stop := startWatcher(t, New(dir, handle, WithDebounce(20*time.Millisecond)))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(a, []byte("en,cy\n"), 0o600))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, os.WriteFile(b, []byte("en,cy\n"), 0o600))

	select {
	case <-rewritten:
	case <-time.After(5 * time.Second):
		t.Fatal("handler for a never ran")
	}
	time.Sleep(400 * time.Millisecond)
	stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls[a])
	assert.GreaterOrEqual(t, calls[b], 1)
	assert.LessOrEqual(t, calls[b], 2, "b handled by a superseded timer")
}
