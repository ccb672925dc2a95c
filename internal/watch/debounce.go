// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package watch

import (
	"context"
	"time"
)

// delivery is a debounce timer firing for path. gen identifies which
// schedule call armed the timer.
type delivery struct {
	path string
	gen  uint64
}

// debouncer coalesces bursts of events per path. It is owned by the Run
// loop and is not safe for concurrent use; only the timer callbacks touch
// the ready channel from other goroutines.
type debouncer struct {
	delay  time.Duration
	ready  chan delivery
	quit   chan struct{}
	timers map[string]*time.Timer
	gens   map[string]uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		ready:  make(chan delivery),
		quit:   make(chan struct{}),
		timers: make(map[string]*time.Timer),
		gens:   make(map[string]uint64),
	}
}

// schedule (re)arms the timer for path. A timer that already fired and is
// waiting to deliver is superseded by the generation bump.
func (d *debouncer) schedule(ctx context.Context, path string) {
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	d.gens[path]++
	dl := delivery{path: path, gen: d.gens[path]}
	d.timers[path] = time.AfterFunc(d.delay, func() {
		select {
		case d.ready <- dl:
		case <-d.quit:
		case <-ctx.Done():
		}
	})
}

// accept reports whether dl is the latest schedule for its path and, if so,
// forgets the timer. Generations are never reset so a late delivery can not
// match a newer schedule.
func (d *debouncer) accept(dl delivery) bool {
	if d.gens[dl.path] != dl.gen {
		return false
	}
	delete(d.timers, dl.path)
	return true
}

// stop cancels pending timers and releases callbacks blocked on delivery.
func (d *debouncer) stop() {
	for _, t := range d.timers {
		t.Stop()
	}
	close(d.quit)
}
