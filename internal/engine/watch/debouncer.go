// Package watch turns file change events into debounced pipeline re-runs.
package watch

import (
	"slices"
	"sync"
	"time"
)

// Debouncer collects the changed paths of one watch rule and hands them to
// run once no further change has arrived for a full window.
type Debouncer struct {
	window time.Duration
	run    func(paths []string)

	mu    sync.Mutex
	paths []string // sorted, no duplicates
	gen   uint64
	timer *time.Timer
}

// NewDebouncer returns a debouncer calling run window after the last Add.
// A zero window fires on the next scheduler tick.
func NewDebouncer(window time.Duration, run func(paths []string)) *Debouncer {
	return &Debouncer{window: window, run: run}
}

// Add records path and restarts the window.
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i, found := slices.BinarySearch(d.paths, path); !found {
		d.paths = slices.Insert(d.paths, i, path)
	}
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, func() { d.expire(gen) })
}

// expire delivers the batch unless a later Add, Flush or Stop superseded gen.
func (d *Debouncer) expire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	paths := d.take()
	d.mu.Unlock()

	if len(paths) > 0 && d.run != nil {
		d.run(paths)
	}
}

// Flush runs the callback now with whatever is pending and waits for it.
// A batch already handed to an expired timer is not delivered twice.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	paths := d.take()
	d.mu.Unlock()

	if len(paths) > 0 && d.run != nil {
		d.run(paths)
	}
}

// Stop discards pending paths without running the callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.take()
}

// take empties the batch and invalidates any armed timer. d.mu must be held.
func (d *Debouncer) take() []string {
	paths := d.paths
	d.paths = nil
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	return paths
}
