// Package watcher provides debouncing and config-file watching.
package watcher

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultDebounceDuration is the default debounce window.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer coalesces rapid events into a single callback invocation.
// When Trigger is called multiple times within the debounce duration,
// only the last callback is executed after the duration elapses.
// A Debouncer owns at most one live timer.
type Debouncer struct {
	clock    clockwork.Clock
	duration time.Duration
	timer    clockwork.Timer
	mu       sync.Mutex
}

// NewDebouncer creates a new Debouncer with the specified duration.
// If duration is 0, DefaultDebounceDuration is used.
func NewDebouncer(duration time.Duration) *Debouncer {
	return NewDebouncerWithClock(duration, clockwork.NewRealClock())
}

// NewDebouncerWithClock creates a Debouncer driven by the given clock.
func NewDebouncerWithClock(duration time.Duration, clock clockwork.Clock) *Debouncer {
	if duration == 0 {
		duration = DefaultDebounceDuration
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{
		clock:    clock,
		duration: duration,
	}
}

// Trigger schedules the callback to be called after the debounce duration.
// If Trigger is called again before the duration elapses, the previous
// scheduled callback is canceled and a new one is scheduled.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clock.AfterFunc(d.duration, callback)
}

// Cancel cancels any pending callback.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Duration returns the debounce duration.
func (d *Debouncer) Duration() time.Duration {
	return d.duration
}

// Reset changes the debounce duration and cancels any pending callback.
func (d *Debouncer) Reset(duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.duration = duration
}
