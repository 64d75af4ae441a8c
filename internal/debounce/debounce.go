// Package debounce collapses bursts of triggers into one delayed action.
package debounce

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer a Debouncer needs.
type Timer interface {
	Stop() bool
}

// Clock schedules functions. SystemClock uses time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Debouncer runs an action once the quiet period has elapsed with no new
// triggers. It owns at most one timer at a time.
type Debouncer struct {
	mu     sync.Mutex
	clock  Clock
	wait   time.Duration
	action func()
	timer  Timer
	gen    uint64 // bumped on every schedule/cancel; stale fires compare against it

	running int // timer-started actions not yet returned
	idle    *sync.Cond
}

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(d *Debouncer) {
		if c != nil {
			d.clock = c
		}
	}
}

// New creates a debouncer that runs action after wait of quiet.
func New(wait time.Duration, action func(), opts ...Option) *Debouncer {
	d := &Debouncer{
		clock:  SystemClock,
		wait:   wait,
		action: action,
	}
	d.idle = sync.NewCond(&d.mu)
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Trigger cancels any scheduled run and schedules a new one.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Cancel drops a scheduled run. Reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

// Flush runs a scheduled action immediately on the calling goroutine.
// Reports whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	pending := d.stopLocked()
	d.mu.Unlock()

	if pending {
		d.action()
	}
	return pending
}

// Wait blocks until no action started by a timer is running. Together with
// Cancel it covers every run: one is either still scheduled or already
// counted here.
func (d *Debouncer) Wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.running > 0 {
		d.idle.Wait()
	}
}

// Pending reports whether a run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) stopLocked() bool {
	d.gen++
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	return true
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A timer whose Stop lost the race with expiry still calls in here.
	if gen != d.gen || d.timer == nil {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.running++
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running--
		if d.running == 0 {
			d.idle.Broadcast()
		}
		d.mu.Unlock()
	}()
	d.action()
}
