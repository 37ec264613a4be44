// Package debounce coalesces a burst of calls into the last one.
//
// A Debouncer holds at most one pending task. Trigger replaces the pending
// task and re-arms the timer; only the task present when the timer settles
// runs. Tasks never overlap: a settled task and a Flush run one at a time,
// so results leave in the order they were issued.
package debounce

import (
	"sync"
	"time"
)

// Debouncer is safe for concurrent use.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	seq     uint64
	stopped bool

	// held while a task runs
	run sync.Mutex
}

// New returns a Debouncer that waits delay after the last Trigger.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the settle delay.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger schedules fn, dropping any task still pending. It returns false
// once the Debouncer is stopped.
func (d *Debouncer) Trigger(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return false
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
	return true
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq || d.pending == nil {
		// superseded or already flushed
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.run.Lock()
	d.mu.Unlock()

	defer d.run.Unlock()
	fn()
}

// Flush runs the pending task now, on the calling goroutine, and reports
// whether there was one. It also waits for a task already running.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.take()
	d.run.Lock()
	d.mu.Unlock()

	defer d.run.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}

// Cancel drops the pending task without running it.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.take() != nil
}

// Pending reports whether a task is waiting for the timer.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop cancels the pending task and rejects later triggers. A task already
// running is allowed to finish.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.take()
	d.stopped = true
	d.mu.Unlock()
}

// take removes the pending task. d.mu must be held.
func (d *Debouncer) take() func() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	fn := d.pending
	d.pending = nil
	return fn
}
