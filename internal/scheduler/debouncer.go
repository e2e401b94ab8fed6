package scheduler

import (
	"sync"
	"time"
)

// Timer is the handle returned by an AfterFunc implementation.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Option func(*Debouncer)

// WithAfterFunc replaces the timer source, mainly for tests.
func WithAfterFunc(fn AfterFunc) Option {
	return func(d *Debouncer) {
		d.afterFunc = fn
	}
}

// Debouncer coalesces rapid Schedule calls into one delayed task. Every
// Schedule supersedes the previous task and restarts the delay.
type Debouncer struct {
	mu        sync.Mutex
	delay     time.Duration
	timer     Timer
	task      func()
	gen       uint64
	afterFunc AfterFunc
}

func NewDebouncer(delay time.Duration, opts ...Option) *Debouncer {
	d := &Debouncer{
		delay:     delay,
		afterFunc: realAfterFunc,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Schedule cancels any pending task and arms fn to run after the delay.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.gen++
	gen := d.gen
	d.task = fn

	d.timer = d.afterFunc(d.delay, func() {
		d.mu.Lock()
		if gen != d.gen {
			// superseded after the timer already fired
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.task = nil
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops the pending task, if any, and reports whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++

	if d.timer == nil {
		return false
	}

	d.timer.Stop()
	d.timer = nil
	d.task = nil

	return true
}

// Flush runs the pending task now, on the caller's goroutine, instead of
// waiting for the delay. It reports whether a task was pending.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if d.timer == nil {
		d.mu.Unlock()
		return false
	}

	d.gen++
	d.timer.Stop()
	d.timer = nil
	fn := d.task
	d.task = nil
	d.mu.Unlock()

	fn()

	return true
}

func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}

func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
