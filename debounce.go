package worklog

import (
	"time"

	"golang.org/x/time/rate"
)

// Interactive pacing defaults
const (
	// DefaultSearchDebounce batches keystrokes of a search box
	DefaultSearchDebounce = 300 * time.Millisecond
	// DefaultScrollThrottle limits window recomputation to about one frame
	DefaultScrollThrottle = 16 * time.Millisecond
)

// Debouncer delays a function until calls have stopped arriving for the
// configured delay. Only the last scheduled function runs.
//
// Trigger and Stop must be called from the goroutine that owns the
// Debouncer. The scheduled function runs on a timer goroutine, so it
// should only hand work back to its owner, e.g. by sending on a channel.
type Debouncer struct {
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer returns a debouncer with the given delay.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger schedules fn, replacing anything scheduled earlier.
func (d *Debouncer) Trigger(fn func()) {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels the pending function. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}

// FrameThrottle runs a function at most once per interval. Do reports
// whether the call ran, so the owner can flush the latest state later.
// A non-positive interval disables throttling.
type FrameThrottle struct {
	sometimes rate.Sometimes
	disabled  bool
}

// NewFrameThrottle returns a throttle with the given interval.
func NewFrameThrottle(interval time.Duration) *FrameThrottle {
	if interval <= 0 {
		return &FrameThrottle{disabled: true}
	}
	return &FrameThrottle{sometimes: rate.Sometimes{Interval: interval}}
}

// Do runs fn unless it already ran within the interval. It reports
// whether fn ran.
func (t *FrameThrottle) Do(fn func()) bool {
	if t.disabled {
		fn()
		return true
	}
	ran := false
	t.sometimes.Do(func() {
		ran = true
		fn()
	})
	return ran
}
