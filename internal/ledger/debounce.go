package ledger

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid successive inputs to the last value: fn fires
// once per quiescence window, with whatever value arrived last. Stop cancels
// any pending fire and drops later inputs, so a torn-down screen cannot
// receive a late callback.
type Debouncer struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func(string)
	timer   *time.Timer
	last    string
	stopped bool
}

func NewDebouncer(window time.Duration, fn func(string)) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

func (d *Debouncer) Input(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.last = value
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	value := d.last
	d.timer = nil
	d.mu.Unlock()

	d.fn(value)
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
