// Package watch reports changes to source files so the compiler can rebuild
// on save. Linux uses inotify; other platforms poll modification times.
package watch

import (
	"sync"
	"time"
)

// DefaultDelay is how long a file must stay quiet before a change is
// reported. Editors often write a file in several steps.
const DefaultDelay = 500 * time.Millisecond

// debouncer coalesces bursts of events per path into one callback.
type debouncer struct {
	mu       sync.Mutex
	delay    time.Duration
	timers   map[string]*time.Timer
	onChange func(string)
	stopped  bool
}

func newDebouncer(delay time.Duration, onChange func(string)) *debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &debouncer{
		delay:    delay,
		timers:   make(map[string]*time.Timer),
		onChange: onChange,
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if timer, exists := d.timers[path]; exists {
		timer.Stop()
	}

	d.timers[path] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, path)
		stopped := d.stopped
		d.mu.Unlock()

		if !stopped {
			d.onChange(path)
		}
	})
}

// stop cancels pending callbacks; later triggers are ignored.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, timer := range d.timers {
		timer.Stop()
		delete(d.timers, path)
	}
}
