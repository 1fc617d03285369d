package pkg

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Debouncer runs a function after a quiet period, keyed by an identity such
// as a form field name. Scheduling a key again before its timer fires
// cancels the earlier task; a cancelled task never runs, even if its timer
// had already fired and was waiting on the lock.
type Debouncer struct {
	clock   clockwork.Clock
	mu      sync.Mutex
	pending map[string]*debounceTask
}

type debounceTask struct {
	timer clockwork.Timer
}

// NewDebouncer creates a Debouncer driven by clock. A nil clock uses the real clock.
func NewDebouncer(clock clockwork.Clock) *Debouncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Debouncer{
		clock:   clock,
		pending: make(map[string]*debounceTask),
	}
}

// Schedule arranges for fn to run after delay unless key is scheduled again
// or cancelled first.
func (d *Debouncer) Schedule(key string, delay time.Duration, fn func()) {
	task := &debounceTask{}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	d.pending[key] = task
	task.timer = d.clock.AfterFunc(delay, func() {
		d.mu.Lock()
		current, ok := d.pending[key]
		if !ok || current != task {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops the pending task for key. It reports whether one was pending.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	task, ok := d.pending[key]
	if !ok {
		return false
	}
	task.timer.Stop()
	delete(d.pending, key)
	return true
}

// Stop cancels every pending task.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, task := range d.pending {
		task.timer.Stop()
		delete(d.pending, key)
	}
}
