package pkg

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

const waitFor = time.Second

// eventually polls cond until it holds or waitFor elapses.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(waitFor)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal(msg)
		}
		time.Sleep(time.Millisecond)
	}
}

func pending(d *Debouncer, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

func TestDebouncer_RunsAfterQuietPeriod(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(clock)

	var calls atomic.Int32
	d.Schedule("numId", 500*time.Millisecond, func() { calls.Add(1) })

	clock.Advance(499 * time.Millisecond)
	if !pending(d, "numId") {
		t.Fatal("task should still be pending before the quiet period ends")
	}
	if got := calls.Load(); got != 0 {
		t.Fatalf("calls = %d; want 0", got)
	}

	clock.Advance(time.Millisecond)
	eventually(t, func() bool { return calls.Load() == 1 }, "task did not run after the quiet period")
	if pending(d, "numId") {
		t.Error("a task that ran should no longer be pending")
	}
}

func TestDebouncer_RescheduleRestartsWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(clock)

	var got atomic.Value
	d.Schedule("numId", 500*time.Millisecond, func() { got.Store("first") })
	clock.Advance(400 * time.Millisecond)
	d.Schedule("numId", 500*time.Millisecond, func() { got.Store("second") })

	clock.Advance(400 * time.Millisecond)
	if v := got.Load(); v != nil {
		t.Fatalf("got %v; the window must restart on every schedule", v)
	}

	clock.Advance(100 * time.Millisecond)
	eventually(t, func() bool { return got.Load() == "second" }, "rescheduled task did not run")

	clock.Advance(time.Second)
	if v := got.Load(); v != "second" {
		t.Errorf("got %v; the replaced task must never run", v)
	}
}

func TestDebouncer_KeysAreIndependent(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(clock)

	var a, b atomic.Int32
	d.Schedule("filters", 300*time.Millisecond, func() { a.Add(1) })
	d.Schedule("numId", 500*time.Millisecond, func() { b.Add(1) })

	clock.Advance(300 * time.Millisecond)
	eventually(t, func() bool { return a.Load() == 1 }, "filters task did not run")
	if got := b.Load(); got != 0 {
		t.Fatalf("numId calls = %d; want 0", got)
	}

	clock.Advance(200 * time.Millisecond)
	eventually(t, func() bool { return b.Load() == 1 }, "numId task did not run")
}

func TestDebouncer_CancelAndStop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	d := NewDebouncer(clock)

	var calls atomic.Int32
	d.Schedule("a", time.Second, func() { calls.Add(1) })
	d.Schedule("b", time.Second, func() { calls.Add(1) })

	if !d.Cancel("a") {
		t.Error("Cancel should report a pending task")
	}
	if d.Cancel("a") {
		t.Error("Cancel should report nothing pending the second time")
	}

	d.Stop()
	if pending(d, "b") {
		t.Error("Stop should drop every pending task")
	}

	clock.Advance(2 * time.Second)
	time.Sleep(10 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("calls = %d; want 0", got)
	}
}

func TestNewDebouncer_NilClockUsesRealClock(t *testing.T) {
	d := NewDebouncer(nil)

	done := make(chan struct{})
	d.Schedule("k", time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("task did not run with the real clock")
	}
}
