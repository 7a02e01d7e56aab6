package events

import (
	"sync"
	"time"

	"import.name/lock"
)

// Wake is a one-shot deferred task. At most one task is pending at a time:
// scheduling while one is pending is refused, so duplicate requests never
// produce duplicate wakeups.
type Wake struct {
	clock Clock

	mu      sync.Mutex
	timer   Timer
	at      time.Time
	seq     uint64
	stopped bool
}

func NewWake(clock Clock) *Wake {
	if clock == nil {
		clock = SystemClock
	}
	return &Wake{clock: clock}
}

// Schedule arranges for f to run once at the given instant. Returns false if
// a task is already pending or the Wake was stopped.
func (w *Wake) Schedule(at time.Time, f func()) (ok bool) {
	lock.Guard(&w.mu, func() {
		if w.stopped || w.timer != nil {
			return
		}

		w.seq++
		seq := w.seq
		w.at = at
		w.timer = w.clock.AfterFunc(at.Sub(w.clock.Now()), func() {
			if w.fire(seq) {
				f()
			}
		})
		ok = true
	})
	return
}

// fire clears the task scheduled as seq and reports whether it is still
// current.
func (w *Wake) fire(seq uint64) (current bool) {
	lock.Guard(&w.mu, func() {
		current = w.seq == seq && w.timer != nil
		if current {
			w.timer = nil
		}
	})
	return
}

// Pending reports whether a task is scheduled and when it will run.
func (w *Wake) Pending() (at time.Time, pending bool) {
	lock.Guard(&w.mu, func() {
		at, pending = w.at, w.timer != nil
	})
	return
}

// Cancel drops the pending task, if any.
func (w *Wake) Cancel() {
	lock.Guard(&w.mu, w.cancelLocked)
}

// Stop cancels the pending task and refuses further scheduling.
func (w *Wake) Stop() {
	lock.Guard(&w.mu, func() {
		w.cancelLocked()
		w.stopped = true
	})
}

func (w *Wake) cancelLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
		w.seq++
	}
}
