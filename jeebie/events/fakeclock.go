package events

import (
	"sort"
	"sync"
	"time"

	"import.name/lock"
)

// FakeClock is a manually advanced Clock for tests. Timers fire
// synchronously inside Advance, in deadline order.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

type fakeTimer struct {
	clock    *FakeClock
	deadline time.Time
	f        func()
	done     bool
}

func (t *fakeTimer) Stop() (stopped bool) {
	lock.Guard(&t.clock.mu, func() {
		stopped = !t.done
		t.done = true
	})
	return
}

func (c *FakeClock) Now() (now time.Time) {
	lock.Guard(&c.mu, func() {
		now = c.now
	})
	return
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{clock: c, f: f}
	lock.Guard(&c.mu, func() {
		t.deadline = c.now.Add(d)
		c.timers = append(c.timers, t)
	})
	return t
}

// Advance moves time forward by d and runs every timer that became due.
func (c *FakeClock) Advance(d time.Duration) {
	var due []*fakeTimer
	lock.Guard(&c.mu, func() {
		c.now = c.now.Add(d)

		remaining := c.timers[:0]
		for _, t := range c.timers {
			switch {
			case t.done:
			case !t.deadline.After(c.now):
				t.done = true
				due = append(due, t)
			default:
				remaining = append(remaining, t)
			}
		}
		c.timers = remaining
	})

	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *FakeClock) Pending() (n int) {
	lock.Guard(&c.mu, func() {
		for _, t := range c.timers {
			if !t.done {
				n++
			}
		}
	})
	return
}
