package runner

import (
	"sync"

	"import.name/lock"

	"github.com/valerio/jeebie-runner/jeebie/debug"
	"github.com/valerio/jeebie-runner/jeebie/display"
)

// State is what a runner shares with its observer. Status, frame and
// snapshot stream each have their own lock, so reading one never waits on
// another.
type State struct {
	statusMu sync.Mutex
	status   Status

	frame SharedFrame

	snapMu     sync.Mutex
	snapshots  chan debug.Snapshot
	snapClosed bool

	repaint chan struct{}
}

func newState(snapshotBuffer int) *State {
	return &State{
		status:    Fresh,
		frame:     SharedFrame{buf: make([]byte, display.FrameSize)},
		snapshots: make(chan debug.Snapshot, snapshotBuffer),
		repaint:   make(chan struct{}, 1),
	}
}

// Status returns the last status published by the runner.
func (s *State) Status() (st Status) {
	lock.Guard(&s.statusMu, func() {
		st = s.status
	})
	return
}

func (s *State) setStatus(st Status) {
	lock.Guard(&s.statusMu, func() {
		s.status = st
	})
}

func (s *State) Frame() *SharedFrame {
	return &s.frame
}

// Snapshots streams debug snapshots. Snapshots that do not fit in the buffer
// are dropped.
func (s *State) Snapshots() <-chan debug.Snapshot {
	return s.snapshots
}

// CloseSnapshots is called by an observer that stops reading snapshots.
// Later publications are discarded.
func (s *State) CloseSnapshots() {
	lock.Guard(&s.snapMu, func() {
		if !s.snapClosed {
			s.snapClosed = true
			close(s.snapshots)
		}
	})
}

// publish delivers snap without blocking. Returns false if it was dropped
// because the buffer is full.
func (s *State) publish(snap debug.Snapshot) (sent bool) {
	lock.Guard(&s.snapMu, func() {
		if s.snapClosed {
			sent = true
			return
		}
		select {
		case s.snapshots <- snap:
			sent = true
		default:
		}
	})
	return
}

// Repaint receives a value after a new frame was stored.
func (s *State) Repaint() <-chan struct{} {
	return s.repaint
}

func (s *State) requestRepaint() {
	select {
	case s.repaint <- struct{}{}:
	default:
	}
}

// SharedFrame holds the latest complete frame. Pending is set by the runner
// when a frame is stored and cleared by the observer when it is consumed.
type SharedFrame struct {
	mu      sync.Mutex
	buf     []byte
	pending bool
}

// Len is always the size of one RGBA frame.
func (f *SharedFrame) Len() int {
	return len(f.buf)
}

func (f *SharedFrame) Pending() (p bool) {
	lock.Guard(&f.mu, func() {
		p = f.pending
	})
	return
}

// Consume calls fn with the frame if one is pending and clears pending.
// The slice must not be retained after fn returns.
func (f *SharedFrame) Consume(fn func(frame []byte)) (consumed bool) {
	lock.Guard(&f.mu, func() {
		if !f.pending {
			return
		}
		fn(f.buf)
		f.pending = false
		consumed = true
	})
	return
}

// Clear drops the pending frame without reading it.
func (f *SharedFrame) Clear() {
	lock.Guard(&f.mu, func() {
		f.pending = false
	})
}

// store copies a complete frame and marks it pending. A frame of the wrong
// size is rejected and leaves the buffer untouched.
func (f *SharedFrame) store(src []byte) (ok bool) {
	if len(src) != len(f.buf) {
		return false
	}
	lock.Guard(&f.mu, func() {
		copy(f.buf, src)
		f.pending = true
	})
	return true
}
