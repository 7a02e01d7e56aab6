package runner

import (
	"context"
	"errors"
	"sync"

	"import.name/lock"
)

var (
	// ErrEmpty is returned by TryReceive when no command is queued.
	ErrEmpty = errors.New("command channel empty")
	// ErrChannelClosed means the other end of the channel is gone.
	ErrChannelClosed = errors.New("command channel closed")
)

// queue is an unbounded FIFO shared by every handle of one channel.
type queue struct {
	mu      sync.Mutex
	items   []Command
	senders int  // counted producers still open
	closed  bool // receiver closed

	notify chan struct{}
}

func (q *queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Sender is a producer handle. Sends never block.
type Sender struct {
	q       *queue
	counted bool

	mu     sync.Mutex
	closed bool
}

// Receiver is the single consumer handle.
type Receiver struct {
	q *queue
}

// NewChannel creates a command channel with one counted sender.
func NewChannel() (*Sender, *Receiver) {
	q := &queue{
		senders: 1,
		notify:  make(chan struct{}, 1),
	}
	return &Sender{q: q, counted: true}, &Receiver{q: q}
}

// Send enqueues cmd. It fails only when the receiver is gone or this handle
// was closed.
func (s *Sender) Send(cmd Command) error {
	var handleClosed bool
	lock.Guard(&s.mu, func() {
		handleClosed = s.closed
	})
	if handleClosed {
		return ErrChannelClosed
	}

	var err error
	lock.Guard(&s.q.mu, func() {
		if s.q.closed {
			err = ErrChannelClosed
			return
		}
		s.q.items = append(s.q.items, cmd)
	})
	if err != nil {
		return err
	}

	s.q.signal()
	return nil
}

// Clone returns another counted producer for the same channel.
func (s *Sender) Clone() *Sender {
	lock.Guard(&s.q.mu, func() {
		s.q.senders++
	})
	return &Sender{q: s.q, counted: true}
}

// Close releases this handle. When the last counted sender is closed the
// receiver sees ErrChannelClosed once the queue drains.
func (s *Sender) Close() {
	var first bool
	lock.Guard(&s.mu, func() {
		first = !s.closed
		s.closed = true
	})
	if !first || !s.counted {
		return
	}

	lock.Guard(&s.q.mu, func() {
		s.q.senders--
	})
	s.q.signal()
}

// loopback returns an uncounted sender. It can enqueue commands but does not
// keep the channel alive.
func (r *Receiver) loopback() *Sender {
	return &Sender{q: r.q}
}

// TryReceive returns the next command without blocking.
func (r *Receiver) TryReceive() (cmd Command, err error) {
	lock.Guard(&r.q.mu, func() {
		switch {
		case len(r.q.items) > 0:
			cmd = r.q.items[0]
			r.q.items[0] = nil
			r.q.items = r.q.items[1:]
		case r.q.senders == 0 || r.q.closed:
			err = ErrChannelClosed
		default:
			err = ErrEmpty
		}
	})
	return
}

// Receive blocks until a command arrives, every sender is gone or ctx is done.
func (r *Receiver) Receive(ctx context.Context) (Command, error) {
	for {
		cmd, err := r.TryReceive()
		if !errors.Is(err, ErrEmpty) {
			return cmd, err
		}

		select {
		case <-r.q.notify:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Len returns the number of queued commands.
func (r *Receiver) Len() (n int) {
	lock.Guard(&r.q.mu, func() {
		n = len(r.q.items)
	})
	return
}

// Close ends the session. Queued commands are discarded and further sends
// fail.
func (r *Receiver) Close() {
	lock.Guard(&r.q.mu, func() {
		r.q.closed = true
		r.q.items = nil
	})
	r.q.signal()
}
