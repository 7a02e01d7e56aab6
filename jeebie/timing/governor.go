package timing

import "time"

// Governor caps how many frames may complete inside a rolling window.
// The zero Window means one second.
type Governor struct {
	Cap    int
	Window time.Duration

	start time.Time
	count int
}

// NewGovernor returns a governor that allows frameCap frames per second.
// A cap of zero never limits.
func NewGovernor(frameCap int) *Governor {
	return &Governor{Cap: frameCap, Window: time.Second}
}

func (g *Governor) window() time.Duration {
	if g.Window <= 0 {
		return time.Second
	}
	return g.Window
}

// Frame records a completed frame at now. When the cap for the current
// window is reached it returns limited and the instant the window ends.
func (g *Governor) Frame(now time.Time) (wake time.Time, limited bool) {
	if g.start.IsZero() || now.Sub(g.start) >= g.window() {
		g.start = now
		g.count = 0
	}
	g.count++

	if g.Cap <= 0 || g.count < g.Cap {
		return time.Time{}, false
	}
	return g.start.Add(g.window()), true
}

// Reset starts a fresh window at now.
func (g *Governor) Reset(now time.Time) {
	g.start = now
	g.count = 0
}

// WindowStart is the start of the current window, zero before the first frame.
func (g *Governor) WindowStart() time.Time {
	return g.start
}

// WindowEnd is when the current window elapses.
func (g *Governor) WindowEnd() time.Time {
	return g.start.Add(g.window())
}

// MinInterval is the shortest a forced pause may last: one frame at the
// configured cap, or one hardware frame when uncapped.
func (g *Governor) MinInterval() time.Duration {
	if g.Cap <= 0 {
		return FrameDuration()
	}
	return g.window() / time.Duration(g.Cap)
}
