package terminal

import (
	"fmt"
	"time"
)

// fpsHistory is how many one-second samples the average covers.
const fpsHistory = 10

// perf counts frames shown per second of wall clock time. Min and max cover
// the whole session; the average covers the last fpsHistory seconds.
type perf struct {
	since   time.Time
	frames  int
	history []int
	min     int
	max     int
}

// frame records one frame consumed from the runner.
func (p *perf) frame() {
	p.frames++
}

// tick closes the current one-second sample once it has elapsed.
func (p *perf) tick(now time.Time) {
	if p.since.IsZero() {
		p.since = now
		p.frames = 0
		return
	}
	if now.Sub(p.since) < time.Second {
		return
	}

	fps := p.frames
	if len(p.history) == 0 {
		p.min, p.max = fps, fps
	}
	p.min = min(p.min, fps)
	p.max = max(p.max, fps)

	p.history = append(p.history, fps)
	if len(p.history) > fpsHistory {
		p.history = p.history[1:]
	}

	p.since = now
	p.frames = 0
}

func (p *perf) average() int {
	sum := 0
	for _, fps := range p.history {
		sum += fps
	}
	return sum / len(p.history)
}

func (p *perf) String() string {
	if len(p.history) == 0 {
		return "FPS N/A"
	}
	return fmt.Sprintf("FPS %d avg %d min %d max %d",
		p.history[len(p.history)-1], p.average(), p.min, p.max)
}
