package timing

import (
	"math"
	"time"
)

// Constants for Game Boy timing
const (
	CyclesPerFrame    = 70224
	CyclesPerScanline = 456
	CPUFrequency      = 4194304
)

// TargetFPS calculates the exact Game Boy frame rate.
func TargetFPS() float64 {
	return float64(CPUFrequency) / float64(CyclesPerFrame)
}

// DefaultFrameCap is the per-second frame cap matching the hardware rate.
func DefaultFrameCap() int {
	return int(math.Ceil(TargetFPS()))
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / TargetFPS())
}
