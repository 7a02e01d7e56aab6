package runner

import (
	"log/slog"

	"github.com/valerio/jeebie-runner/jeebie/events"
	"github.com/valerio/jeebie-runner/jeebie/timing"
)

const (
	DefaultMaxFaults      = 8
	DefaultSnapshotBuffer = 64
)

// Config tunes a runner. The zero value of a field selects its default,
// except FPSCap where zero disables the frame cap; use DefaultConfig for the
// hardware rate.
type Config struct {
	// FPSCap is the number of frames allowed per second.
	FPSCap int
	// StartPaused starts the session Stopped instead of Running.
	StartPaused bool
	// MaxFaults is how many consecutive core faults end the session.
	MaxFaults int
	// SnapshotBuffer is the capacity of the snapshot stream.
	SnapshotBuffer int
	// SnapshotMemory includes a full memory dump in every snapshot.
	SnapshotMemory bool

	Logger *slog.Logger
	Clock  events.Clock
}

func DefaultConfig() Config {
	return Config{
		FPSCap:         timing.DefaultFrameCap(),
		MaxFaults:      DefaultMaxFaults,
		SnapshotBuffer: DefaultSnapshotBuffer,
	}
}

func (c Config) withDefaults() Config {
	if c.FPSCap < 0 {
		c.FPSCap = 0
	}
	if c.MaxFaults <= 0 {
		c.MaxFaults = DefaultMaxFaults
	}
	if c.SnapshotBuffer <= 0 {
		c.SnapshotBuffer = DefaultSnapshotBuffer
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Clock == nil {
		c.Clock = events.SystemClock
	}
	return c
}
