package main

import (
	"github.com/valerio/jeebie-runner/jeebie/runner"
	"github.com/valerio/jeebie-runner/jeebie/timing"
)

// Config is the file and --set configuration. Keys are the lowercased
// field paths, e.g. runner.cap or headless.interval.
type Config struct {
	Runner struct {
		Cap    int  // frames per second, 0 for no cap
		Paused bool // start Stopped
		Faults int  // consecutive core faults tolerated
		Buffer int  // snapshot stream capacity
		Memory bool // memory dump in every snapshot
	}

	Headless struct {
		Frames   int
		Interval int // PNG every N frames, 0 disables
		Dir      string
		Dump     bool // write the last memory dump on completion
	}
}

func defaultConfig() *Config {
	c := new(Config)
	c.Runner.Cap = timing.DefaultFrameCap()
	c.Runner.Faults = runner.DefaultMaxFaults
	c.Runner.Buffer = runner.DefaultSnapshotBuffer
	return c
}

func (c *Config) runnerConfig() runner.Config {
	return runner.Config{
		FPSCap:         c.Runner.Cap,
		StartPaused:    c.Runner.Paused,
		MaxFaults:      c.Runner.Faults,
		SnapshotBuffer: c.Runner.Buffer,
		SnapshotMemory: c.Runner.Memory || c.Headless.Dump,
	}
}
