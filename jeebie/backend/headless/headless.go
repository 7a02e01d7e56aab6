package headless

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valerio/jeebie-runner/jeebie/debug"
	"github.com/valerio/jeebie-runner/jeebie/display"
	"github.com/valerio/jeebie-runner/jeebie/runner"
)

// progressInterval is how often, in frames, progress is logged.
const progressInterval = 10

// haltInterval is how often the runner status is checked for a halt that
// would stop frames from arriving.
const haltInterval = 50 * time.Millisecond

// Observer drives a runner without a display, for automated testing and
// batch processing. It stops the session after a fixed number of frames, or
// earlier when the runner halts in Stopped or Break.
type Observer struct {
	maxFrames      int
	snapshotConfig SnapshotConfig

	frameCount int
	frame      []byte
	last       *debug.Snapshot
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled    bool
	Interval   int    // Save snapshot every N frames
	Directory  string // Directory to save snapshots
	ROMName    string // ROM name for snapshot filenames
	DumpMemory bool   // Write the last memory dump when the run completes
}

// New creates a headless observer. A maxFrames of zero runs until the
// runner halts or the context is cancelled.
func New(maxFrames int, snapshotConfig SnapshotConfig) *Observer {
	return &Observer{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
		frame:          make([]byte, display.FrameSize),
	}
}

// NewLogger returns the debug level text logger used in headless mode.
func NewLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func (h *Observer) Frames() int {
	return h.frameCount
}

func (h *Observer) Run(ctx context.Context, state *runner.State, tx *runner.Sender) error {
	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	ticker := time.NewTicker(haltInterval)
	defer ticker.Stop()

	snapshots := state.Snapshots()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			status := state.Status()
			if status != runner.Stopped && status != runner.Break {
				continue
			}
			// a frame may have landed just before the halt
			if state.Frame().Consume(func(buf []byte) { copy(h.frame, buf) }) {
				h.update()
			}
			slog.Info("Runner halted before the frame target",
				"status", status, "frames", h.frameCount, "total", h.maxFrames)
			h.complete(snapshots, tx)
			return nil

		case snap, ok := <-snapshots:
			if !ok {
				snapshots = nil
				continue
			}
			h.last = &snap
			slog.Debug("Snapshot", "pc", fmt.Sprintf("$%04X", snap.Registers.PC), "next", snap.Instruction.String(), "retired", snap.Retired)

		case <-state.Repaint():
			if !state.Frame().Consume(func(buf []byte) { copy(h.frame, buf) }) {
				continue
			}
			if h.update() {
				h.complete(snapshots, tx)
				return nil
			}
		}
	}
}

// complete collects the last snapshots, writes the final outputs and ends
// the session.
func (h *Observer) complete(snapshots <-chan debug.Snapshot, tx *runner.Sender) {
	h.drain(snapshots)
	h.finish()
	if err := tx.Send(runner.Exit{}); err != nil {
		slog.Debug("Exit not delivered", "error", err)
	}
}

func (h *Observer) drain(snapshots <-chan debug.Snapshot) {
	for {
		select {
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			h.last = &snap
		default:
			return
		}
	}
}

// update accounts for a new frame and reports whether the run is complete.
func (h *Observer) update() bool {
	h.frameCount++

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot()
	}

	if h.frameCount%progressInterval == 0 {
		slog.Info("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	return h.maxFrames > 0 && h.frameCount >= h.maxFrames
}

func (h *Observer) finish() {
	// Save final snapshot if enabled and we haven't just saved one
	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
		h.saveSnapshot()
	}

	if h.snapshotConfig.DumpMemory {
		h.dumpMemory()
	}

	if h.snapshotConfig.Enabled {
		slog.Info("Headless execution completed", "frames", h.frameCount, "png_snapshots_saved_to", h.snapshotConfig.Directory)
	} else {
		slog.Info("Headless execution completed", "frames", h.frameCount)
	}
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, romPath string, dumpMemory bool) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:    interval > 0,
		Interval:   interval,
		DumpMemory: dumpMemory,
	}

	if !config.Enabled && !dumpMemory {
		return config, nil
	}

	// Set up snapshot directory
	if directory == "" {
		tempDir, err := os.MkdirTemp("", "jeebie-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
		config.Directory = directory
	}

	// Extract ROM name for snapshot filenames
	config.ROMName = filepath.Base(romPath)
	config.ROMName = strings.TrimSuffix(config.ROMName, filepath.Ext(config.ROMName))

	return config, nil
}

// saveSnapshot saves a PNG snapshot for the current frame
func (h *Observer) saveSnapshot() {
	pngBaseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.ROMName, h.frameCount)

	if _, err := debug.SaveFramePNGToDir(h.frame, pngBaseName, h.snapshotConfig.Directory); err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
	}
}

func (h *Observer) dumpMemory() {
	if h.last == nil || h.last.Memory == nil {
		slog.Warn("No memory dump available", "hint", "enable snapshot memory")
		return
	}

	name := filepath.Join(h.snapshotConfig.Directory, h.snapshotConfig.ROMName+"_memory.bin")
	if err := os.WriteFile(name, h.last.Memory[:], 0644); err != nil {
		slog.Error("Failed to write memory dump", "path", name, "error", err)
		return
	}
	slog.Info("Memory dump written", "path", name, "retired", h.last.Retired)
}
