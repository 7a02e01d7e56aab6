package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"import.name/confi"

	"github.com/valerio/jeebie-runner/jeebie/backend"
	"github.com/valerio/jeebie-runner/jeebie/backend/headless"
	"github.com/valerio/jeebie-runner/jeebie/backend/terminal"
	"github.com/valerio/jeebie-runner/jeebie/backend/terminal/render"
	"github.com/valerio/jeebie-runner/jeebie/core"
	"github.com/valerio/jeebie-runner/jeebie/runner"
)

// logBufferSize is how many log lines the terminal panel keeps.
const logBufferSize = 500

func main() {
	if err := newApp(runEmulator).Run(os.Args); err != nil {
		// the terminal logger is gone with the screen
		fmt.Fprintf(os.Stderr, "Error running emulator: %v\n", err)
		os.Exit(1)
	}
}

func newApp(action func(*cli.Context, *Config) error) *cli.App {
	c := defaultConfig()

	app := cli.NewApp()
	app.Name = "Jeebie"
	app.Description = "A Game Boy debugger front end"
	app.Usage = "jeebie [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.GenericFlag{
			Name:  "config",
			Usage: "Read TOML configuration file",
			Value: confi.FileReader(c),
		},
		cli.GenericFlag{
			Name:  "set",
			Usage: "Set a configuration key (path.to.key=value)",
			Value: confi.Assigner(c),
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a terminal interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "fps",
			Usage: "Frames per second cap (0 = unlimited)",
			Value: c.Runner.Cap,
		},
		cli.BoolFlag{
			Name:  "paused",
			Usage: "Start the session paused",
		},
		cli.StringSliceFlag{
			Name:  "break",
			Usage: "Set a breakpoint before starting (pc 0150, write $ff40, reg a, flag z)",
		},
		cli.IntFlag{
			Name:  "max-faults",
			Usage: "Consecutive core faults before the session ends",
			Value: c.Runner.Faults,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "dump-memory",
			Usage: "Write the final 64 KiB memory dump in headless mode",
		},
	}
	app.Action = func(ctx *cli.Context) error {
		applyFlags(ctx, c)
		return action(ctx, c)
	}
	return app
}

// applyFlags lets explicit command line flags override the configuration.
func applyFlags(ctx *cli.Context, c *Config) {
	if ctx.IsSet("fps") {
		c.Runner.Cap = ctx.Int("fps")
	}
	if ctx.IsSet("paused") {
		c.Runner.Paused = ctx.Bool("paused")
	}
	if ctx.IsSet("max-faults") {
		c.Runner.Faults = ctx.Int("max-faults")
	}
	if ctx.IsSet("frames") {
		c.Headless.Frames = ctx.Int("frames")
	}
	if ctx.IsSet("snapshot-interval") {
		c.Headless.Interval = ctx.Int("snapshot-interval")
	}
	if ctx.IsSet("snapshot-dir") {
		c.Headless.Dir = ctx.String("snapshot-dir")
	}
	if ctx.IsSet("dump-memory") {
		c.Headless.Dump = ctx.Bool("dump-memory")
	}
}

func parseBreakpoints(texts []string) ([]runner.Descriptor, error) {
	var out []runner.Descriptor
	for _, text := range texts {
		d, err := backend.ParseBreakpoint(text)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func runEmulator(ctx *cli.Context, c *Config) error {
	romPath := ctx.String("rom")
	if romPath == "" && ctx.NArg() > 0 {
		romPath = ctx.Args().Get(0)
	}

	breakpoints, err := parseBreakpoints(ctx.StringSlice("break"))
	if err != nil {
		return err
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	headlessMode := ctx.Bool("headless")
	if headlessMode && c.Headless.Frames <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}
	if headlessMode && c.Runner.Paused {
		return errors.New("headless mode cannot start paused, nothing would resume it")
	}

	var logs *render.LogBuffer
	if headlessMode {
		slog.SetDefault(headless.NewLogger(os.Stderr))
	} else {
		var logger *slog.Logger
		logs, logger = terminal.NewLogger(logBufferSize, nil)
		slog.SetDefault(logger)
	}

	rom, err := readROM(romPath)
	if err != nil {
		return err
	}

	var observer backend.Observer
	if headlessMode {
		snapshotConfig, err := headless.CreateSnapshotConfig(c.Headless.Interval, c.Headless.Dir, romPath, c.Headless.Dump)
		if err != nil {
			return err
		}
		observer = headless.New(c.Headless.Frames, snapshotConfig)
	} else {
		screen, err := terminal.NewScreen()
		if err != nil {
			return err
		}
		t := terminal.New(screen, logs, nil, nil)
		t.SnapshotDir = c.Headless.Dir
		observer = t
	}

	s := session{
		config:      c.runnerConfig(),
		rom:         rom,
		breakpoints: breakpoints,
		observer:    observer,
	}
	if err := s.run(sigCtx); err != nil {
		return fmt.Errorf("session failed: %w", err)
	}
	return nil
}

// readROM returns nil for an empty path, which runs an empty cartridge.
func readROM(path string) ([]byte, error) {
	if path == "" {
		slog.Info("No ROM given, running an empty cartridge")
		return nil, nil
	}
	rom, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}
	if len(rom) == 0 {
		return nil, fmt.Errorf("failed to read ROM %s: %w", path, core.ErrEmptyROM)
	}
	return rom, nil
}
