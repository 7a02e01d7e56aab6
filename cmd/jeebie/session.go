package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/jeebie-runner/jeebie/backend"
	"github.com/valerio/jeebie-runner/jeebie/core"
	"github.com/valerio/jeebie-runner/jeebie/runner"
)

// session wires one core, one runner and one observer together.
type session struct {
	config      runner.Config
	rom         []byte
	breakpoints []runner.Descriptor
	observer    backend.Observer
}

func (s *session) run(ctx context.Context) error {
	if s.config.Logger == nil {
		s.config.Logger = slog.Default()
	}

	c := core.NewPatternCore()
	if s.rom != nil {
		if err := c.LoadROM(s.rom); err != nil {
			return fmt.Errorf("failed to load ROM: %w", err)
		}
		logHeader(s.config.Logger, s.rom)
	}

	tx, rx := runner.NewChannel()
	defer rx.Close()

	r := runner.New(c, rx, s.config)
	for _, bp := range s.breakpoints {
		if err := tx.Send(runner.SetBreakpoint{Breakpoint: bp}); err != nil {
			return err
		}
	}
	if tracker, ok := s.observer.(backend.BreakpointTracker); ok {
		tracker.Track(s.breakpoints...)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runnerDone := make(chan error, 1)
	go func() {
		runnerDone <- r.Run(ctx)
		cancel()
	}()

	observerErr := s.observer.Run(ctx, r.State(), tx)
	tx.Close()
	runnerErr := <-runnerDone

	if runnerErr != nil && !errors.Is(runnerErr, context.Canceled) {
		return runnerErr
	}
	if observerErr != nil && !errors.Is(observerErr, context.Canceled) {
		return observerErr
	}
	return nil
}

func logHeader(log *slog.Logger, rom []byte) {
	h, err := core.ParseHeader(rom)
	if err != nil {
		log.Warn("Cartridge header unreadable", "error", err, "size", len(rom))
		return
	}
	log.Info("Cartridge loaded",
		"title", h.Title,
		"type", fmt.Sprintf("$%02X", h.CartridgeType),
		"rom_size", h.ROMSize,
		"ram_size", h.RAMSize,
		"version", h.Version)
	if !h.Valid() {
		log.Warn("Cartridge header checksum mismatch", "checksum", fmt.Sprintf("$%02X", h.HeaderChecksum))
	}
}
