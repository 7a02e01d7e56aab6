package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/valerio/jeebie-runner/jeebie/core"
	"github.com/valerio/jeebie-runner/jeebie/debug"
	"github.com/valerio/jeebie-runner/jeebie/events"
	"github.com/valerio/jeebie-runner/jeebie/timing"
)

// ErrCoreWedged is returned by Run when the core keeps faulting.
var ErrCoreWedged = errors.New("core wedged")

// Core is the emulation core driven by a runner. Step retires one
// instruction and reports whether a frame was completed.
type Core interface {
	debug.Source

	Step() (core.StepResult, bool, error)
	LoadROM(rom []byte) error
	PressButton(b core.Button)
	ReleaseButton(b core.Button)
	SetBreakpoint(t core.Trigger)
	UnsetBreakpoint(t core.Trigger)
	// Frame returns the last completed frame in RGBA.
	Frame() []byte
}

// Runner owns a core and drives it from a command channel. It is the only
// writer of its State.
type Runner struct {
	core  Core
	rx    *Receiver
	self  *Sender // uncounted, used by the governor wake and Replace
	cfg   Config
	log   *slog.Logger
	state *State

	governor *timing.Governor
	wake     *events.Wake

	breakpoints map[core.Trigger]Descriptor

	status    Status
	remaining uint
	faults    int
	retired   uint64
	frames    uint64
}

// New creates a runner for c reading commands from rx. Only one runner may
// consume a given receiver.
func New(c Core, rx *Receiver, cfg Config) *Runner {
	cfg = cfg.withDefaults()
	session := uuid.New()

	return &Runner{
		core:        c,
		rx:          rx,
		self:        rx.loopback(),
		cfg:         cfg,
		log:         cfg.Logger.With("session", session.String()),
		state:       newState(cfg.SnapshotBuffer),
		governor:    timing.NewGovernor(cfg.FPSCap),
		wake:        events.NewWake(cfg.Clock),
		breakpoints: make(map[core.Trigger]Descriptor),
		status:      Fresh,
	}
}

// State returns what the runner shares with observers.
func (r *Runner) State() *State {
	return r.state
}

// Replace asks the runner to publish LoadingRom and return, so the owner can
// start a fresh runner with a new cartridge. It is ordered after every
// command already sent.
func (r *Runner) Replace() error {
	return r.self.Send(loadROM{})
}

// Run drives the core until Exit, Replace, the loss of every sender or the
// cancellation of ctx. Only a wedged core or a cancelled context produce an
// error.
func (r *Runner) Run(ctx context.Context) error {
	defer r.wake.Stop()

	r.start()

	done := ctx.Done()
	for {
		var (
			cmd Command
			err error
		)
		if r.status.idle() {
			cmd, err = r.rx.Receive(ctx)
		} else {
			select {
			case <-done:
				err = ctx.Err()
			default:
				cmd, err = r.rx.TryReceive()
			}
		}

		switch {
		case err == nil, errors.Is(err, ErrEmpty):
		case errors.Is(err, ErrChannelClosed):
			r.log.Info("Command channel closed, stopping runner")
			return nil
		default:
			r.log.Info("Runner cancelled", "error", err)
			return err
		}

		exit, err := r.iterate(cmd)
		if err != nil {
			r.log.Error("Runner stopped", "error", err)
			return err
		}
		if exit {
			return nil
		}
	}
}

// start publishes the initial status.
func (r *Runner) start() {
	r.status = Running
	if r.cfg.StartPaused {
		r.status = Stopped
	}
	r.governor.Reset(r.cfg.Clock.Now())
	r.state.setStatus(r.status)

	r.log.Info("Runner started", "status", r.status, "fps_cap", r.cfg.FPSCap, "max_faults", r.cfg.MaxFaults)
}

// iterate applies cmd, which may be nil, steps the core when active and
// publishes the resulting status.
func (r *Runner) iterate(cmd Command) (exit bool, err error) {
	if cmd != nil {
		if exit = r.apply(cmd); exit {
			return true, nil
		}
	}

	if r.status.active() {
		if err := r.advance(); err != nil {
			return false, err
		}
	}

	r.state.setStatus(r.status)
	return false, nil
}

func (r *Runner) apply(cmd Command) (exit bool) {
	switch cmd := cmd.(type) {
	case Exit:
		r.wake.Cancel()
		r.log.Info("Exit requested", "retired", r.retired, "frames", r.frames)
		return true

	case loadROM:
		r.wake.Cancel()
		r.status = LoadingRom
		r.state.setStatus(r.status)
		r.log.Info("Replacing runner for a new cartridge")
		return true

	case Pause:
		switch r.status {
		case Running, Stepping, Break, FrameLimited:
			r.wake.Cancel()
			r.remaining = 0
			r.status = Stopped
		}

	case Resume:
		switch r.status {
		case Stopped, Break:
			r.governor.Reset(r.cfg.Clock.Now())
			r.status = Running
		}

	case Step:
		if cmd.Count == 0 {
			return false
		}
		switch r.status {
		case Running, Stopped, Break:
			r.remaining = cmd.Count
			r.status = Stepping
		}

	case SetBreakpoint:
		r.setBreakpoint(cmd.Breakpoint)

	case UnsetBreakpoint:
		r.unsetBreakpoint(cmd.Breakpoint)

	case FrameLimit:
		if r.status == Running {
			now := r.cfg.Clock.Now()
			at := r.governor.WindowEnd()
			if earliest := now.Add(r.governor.MinInterval()); at.Before(earliest) {
				at = earliest
			}
			r.limit(at)
		}

	case FrameUnlimit:
		if r.status == FrameLimited {
			r.wake.Cancel()
			r.governor.Reset(r.cfg.Clock.Now())
			r.status = Running
		}

	case ButtonPressed:
		if cmd.Button.Valid() {
			r.core.PressButton(cmd.Button)
		}

	case ButtonReleased:
		if cmd.Button.Valid() {
			r.core.ReleaseButton(cmd.Button)
		}

	default:
		r.log.Warn("Unknown command", "command", fmt.Sprintf("%T", cmd))
	}
	return false
}

func (r *Runner) setBreakpoint(d Descriptor) {
	if d == nil {
		return
	}
	t := d.Trigger()
	if !t.Valid() {
		r.log.Warn("Refusing invalid breakpoint", "breakpoint", d)
		return
	}
	if _, ok := r.breakpoints[t]; ok {
		return
	}
	r.breakpoints[t] = d
	r.core.SetBreakpoint(t)
	r.log.Debug("Breakpoint set", "breakpoint", d)
}

func (r *Runner) unsetBreakpoint(d Descriptor) {
	if d == nil {
		return
	}
	t := d.Trigger()
	if _, ok := r.breakpoints[t]; !ok {
		return
	}
	delete(r.breakpoints, t)
	r.core.UnsetBreakpoint(t)
	r.log.Debug("Breakpoint cleared", "breakpoint", d)
}

// limit suspends stepping until at. A wake that is already pending is kept.
func (r *Runner) limit(at time.Time) {
	r.status = FrameLimited
	if r.wake.Schedule(at, r.unlimit) {
		r.log.Debug("Frame limited", "until", at)
	}
}

// unlimit runs on the wake timer.
func (r *Runner) unlimit() {
	if err := r.self.Send(FrameUnlimit{}); err != nil {
		r.log.Debug("Frame unlimit dropped", "error", err)
	}
}

// advance steps the core once and applies the result.
func (r *Runner) advance() error {
	wasRunning := r.status == Running
	stepping := r.status == Stepping

	result, frameReady, err := r.core.Step()
	if err != nil {
		r.faults++
		r.log.Warn("Core fault", "error", err, "consecutive", r.faults)
		if r.faults >= r.cfg.MaxFaults {
			return fmt.Errorf("%w: %d consecutive faults, last: %w", ErrCoreWedged, r.faults, err)
		}
		if stepping {
			r.countStep()
		}
		return nil
	}
	r.faults = 0
	r.retired++

	snapshot := stepping
	repaint := false
	if frameReady {
		r.frames++
		if r.state.frame.store(r.core.Frame()) {
			repaint = true
		} else {
			r.log.Warn("Frame skipped, unexpected size", "got", len(r.core.Frame()), "want", r.state.frame.Len())
		}
		snapshot = true
	}

	switch result {
	case core.Break:
		r.remaining = 0
		r.status = Break
		snapshot = true
		r.log.Debug("Breakpoint hit", "pc", fmt.Sprintf("$%04X", r.core.Registers().PC))
	case core.Stop:
		r.remaining = 0
		r.status = Stopped
		r.log.Info("Core stopped")
	default:
		if stepping {
			r.countStep()
		}
	}

	if snapshot {
		r.snapshot()
	}
	if repaint {
		r.state.requestRepaint()
	}

	if frameReady && wasRunning && r.status == Running {
		if at, limited := r.governor.Frame(r.cfg.Clock.Now()); limited {
			r.limit(at)
		}
	}
	return nil
}

func (r *Runner) countStep() {
	r.remaining--
	if r.remaining == 0 {
		r.status = Stopped
	}
}

func (r *Runner) snapshot() {
	snap := debug.Capture(r.core, r.cfg.SnapshotMemory)
	snap.Retired = r.retired
	snap.Frames = r.frames
	if !r.state.publish(snap) {
		r.log.Debug("Snapshot dropped, stream full", "retired", r.retired)
	}
}
