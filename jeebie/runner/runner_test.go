package runner

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/jeebie-runner/jeebie/addr"
	"github.com/valerio/jeebie-runner/jeebie/core"
	"github.com/valerio/jeebie-runner/jeebie/debug"
	"github.com/valerio/jeebie-runner/jeebie/events"
	"github.com/valerio/jeebie-runner/jeebie/timing"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type harness struct {
	r     *Runner
	core  *fakeCore
	tx    *Sender
	rx    *Receiver
	clock *events.FakeClock
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	clock := events.NewFakeClock(epoch)
	cfg.Clock = clock
	cfg.Logger = quiet

	fc := newFakeCore()
	tx, rx := NewChannel()
	h := &harness{r: New(fc, rx, cfg), core: fc, tx: tx, rx: rx, clock: clock}
	h.r.start()
	return h
}

// at forces the runner into a state, as published after an iteration.
func (h *harness) at(s Status) *harness {
	h.r.status = s
	if s == Stepping {
		h.r.remaining = 100
	}
	h.r.state.setStatus(s)
	return h
}

func (h *harness) iterate(t *testing.T, cmd Command) {
	t.Helper()
	exit, err := h.r.iterate(cmd)
	require.NoError(t, err)
	require.False(t, exit)
}

func drain(s *State) []debug.Snapshot {
	var out []debug.Snapshot
	for {
		select {
		case snap, ok := <-s.Snapshots():
			if !ok {
				return out
			}
			out = append(out, snap)
		default:
			return out
		}
	}
}

func TestInitialStatus(t *testing.T) {
	tx, rx := NewChannel()
	defer tx.Close()

	r := New(newFakeCore(), rx, Config{Logger: quiet})
	assert.Equal(t, Fresh, r.State().Status(), "nothing published before the loop starts")

	r.start()
	assert.Equal(t, Running, r.State().Status())

	paused := New(newFakeCore(), rx, Config{Logger: quiet, StartPaused: true})
	paused.start()
	assert.Equal(t, Stopped, paused.State().Status())
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name      string
		from      Status
		cmd       Command
		want      Status
		wantSteps int
	}{
		{"pause running", Running, Pause{}, Stopped, 0},
		{"pause stopped", Stopped, Pause{}, Stopped, 0},
		{"pause stepping", Stepping, Pause{}, Stopped, 0},
		{"pause break", Break, Pause{}, Stopped, 0},
		{"pause frame limited", FrameLimited, Pause{}, Stopped, 0},

		{"resume stopped", Stopped, Resume{}, Running, 1},
		{"resume break", Break, Resume{}, Running, 1},
		{"resume running", Running, Resume{}, Running, 1},
		{"resume frame limited", FrameLimited, Resume{}, FrameLimited, 0},

		{"step one from stopped", Stopped, Step{Count: 1}, Stopped, 1},
		{"step many from stopped", Stopped, Step{Count: 3}, Stepping, 1},
		{"step from break", Break, Step{Count: 2}, Stepping, 1},
		{"step from running", Running, Step{Count: 1}, Stopped, 1},
		{"step zero", Stopped, Step{Count: 0}, Stopped, 0},
		{"step while frame limited", FrameLimited, Step{Count: 1}, FrameLimited, 0},

		{"frame limit running", Running, FrameLimit{}, FrameLimited, 0},
		{"frame limit stopped", Stopped, FrameLimit{}, Stopped, 0},
		{"frame limit break", Break, FrameLimit{}, Break, 0},
		{"frame unlimit limited", FrameLimited, FrameUnlimit{}, Running, 1},
		{"frame unlimit running", Running, FrameUnlimit{}, Running, 1},
		{"frame unlimit stopped", Stopped, FrameUnlimit{}, Stopped, 0},

		{"button while stopped", Stopped, ButtonPressed{Button: core.ButtonA}, Stopped, 0},
		{"idle iteration running", Running, nil, Running, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, DefaultConfig()).at(tt.from)

			h.iterate(t, tt.cmd)

			assert.Equal(t, tt.want, h.r.State().Status())
			assert.Equal(t, tt.wantSteps, h.core.Steps())
		})
	}
}

func TestExitTerminates(t *testing.T) {
	for _, from := range []Status{Running, Stopped, Stepping, Break, FrameLimited} {
		h := newHarness(t, DefaultConfig()).at(from)

		exit, err := h.r.iterate(Exit{})
		require.NoError(t, err)
		assert.True(t, exit, from.String())
		assert.Equal(t, 0, h.core.Steps())
	}
}

func TestPauseRetiresNothing(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	h.iterate(t, nil)
	require.Equal(t, 1, h.core.Steps())

	h.iterate(t, Pause{})
	assert.Equal(t, Stopped, h.r.State().Status())

	h.iterate(t, SetBreakpoint{Breakpoint: ProgramCounterAt{Address: 0x4000}})
	h.iterate(t, ButtonPressed{Button: core.ButtonStart})
	assert.Equal(t, 1, h.core.Steps(), "no instruction retires while stopped")

	h.iterate(t, Resume{})
	assert.Equal(t, Running, h.r.State().Status())
	assert.Equal(t, 2, h.core.Steps())
}

func TestBreakOnMemoryWrite(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.core.writes[3] = addr.LCDC
	h.core.mem[addr.EntryPoint+3] = 0x3E // LD A,d8
	h.core.mem[addr.EntryPoint+4] = 0x42

	h.iterate(t, SetBreakpoint{Breakpoint: MemoryWriteAt{Address: addr.LCDC}})
	h.iterate(t, nil)
	h.iterate(t, nil)
	assert.Equal(t, Running, h.r.State().Status())
	assert.Empty(t, drain(h.r.State()))

	h.iterate(t, nil)
	assert.Equal(t, Break, h.r.State().Status())
	assert.Equal(t, 3, h.core.Steps())

	snaps := drain(h.r.State())
	require.Len(t, snaps, 1)
	assert.Equal(t, addr.EntryPoint+3, snaps[0].Registers.PC)
	assert.Equal(t, addr.EntryPoint+3, snaps[0].Instruction.Address, "snapshot shows the instruction after the write")
	assert.Equal(t, "LD A,$42", snaps[0].Instruction.String())
	assert.Equal(t, uint64(3), snaps[0].Retired)

	// Break is idle: nothing runs without a command.
	h.iterate(t, nil)
	assert.Equal(t, 3, h.core.Steps())

	h.iterate(t, Resume{})
	assert.Equal(t, Running, h.r.State().Status())
	assert.Equal(t, 4, h.core.Steps())
}

func TestStepEmitsOneSnapshotPerInstruction(t *testing.T) {
	h := newHarness(t, Config{StartPaused: true})

	h.iterate(t, Step{Count: 5})
	for h.r.State().Status() == Stepping {
		h.iterate(t, nil)
	}

	assert.Equal(t, Stopped, h.r.State().Status())
	assert.Equal(t, 5, h.core.Steps())

	snaps := drain(h.r.State())
	require.Len(t, snaps, 5)
	for i, snap := range snaps {
		assert.Equal(t, uint64(i+1), snap.Retired)
		assert.Equal(t, addr.EntryPoint+uint16(i+1), snap.Registers.PC)
	}
}

func TestStepInterruptedByBreakpoint(t *testing.T) {
	h := newHarness(t, Config{StartPaused: true})

	h.iterate(t, SetBreakpoint{Breakpoint: ProgramCounterAt{Address: addr.EntryPoint + 2}})
	h.iterate(t, Step{Count: 5})
	for h.r.State().Status() == Stepping {
		h.iterate(t, nil)
	}

	assert.Equal(t, Break, h.r.State().Status())
	assert.Equal(t, 2, h.core.Steps(), "fewer than requested")
	assert.Len(t, drain(h.r.State()), 2)
}

func TestBreakpointsAreIdempotent(t *testing.T) {
	h := newHarness(t, Config{StartPaused: true})
	bp := FlagEvent{Flag: core.FlagZ}

	h.iterate(t, SetBreakpoint{Breakpoint: bp})
	h.iterate(t, SetBreakpoint{Breakpoint: bp})
	assert.Len(t, h.core.setCalls, 1)
	assert.Len(t, h.r.breakpoints, 1)

	h.iterate(t, UnsetBreakpoint{Breakpoint: bp})
	h.iterate(t, UnsetBreakpoint{Breakpoint: bp})
	h.iterate(t, UnsetBreakpoint{Breakpoint: MemoryWriteAt{Address: 0xC000}})
	assert.Len(t, h.core.unsetCalls, 1)
	assert.Empty(t, h.r.breakpoints)

	h.iterate(t, SetBreakpoint{Breakpoint: RegisterEvent{Register: core.Register(42)}})
	h.iterate(t, SetBreakpoint{Breakpoint: nil})
	assert.Len(t, h.core.setCalls, 1, "invalid descriptors never reach the core")
}

func TestBreakpointTriggerDelivery(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	bp := ProgramCounterAt{Address: addr.EntryPoint + 1}

	h.iterate(t, SetBreakpoint{Breakpoint: bp})
	h.iterate(t, SetBreakpoint{Breakpoint: bp})
	h.iterate(t, SetBreakpoint{Breakpoint: MemoryWriteAt{Address: 0xFF47}})

	assert.Equal(t, Break, h.r.State().Status())
	assert.Len(t, drain(h.r.State()), 1, "a duplicate set does not deliver twice")
}

func TestFrameReadyPublishesFrame(t *testing.T) {
	h := newHarness(t, Config{})
	for i := range h.core.frame {
		h.core.frame[i] = uint8(i)
	}
	h.core.script[2] = stepOutcome{frameReady: true}

	frame := h.r.State().Frame()
	h.iterate(t, nil)
	assert.False(t, frame.Pending())
	assert.Empty(t, drain(h.r.State()), "no snapshot while running without a frame")

	h.iterate(t, nil)
	assert.True(t, frame.Pending())
	assert.Equal(t, len(h.core.frame), frame.Len())

	select {
	case <-h.r.State().Repaint():
	default:
		t.Fatal("repaint not requested")
	}

	snaps := drain(h.r.State())
	require.Len(t, snaps, 1)
	assert.Equal(t, uint64(1), snaps[0].Frames)

	consumed := frame.Consume(func(buf []byte) {
		assert.Equal(t, h.core.frame, buf)
	})
	assert.True(t, consumed)
	assert.False(t, frame.Pending())
	assert.False(t, frame.Consume(func([]byte) { t.Fatal("nothing pending") }))
}

func TestFrameWithWrongSizeIsSkipped(t *testing.T) {
	h := newHarness(t, Config{})
	h.core.frame = make([]byte, 10)
	h.core.script[1] = stepOutcome{frameReady: true}

	h.iterate(t, nil)

	frame := h.r.State().Frame()
	assert.False(t, frame.Pending())
	assert.Equal(t, 160*144*4, frame.Len())
	assert.Equal(t, Running, h.r.State().Status())
}

func TestGovernorLimitsFrames(t *testing.T) {
	h := newHarness(t, Config{FPSCap: 2})
	h.core.fallback = func(int) stepOutcome { return stepOutcome{frameReady: true} }

	h.iterate(t, nil)
	assert.Equal(t, Running, h.r.State().Status())

	h.iterate(t, nil)
	assert.Equal(t, FrameLimited, h.r.State().Status())
	assert.Equal(t, 1, h.clock.Pending())

	at, pending := h.r.wake.Pending()
	require.True(t, pending)
	assert.Equal(t, epoch.Add(time.Second), at)

	// Idle: further iterations and repeated limits do not step or schedule.
	h.iterate(t, FrameLimit{})
	h.iterate(t, nil)
	assert.Equal(t, 2, h.core.Steps())
	assert.Equal(t, 1, h.clock.Pending())

	h.clock.Advance(999 * time.Millisecond)
	assert.Equal(t, 0, h.rx.Len())

	h.clock.Advance(time.Millisecond)
	require.Equal(t, 1, h.rx.Len())
	cmd, err := h.rx.TryReceive()
	require.NoError(t, err)
	assert.Equal(t, FrameUnlimit{}, cmd)

	h.iterate(t, cmd)
	assert.Equal(t, Running, h.r.State().Status())
	assert.Equal(t, 3, h.core.Steps())
}

func TestFrameLimitSchedulesOneWake(t *testing.T) {
	h := newHarness(t, Config{})
	h.clock.Advance(500 * time.Millisecond)

	h.iterate(t, FrameLimit{})
	h.iterate(t, FrameLimit{})
	assert.Equal(t, FrameLimited, h.r.State().Status())
	assert.Equal(t, 1, h.clock.Pending(), "exactly one wake")

	at, _ := h.r.wake.Pending()
	assert.False(t, at.Before(h.clock.Now().Add(timing.FrameDuration())), "not earlier than one frame")
	assert.Equal(t, epoch.Add(time.Second), at)

	h.clock.Advance(10 * time.Second)
	assert.Equal(t, 1, h.rx.Len())
}

func TestFrameLimitLateInWindowWaitsMinInterval(t *testing.T) {
	h := newHarness(t, Config{FPSCap: 10})
	h.clock.Advance(990 * time.Millisecond)

	h.iterate(t, FrameLimit{})

	at, pending := h.r.wake.Pending()
	require.True(t, pending)
	assert.Equal(t, h.clock.Now().Add(100*time.Millisecond), at)
}

func TestExitCancelsWake(t *testing.T) {
	h := newHarness(t, Config{})
	h.iterate(t, FrameLimit{})
	require.Equal(t, 1, h.clock.Pending())

	exit, err := h.r.iterate(Exit{})
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Equal(t, 0, h.clock.Pending())

	h.clock.Advance(2 * time.Second)
	assert.Equal(t, 0, h.rx.Len())
}

func TestPauseCancelsWake(t *testing.T) {
	h := newHarness(t, Config{})
	h.iterate(t, FrameLimit{})
	h.iterate(t, Pause{})

	assert.Equal(t, Stopped, h.r.State().Status())
	assert.Equal(t, 0, h.clock.Pending())
}

func TestLateUnlimitIsIgnored(t *testing.T) {
	h := newHarness(t, Config{})
	h.iterate(t, FrameLimit{})
	h.iterate(t, Pause{})
	h.iterate(t, Resume{})

	h.iterate(t, FrameUnlimit{})
	h.iterate(t, FrameUnlimit{})
	assert.Equal(t, Running, h.r.State().Status())
}

func TestCoreFaults(t *testing.T) {
	t.Run("recoverable", func(t *testing.T) {
		h := newHarness(t, Config{MaxFaults: 3})
		fault := stepOutcome{err: core.ErrIllegalOpcode}
		h.core.script[1] = fault
		h.core.script[2] = fault
		h.core.script[4] = fault
		h.core.script[5] = fault

		for i := 0; i < 6; i++ {
			h.iterate(t, nil)
		}
		assert.Equal(t, Running, h.r.State().Status())
		assert.Equal(t, uint64(2), h.r.retired)
	})

	t.Run("wedged", func(t *testing.T) {
		h := newHarness(t, Config{})
		h.core.fallback = func(int) stepOutcome { return stepOutcome{err: core.ErrIllegalOpcode} }

		var err error
		for i := 0; i < DefaultMaxFaults && err == nil; i++ {
			_, err = h.r.iterate(nil)
		}
		assert.ErrorIs(t, err, ErrCoreWedged)
		assert.ErrorIs(t, err, core.ErrIllegalOpcode)
		assert.Equal(t, DefaultMaxFaults, h.core.Steps())
	})

	t.Run("stepping counts faults", func(t *testing.T) {
		h := newHarness(t, Config{StartPaused: true})
		h.core.script[1] = stepOutcome{err: core.ErrIllegalOpcode}

		h.iterate(t, Step{Count: 2})
		h.iterate(t, nil)

		assert.Equal(t, Stopped, h.r.State().Status())
		assert.Len(t, drain(h.r.State()), 1, "only the retired instruction is reported")
	})
}

func TestCoreStop(t *testing.T) {
	h := newHarness(t, Config{})
	h.core.script[2] = stepOutcome{result: core.Stop}

	h.iterate(t, nil)
	h.iterate(t, nil)

	assert.Equal(t, Stopped, h.r.State().Status())
	h.iterate(t, nil)
	assert.Equal(t, 2, h.core.Steps())
}

func TestButtonsForwarded(t *testing.T) {
	h := newHarness(t, Config{StartPaused: true})

	h.iterate(t, ButtonPressed{Button: core.ButtonStart})
	h.iterate(t, ButtonReleased{Button: core.ButtonStart})
	h.iterate(t, ButtonPressed{Button: core.Button(99)})

	assert.Equal(t, []core.Button{core.ButtonStart}, h.core.pressed)
	assert.Equal(t, []core.Button{core.ButtonStart}, h.core.released)
}

func TestReplacePublishesLoadingRom(t *testing.T) {
	h := newHarness(t, Config{})
	require.NoError(t, h.r.Replace())

	cmd, err := h.rx.TryReceive()
	require.NoError(t, err)

	exit, err := h.r.iterate(cmd)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Equal(t, LoadingRom, h.r.State().Status())
	assert.Equal(t, 0, h.core.Steps())
}

func TestSnapshotStreamFullDrops(t *testing.T) {
	h := newHarness(t, Config{StartPaused: true, SnapshotBuffer: 2})

	h.iterate(t, Step{Count: 4})
	for h.r.State().Status() == Stepping {
		h.iterate(t, nil)
	}

	snaps := drain(h.r.State())
	require.Len(t, snaps, 2)
	assert.Equal(t, uint64(1), snaps[0].Retired, "oldest snapshots are kept")
	assert.Equal(t, 4, h.core.Steps())
}

func TestClosedSnapshotStreamIsSilent(t *testing.T) {
	h := newHarness(t, Config{StartPaused: true})
	h.r.State().CloseSnapshots()
	h.r.State().CloseSnapshots()

	h.iterate(t, Step{Count: 3})
	for h.r.State().Status() == Stepping {
		h.iterate(t, nil)
	}
	assert.Equal(t, Stopped, h.r.State().Status())
	assert.Equal(t, 3, h.core.Steps())
}

func TestSnapshotMemory(t *testing.T) {
	h := newHarness(t, Config{StartPaused: true, SnapshotMemory: true})
	h.core.mem[0xC000] = 0xAB

	h.iterate(t, Step{Count: 1})

	snaps := drain(h.r.State())
	require.Len(t, snaps, 1)
	require.NotNil(t, snaps[0].Memory)
	assert.Equal(t, uint8(0xAB), snaps[0].Memory[0xC000])
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{FPSCap: -1}.withDefaults()

	assert.Equal(t, 0, cfg.FPSCap)
	assert.Equal(t, DefaultMaxFaults, cfg.MaxFaults)
	assert.Equal(t, DefaultSnapshotBuffer, cfg.SnapshotBuffer)
	assert.NotNil(t, cfg.Logger)
	assert.Equal(t, events.SystemClock, cfg.Clock)
	assert.Equal(t, 60, DefaultConfig().FPSCap)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "FrameLimited", FrameLimited.String())
	assert.Equal(t, "Status(42)", Status(42).String())
}
