package runner

import (
	"sync"

	"github.com/valerio/jeebie-runner/jeebie/addr"
	"github.com/valerio/jeebie-runner/jeebie/core"
	"github.com/valerio/jeebie-runner/jeebie/debug"
	"github.com/valerio/jeebie-runner/jeebie/display"
)

type stepOutcome struct {
	result     core.StepResult
	frameReady bool
	err        error
}

// fakeCore advances PC by one per step and follows a script keyed by the
// 1-based step number. Writes scheduled for a step go through the trigger
// registry like a real core would.
type fakeCore struct {
	mu sync.Mutex

	regs     debug.Registers
	mem      [addr.MemorySize]uint8
	triggers core.Triggers
	frame    []byte

	steps   int
	script  map[int]stepOutcome
	fallback func(n int) stepOutcome
	writes  map[int]uint16

	setCalls   []core.Trigger
	unsetCalls []core.Trigger
	pressed    []core.Button
	released   []core.Button
}

func newFakeCore() *fakeCore {
	return &fakeCore{
		regs:   debug.Registers{PC: addr.EntryPoint, SP: addr.StackTop},
		frame:  make([]byte, display.FrameSize),
		script: make(map[int]stepOutcome),
		writes: make(map[int]uint16),
	}
}

func (c *fakeCore) Step() (core.StepResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.steps++
	c.regs.PC++

	out, ok := c.script[c.steps]
	if !ok && c.fallback != nil {
		out = c.fallback(c.steps)
	}
	if out.err != nil {
		return out.result, false, out.err
	}

	if address, ok := c.writes[c.steps]; ok {
		c.mem[address] = uint8(c.steps)
		if c.triggers.MatchWrite(address) {
			out.result = core.Break
		}
	}
	if c.triggers.MatchPC(c.regs.PC) {
		out.result = core.Break
	}
	return out.result, out.frameReady, nil
}

func (c *fakeCore) Steps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps
}

func (c *fakeCore) LoadROM(rom []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copy(c.mem[:], rom)
	return nil
}

func (c *fakeCore) PressButton(b core.Button) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pressed = append(c.pressed, b)
}

func (c *fakeCore) ReleaseButton(b core.Button) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.released = append(c.released, b)
}

func (c *fakeCore) SetBreakpoint(t core.Trigger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggers.Set(t)
	c.setCalls = append(c.setCalls, t)
}

func (c *fakeCore) UnsetBreakpoint(t core.Trigger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.triggers.Unset(t)
	c.unsetCalls = append(c.unsetCalls, t)
}

func (c *fakeCore) Frame() []byte {
	return c.frame
}

// Read and Registers are only called from the runner goroutine, during a
// snapshot.
func (c *fakeCore) Read(address uint16) uint8 {
	return c.mem[address]
}

func (c *fakeCore) Registers() debug.Registers {
	return c.regs
}

func (c *fakeCore) Pressed() []core.Button {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]core.Button(nil), c.pressed...)
}
