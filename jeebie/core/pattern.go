package core

import (
	"fmt"

	"github.com/valerio/jeebie-runner/jeebie/addr"
	"github.com/valerio/jeebie-runner/jeebie/bit"
	"github.com/valerio/jeebie-runner/jeebie/debug"
	"github.com/valerio/jeebie-runner/jeebie/disasm"
	"github.com/valerio/jeebie-runner/jeebie/display"
	"github.com/valerio/jeebie-runner/jeebie/timing"
	"github.com/valerio/jeebie-runner/jeebie/video"
)

const (
	statModeMask   = 0x03
	statModeHBlank = 0x00
	statModeVBlank = 0x01
)

// PatternCore is a stand-in emulation core. It walks the loaded program one
// instruction at a time without executing it, keeps the LCD timing registers
// moving and renders a test pattern at every VBlank. Pressing Start selects
// the next pattern, which is mirrored in register A. Flag Z toggles every
// frame.
type PatternCore struct {
	mem      [addr.MemorySize]uint8
	regs     debug.Registers
	joypad   *Joypad
	triggers Triggers

	fb      *video.FrameBuffer
	rgba    []byte
	pattern video.Pattern
	pending bool // pattern switch requested, applied at the next frame

	lineCycles int
	frames     int
}

// NewPatternCore creates a core with an empty cartridge, which decodes as a
// stream of NOPs.
func NewPatternCore() *PatternCore {
	c := &PatternCore{
		joypad: NewJoypad(),
		fb:     video.NewFrameBuffer(),
		rgba:   make([]byte, display.FrameSize),
	}
	c.reset()
	return c
}

// reset puts registers and I/O in the state the DMG boot ROM leaves them in,
// except for A which mirrors the selected pattern.
func (c *PatternCore) reset() {
	c.mem = [addr.MemorySize]uint8{}
	c.regs = debug.Registers{
		A: uint8(video.Checkerboard), F: 0xB0,
		B: 0x00, C: 0x13,
		D: 0x00, E: 0xD8,
		H: 0x01, L: 0x4D,
		SP: addr.StackTop,
		PC: addr.EntryPoint,
	}
	c.mem[addr.LCDC] = 0x91
	c.mem[addr.BGP] = 0xFC
	c.joypad.Write(0x30)

	c.pattern = video.Checkerboard
	c.pending = false
	c.lineCycles = 0
	c.frames = 0
	c.render()
}

// LoadROM copies the cartridge banks 0 and 1 into memory and resets the core.
func (c *PatternCore) LoadROM(rom []byte) error {
	if len(rom) == 0 {
		return ErrEmptyROM
	}
	c.reset()
	copy(c.mem[:int(addr.ROMEnd)+1], rom)
	return nil
}

// Step moves past one instruction. A PC trigger fires when execution arrives
// at the watched address, before the instruction there runs.
func (c *PatternCore) Step() (StepResult, bool, error) {
	pc := c.regs.PC
	code := c.mem[pc]

	if disasm.IsIllegal(code) {
		c.regs.PC++
		return Run, false, fmt.Errorf("%w $%02X at $%04X", ErrIllegalOpcode, code, pc)
	}

	length := disasm.Length(code)
	c.regs.PC = pc + uint16(length)

	if code == 0x10 {
		return Stop, false, nil
	}

	before := c.regs
	hit := false
	frameReady := false

	c.lineCycles += 4 * length
	for c.lineCycles >= timing.CyclesPerScanline {
		c.lineCycles -= timing.CyclesPerScanline

		ly := c.mem[addr.LY] + 1
		if int(ly) == display.Scanlines {
			ly = 0
		}
		hit = c.write(addr.LY, ly) || hit

		if int(ly) == display.Height {
			c.vblank()
			frameReady = true
		}
	}
	hit = c.updateMode() || hit

	hit = hit || c.triggers.MatchPC(c.regs.PC)
	hit = hit || c.registersChanged(before)
	hit = hit || c.triggers.MatchFlags(before.F, c.regs.F)

	if hit {
		return Break, frameReady, nil
	}
	return Run, frameReady, nil
}

// vblank finishes a frame: applies a pending pattern switch and renders.
func (c *PatternCore) vblank() {
	c.frames++
	if c.pending {
		c.pattern = (c.pattern + 1) % display.TestPatternCount
		c.regs.A = uint8(c.pattern)
		c.pending = false
	}
	c.regs.F = bit.Toggle(FlagZ.Bit(), c.regs.F)
	c.render()
}

// registersChanged reports whether a watched 8-bit register differs from
// before.
func (c *PatternCore) registersChanged(before debug.Registers) bool {
	old, cur := registerValues(before), registerValues(c.regs)
	for r := RegA; r <= RegL; r++ {
		if c.triggers.MatchRegister(r, old[r], cur[r]) {
			return true
		}
	}
	return false
}

// registerValues lists the 8-bit registers in Register order.
func registerValues(r debug.Registers) [8]uint8 {
	return [8]uint8{r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L}
}

// updateMode keeps the STAT mode bits in line with LY.
func (c *PatternCore) updateMode() bool {
	mode := uint8(statModeHBlank)
	if int(c.mem[addr.LY]) >= display.Height {
		mode = statModeVBlank
	}
	stat := c.mem[addr.STAT]
	if stat&statModeMask == mode {
		return false
	}
	return c.write(addr.STAT, stat&^statModeMask|mode)
}

func (c *PatternCore) write(address uint16, value uint8) bool {
	c.mem[address] = value
	return c.triggers.MatchWrite(address)
}

func (c *PatternCore) render() {
	video.DrawPattern(c.fb, c.pattern, c.frames)
	c.fb.CopyRGBA(c.rgba)
}

// Frame returns the last rendered frame in RGBA. The slice is reused by the
// next frame; callers copy it.
func (c *PatternCore) Frame() []byte {
	return c.rgba
}

func (c *PatternCore) Pattern() video.Pattern {
	return c.pattern
}

func (c *PatternCore) PressButton(b Button) {
	if b == ButtonStart && !c.joypad.Pressed(ButtonStart) {
		c.pending = true
	}
	c.joypad.Press(b)
	c.mem[addr.IF] |= uint8(addr.JoypadInterrupt)
}

func (c *PatternCore) ReleaseButton(b Button) {
	c.joypad.Release(b)
}

func (c *PatternCore) SetBreakpoint(t Trigger) {
	c.triggers.Set(t)
}

func (c *PatternCore) UnsetBreakpoint(t Trigger) {
	c.triggers.Unset(t)
}

// Read implements disasm.Reader and debug.Source.
func (c *PatternCore) Read(address uint16) uint8 {
	if address == addr.P1 {
		return c.joypad.Read()
	}
	return c.mem[address]
}

// Registers implements debug.Source.
func (c *PatternCore) Registers() debug.Registers {
	return c.regs
}
