package debug

import (
	"fmt"
	"strings"

	"github.com/valerio/jeebie-runner/jeebie/addr"
	"github.com/valerio/jeebie-runner/jeebie/disasm"
)

// Registers contains all CPU register information for debugging
type Registers struct {
	A uint8
	F uint8
	B uint8
	C uint8
	D uint8
	E uint8
	H uint8
	L uint8

	SP uint16
	PC uint16
}

// IORegisters is the subset of I/O registers shown by debug displays.
type IORegisters struct {
	LCDC uint8
	JOYP uint8
	SCX  uint8
	SCY  uint8
	STAT uint8
	LYC  uint8
	LY   uint8
}

// Source is what a core exposes for snapshots to be taken from it.
type Source interface {
	disasm.Reader
	Registers() Registers
}

// Snapshot is a point-in-time copy of the core state. Snapshots are values:
// nothing in them aliases core memory.
type Snapshot struct {
	Instruction disasm.Instruction
	Registers   Registers
	IO          IORegisters

	Retired uint64 // instructions retired in this session
	Frames  uint64 // frames produced in this session

	// Memory is the full address space, nil unless memory dumps were requested.
	Memory *[addr.MemorySize]uint8
}

// Capture builds a snapshot from src. The next instruction is decoded at the
// current PC.
func Capture(src Source, withMemory bool) Snapshot {
	regs := src.Registers()

	s := Snapshot{
		Instruction: disasm.DisassembleAt(src, regs.PC),
		Registers:   regs,
		IO: IORegisters{
			LCDC: src.Read(addr.LCDC),
			JOYP: src.Read(addr.JOYP),
			SCX:  src.Read(addr.SCX),
			SCY:  src.Read(addr.SCY),
			STAT: src.Read(addr.STAT),
			LYC:  src.Read(addr.LYC),
			LY:   src.Read(addr.LY),
		},
	}

	if withMemory {
		var mem [addr.MemorySize]uint8
		for i := range mem {
			mem[i] = src.Read(uint16(i))
		}
		s.Memory = &mem
	}

	return s
}

// String renders the snapshot on a single line, used for logging.
func (s Snapshot) String() string {
	r := s.Registers
	return fmt.Sprintf("%04X: %-16s AF=%02X%02X BC=%02X%02X DE=%02X%02X HL=%02X%02X SP=%04X LY=%02X",
		r.PC, s.Instruction.String(), r.A, r.F, r.B, r.C, r.D, r.E, r.H, r.L, r.SP, s.IO.LY)
}

// Lines renders the register and I/O blocks for multi-line debug panels.
func (s Snapshot) Lines() []string {
	r := s.Registers
	io := s.IO

	var flags strings.Builder
	for i, name := range []byte("ZNHC") {
		if r.F&(0x80>>i) != 0 {
			flags.WriteByte(name)
		} else {
			flags.WriteByte('-')
		}
	}

	return []string{
		fmt.Sprintf("A: %02X  F: %02X  [%s]", r.A, r.F, flags.String()),
		fmt.Sprintf("B: %02X  C: %02X", r.B, r.C),
		fmt.Sprintf("D: %02X  E: %02X", r.D, r.E),
		fmt.Sprintf("H: %02X  L: %02X", r.H, r.L),
		fmt.Sprintf("SP: %04X  PC: %04X", r.SP, r.PC),
		fmt.Sprintf("LCDC: %02X  STAT: %02X  JOYP: %02X", io.LCDC, io.STAT, io.JOYP),
		fmt.Sprintf("SCX: %02X  SCY: %02X", io.SCX, io.SCY),
		fmt.Sprintf("LY: %02X  LYC: %02X", io.LY, io.LYC),
		fmt.Sprintf("Next: %s", s.Instruction.String()),
		fmt.Sprintf("Retired: %d  Frames: %d", s.Retired, s.Frames),
	}
}
