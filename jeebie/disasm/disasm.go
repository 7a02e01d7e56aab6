package disasm

import (
	"fmt"
	"strings"

	"github.com/valerio/jeebie-runner/jeebie/bit"
)

// Reader provides byte access to the memory being disassembled.
type Reader interface {
	Read(addr uint16) uint8
}

// Instruction is a single decoded instruction.
type Instruction struct {
	Address  uint16
	Opcode   uint8
	Mnemonic string
	Operands string
	Length   int
	Illegal  bool
}

// String formats the instruction as "MNEMONIC operands".
func (i Instruction) String() string {
	if i.Operands == "" {
		return i.Mnemonic
	}
	return i.Mnemonic + " " + i.Operands
}

// Length returns the encoded length in bytes of the instruction starting with
// opcode. CB-prefixed instructions are always 2 bytes long.
func Length(opcode uint8) int {
	return instructionTable[opcode].length
}

// IsIllegal reports whether opcode is one of the unused LR35902 opcodes.
func IsIllegal(opcode uint8) bool {
	return instructionTable[opcode].illegal
}

// DisassembleAt decodes the instruction at pc. Operand bytes are read with
// wrap-around at the top of the address space.
func DisassembleAt(r Reader, pc uint16) Instruction {
	code := r.Read(pc)

	if code == 0xCB {
		op := cbInstructionTable[r.Read(pc+1)]
		return split(pc, code, op.template, op.length, false)
	}

	op := instructionTable[code]
	text := op.template

	switch {
	case strings.Contains(text, opImm16):
		text = strings.Replace(text, opImm16, fmt.Sprintf("$%04X", read16(r, pc+1)), 1)
	case strings.Contains(text, opAddr16):
		text = strings.Replace(text, opAddr16, fmt.Sprintf("$%04X", read16(r, pc+1)), 1)
	case strings.Contains(text, opImm8):
		text = strings.Replace(text, opImm8, fmt.Sprintf("$%02X", r.Read(pc+1)), 1)
	case strings.Contains(text, opHigh8):
		text = strings.Replace(text, opHigh8, fmt.Sprintf("$FF%02X", r.Read(pc+1)), 1)
	case strings.Contains(text, opRel8):
		offset := int8(r.Read(pc + 1))
		if strings.HasPrefix(text, "JR") {
			target := pc + 2 + uint16(offset)
			text = strings.Replace(text, opRel8, fmt.Sprintf("$%04X", target), 1)
		} else {
			text = strings.Replace(text, opRel8, fmt.Sprintf("%d", offset), 1)
		}
	}

	return split(pc, code, text, op.length, op.illegal)
}

// DisassembleRange decodes count consecutive instructions starting at pc.
func DisassembleRange(r Reader, pc uint16, count int) []Instruction {
	lines := make([]Instruction, 0, count)
	for i := 0; i < count; i++ {
		inst := DisassembleAt(r, pc)
		lines = append(lines, inst)
		pc += uint16(inst.Length)
	}
	return lines
}

func read16(r Reader, addr uint16) uint16 {
	return bit.Combine(r.Read(addr+1), r.Read(addr))
}

func split(pc uint16, code uint8, text string, length int, illegal bool) Instruction {
	mnemonic, operands, _ := strings.Cut(text, " ")
	return Instruction{
		Address:  pc,
		Opcode:   code,
		Mnemonic: mnemonic,
		Operands: operands,
		Length:   length,
		Illegal:  illegal,
	}
}
