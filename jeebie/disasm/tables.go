package disasm

import "fmt"

// operand placeholders used in the templates below; Decode substitutes them
// with the bytes following the opcode.
const (
	opImm8   = "d8"
	opImm16  = "d16"
	opAddr16 = "a16"
	opHigh8  = "a8"
	opRel8   = "r8"
)

type opcode struct {
	template string
	length   int
	illegal  bool
}

var (
	instructionTable   [256]opcode
	cbInstructionTable [256]opcode
)

var registerNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

// unprefixed opcodes outside of the regular LD r,r' and ALU blocks.
var baseInstructions = map[uint8]opcode{
	0x00: {"NOP", 1, false}, 0x01: {"LD BC,d16", 3, false}, 0x02: {"LD (BC),A", 1, false}, 0x03: {"INC BC", 1, false},
	0x04: {"INC B", 1, false}, 0x05: {"DEC B", 1, false}, 0x06: {"LD B,d8", 2, false}, 0x07: {"RLCA", 1, false},
	0x08: {"LD (a16),SP", 3, false}, 0x09: {"ADD HL,BC", 1, false}, 0x0A: {"LD A,(BC)", 1, false}, 0x0B: {"DEC BC", 1, false},
	0x0C: {"INC C", 1, false}, 0x0D: {"DEC C", 1, false}, 0x0E: {"LD C,d8", 2, false}, 0x0F: {"RRCA", 1, false},

	0x10: {"STOP", 2, false}, 0x11: {"LD DE,d16", 3, false}, 0x12: {"LD (DE),A", 1, false}, 0x13: {"INC DE", 1, false},
	0x14: {"INC D", 1, false}, 0x15: {"DEC D", 1, false}, 0x16: {"LD D,d8", 2, false}, 0x17: {"RLA", 1, false},
	0x18: {"JR r8", 2, false}, 0x19: {"ADD HL,DE", 1, false}, 0x1A: {"LD A,(DE)", 1, false}, 0x1B: {"DEC DE", 1, false},
	0x1C: {"INC E", 1, false}, 0x1D: {"DEC E", 1, false}, 0x1E: {"LD E,d8", 2, false}, 0x1F: {"RRA", 1, false},

	0x20: {"JR NZ,r8", 2, false}, 0x21: {"LD HL,d16", 3, false}, 0x22: {"LD (HL+),A", 1, false}, 0x23: {"INC HL", 1, false},
	0x24: {"INC H", 1, false}, 0x25: {"DEC H", 1, false}, 0x26: {"LD H,d8", 2, false}, 0x27: {"DAA", 1, false},
	0x28: {"JR Z,r8", 2, false}, 0x29: {"ADD HL,HL", 1, false}, 0x2A: {"LD A,(HL+)", 1, false}, 0x2B: {"DEC HL", 1, false},
	0x2C: {"INC L", 1, false}, 0x2D: {"DEC L", 1, false}, 0x2E: {"LD L,d8", 2, false}, 0x2F: {"CPL", 1, false},

	0x30: {"JR NC,r8", 2, false}, 0x31: {"LD SP,d16", 3, false}, 0x32: {"LD (HL-),A", 1, false}, 0x33: {"INC SP", 1, false},
	0x34: {"INC (HL)", 1, false}, 0x35: {"DEC (HL)", 1, false}, 0x36: {"LD (HL),d8", 2, false}, 0x37: {"SCF", 1, false},
	0x38: {"JR C,r8", 2, false}, 0x39: {"ADD HL,SP", 1, false}, 0x3A: {"LD A,(HL-)", 1, false}, 0x3B: {"DEC SP", 1, false},
	0x3C: {"INC A", 1, false}, 0x3D: {"DEC A", 1, false}, 0x3E: {"LD A,d8", 2, false}, 0x3F: {"CCF", 1, false},

	0x76: {"HALT", 1, false},

	0xC0: {"RET NZ", 1, false}, 0xC1: {"POP BC", 1, false}, 0xC2: {"JP NZ,a16", 3, false}, 0xC3: {"JP a16", 3, false},
	0xC4: {"CALL NZ,a16", 3, false}, 0xC5: {"PUSH BC", 1, false}, 0xC6: {"ADD A,d8", 2, false}, 0xC7: {"RST 00H", 1, false},
	0xC8: {"RET Z", 1, false}, 0xC9: {"RET", 1, false}, 0xCA: {"JP Z,a16", 3, false}, 0xCB: {"PREFIX CB", 2, false},
	0xCC: {"CALL Z,a16", 3, false}, 0xCD: {"CALL a16", 3, false}, 0xCE: {"ADC A,d8", 2, false}, 0xCF: {"RST 08H", 1, false},

	0xD0: {"RET NC", 1, false}, 0xD1: {"POP DE", 1, false}, 0xD2: {"JP NC,a16", 3, false},
	0xD4: {"CALL NC,a16", 3, false}, 0xD5: {"PUSH DE", 1, false}, 0xD6: {"SUB d8", 2, false}, 0xD7: {"RST 10H", 1, false},
	0xD8: {"RET C", 1, false}, 0xD9: {"RETI", 1, false}, 0xDA: {"JP C,a16", 3, false},
	0xDC: {"CALL C,a16", 3, false}, 0xDE: {"SBC A,d8", 2, false}, 0xDF: {"RST 18H", 1, false},

	0xE0: {"LDH (a8),A", 2, false}, 0xE1: {"POP HL", 1, false}, 0xE2: {"LD (C),A", 1, false},
	0xE5: {"PUSH HL", 1, false}, 0xE6: {"AND d8", 2, false}, 0xE7: {"RST 20H", 1, false},
	0xE8: {"ADD SP,r8", 2, false}, 0xE9: {"JP (HL)", 1, false}, 0xEA: {"LD (a16),A", 3, false},
	0xEE: {"XOR d8", 2, false}, 0xEF: {"RST 28H", 1, false},

	0xF0: {"LDH A,(a8)", 2, false}, 0xF1: {"POP AF", 1, false}, 0xF2: {"LD A,(C)", 1, false}, 0xF3: {"DI", 1, false},
	0xF5: {"PUSH AF", 1, false}, 0xF6: {"OR d8", 2, false}, 0xF7: {"RST 30H", 1, false},
	0xF8: {"LD HL,SP+r8", 2, false}, 0xF9: {"LD SP,HL", 1, false}, 0xFA: {"LD A,(a16)", 3, false}, 0xFB: {"EI", 1, false},
	0xFE: {"CP d8", 2, false}, 0xFF: {"RST 38H", 1, false},
}

// opcodes with no defined behaviour; the hardware locks up on them.
var illegalOpcodes = []uint8{0xD3, 0xDB, 0xDD, 0xE3, 0xE4, 0xEB, 0xEC, 0xED, 0xF4, 0xFC, 0xFD}

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

var cbRotateNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

func init() {
	for code, op := range baseInstructions {
		instructionTable[code] = op
	}
	for _, code := range illegalOpcodes {
		instructionTable[code] = opcode{template: fmt.Sprintf("ILLEGAL $%02X", code), length: 1, illegal: true}
	}

	// 0x40-0x7F: LD r,r' (0x76 is HALT, already set)
	for code := 0x40; code < 0x80; code++ {
		if code == 0x76 {
			continue
		}
		dst := registerNames[(code>>3)&7]
		src := registerNames[code&7]
		instructionTable[code] = opcode{template: "LD " + dst + "," + src, length: 1}
	}

	// 0x80-0xBF: 8-bit ALU with register operand
	for code := 0x80; code < 0xC0; code++ {
		instructionTable[code] = opcode{template: aluNames[(code>>3)&7] + registerNames[code&7], length: 1}
	}

	for code := 0; code < 256; code++ {
		reg := registerNames[code&7]
		bitIndex := (code >> 3) & 7

		var template string
		switch code >> 6 {
		case 0:
			template = cbRotateNames[bitIndex] + " " + reg
		case 1:
			template = fmt.Sprintf("BIT %d,%s", bitIndex, reg)
		case 2:
			template = fmt.Sprintf("RES %d,%s", bitIndex, reg)
		case 3:
			template = fmt.Sprintf("SET %d,%s", bitIndex, reg)
		}
		cbInstructionTable[code] = opcode{template: template, length: 2}
	}
}
