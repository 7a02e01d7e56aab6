package addr

// gpu registers
const (
	// LCD Control register.
	LCDC uint16 = 0xFF40
	// LCDC Status register.
	STAT uint16 = 0xFF41
	// Scroll Y (SCY) register.
	SCY uint16 = 0xFF42
	// Scroll X (SCX) register.
	SCX uint16 = 0xFF43
	// LCDC Y-Coordinate (readonly) register.
	LY uint16 = 0xFF44
	// LY Compare register.
	LYC uint16 = 0xFF45
	// BG Palette register.
	BGP uint16 = 0xFF47
)

// joypad
const (
	// P1 is used to read the Joypad state. Also known as JOYP.
	P1 uint16 = 0xFF00
	// JOYP is an alias of P1, the name used by debug displays.
	JOYP = P1
)

// interrupts
const (
	// IF is the address for the Interrupt Flags register.
	IF uint16 = 0xFF0F
	// IE is the address for the Interrupt Enable register.
	IE uint16 = 0xFFFF
)

// memory map boundaries
const (
	// ROMEnd is the last address of cartridge ROM (banks 0 and 1).
	ROMEnd uint16 = 0x7FFF
	// EntryPoint is where execution starts after the boot ROM hands over.
	EntryPoint uint16 = 0x0100
	// StackTop is the initial stack pointer value.
	StackTop uint16 = 0xFFFE
)

// MemorySize is the size of the full 16-bit address space.
const MemorySize = 0x10000

// Interrupt is an enum that represents one of the possible interrupts.
type Interrupt uint8

const (
	// VBlankInterrupt is fired when the GPU has completed a frame.
	VBlankInterrupt Interrupt = 1
	// LCDSTATInterrupt is fired based on one of the conditions in the LCDSTAT register.
	LCDSTATInterrupt Interrupt = 1 << 1
	// JoypadInterrupt is fired when any of the keypad inputs goes from high to low.
	JoypadInterrupt Interrupt = 1 << 4
)
