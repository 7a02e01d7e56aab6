package core

import "github.com/valerio/jeebie-runner/jeebie/bit"

// Button represents a key on the Gameboy joypad
type Button uint8

const (
	ButtonRight Button = iota
	ButtonLeft
	ButtonUp
	ButtonDown
	ButtonA
	ButtonB
	ButtonSelect
	ButtonStart
)

func (b Button) String() string {
	switch b {
	case ButtonRight:
		return "Right"
	case ButtonLeft:
		return "Left"
	case ButtonUp:
		return "Up"
	case ButtonDown:
		return "Down"
	case ButtonA:
		return "A"
	case ButtonB:
		return "B"
	case ButtonSelect:
		return "Select"
	case ButtonStart:
		return "Start"
	}
	return "Unknown"
}

// Valid reports whether b names one of the eight joypad buttons.
func (b Button) Valid() bool {
	return b <= ButtonStart
}

// Joypad represents the Gameboy joypad. Lines are active low: a pressed
// button reads as 0.
type Joypad struct {
	buttons uint8
	dpad    uint8
	line    uint8
}

// NewJoypad creates a new Joypad instance with every button released.
func NewJoypad() *Joypad {
	return &Joypad{
		buttons: 0x0F,
		dpad:    0x0F,
	}
}

// Read returns the P1 register value for the currently selected line.
func (j *Joypad) Read() uint8 {
	value := 0xC0 | j.line
	switch j.line {
	case 0x20:
		value |= j.dpad
	case 0x10:
		value |= j.buttons
	default:
		value |= 0x0F
	}
	return value
}

// Write selects the line to be read (bit 4 low: d-pad, bit 5 low: buttons).
func (j *Joypad) Write(value uint8) {
	j.line = value & 0x30
}

// Press updates the joypad state when a button is pressed
func (j *Joypad) Press(b Button) {
	if reg, index, ok := j.locate(b); ok {
		*reg = bit.Reset(index, *reg)
	}
}

// Release updates the joypad state when a button is released
func (j *Joypad) Release(b Button) {
	if reg, index, ok := j.locate(b); ok {
		*reg = bit.Set(index, *reg)
	}
}

// Pressed reports whether b is currently held down.
func (j *Joypad) Pressed(b Button) bool {
	reg, index, ok := j.locate(b)
	return ok && !bit.IsSet(index, *reg)
}

func (j *Joypad) locate(b Button) (*uint8, uint8, bool) {
	switch b {
	case ButtonRight, ButtonLeft, ButtonUp, ButtonDown:
		return &j.dpad, uint8(b - ButtonRight), true
	case ButtonA, ButtonB, ButtonSelect, ButtonStart:
		return &j.buttons, uint8(b - ButtonA), true
	}
	return nil, 0, false
}
