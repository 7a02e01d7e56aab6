package core

import "errors"

// StepResult is the CPU status after a single step.
type StepResult int

const (
	// Run means the instruction retired normally.
	Run StepResult = iota
	// Break means a trigger matched during the step.
	Break
	// Stop means the CPU executed STOP and will not continue on its own.
	Stop
)

func (r StepResult) String() string {
	switch r {
	case Run:
		return "Run"
	case Break:
		return "Break"
	case Stop:
		return "Stop"
	}
	return "Unknown"
}

var (
	// ErrIllegalOpcode is returned by Step for one of the unused opcodes.
	ErrIllegalOpcode = errors.New("illegal opcode")
	// ErrEmptyROM is returned by LoadROM for an empty image.
	ErrEmptyROM = errors.New("empty ROM image")
)
