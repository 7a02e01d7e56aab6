package action

import "github.com/valerio/jeebie-runner/jeebie/core"

// Action represents input actions an observer can perform
type Action int

const (
	// Game Boy hardware controls
	GBButtonA Action = iota
	GBButtonB
	GBButtonStart
	GBButtonSelect
	GBDPadUp
	GBDPadDown
	GBDPadLeft
	GBDPadRight

	// Runner controls
	RunnerPauseToggle
	RunnerStepInstruction
	RunnerStepMany
	RunnerFrameLimitToggle
	RunnerBreakpointAdd
	RunnerBreakpointRemove
	RunnerSnapshot
	RunnerQuit

	// Debug controls
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

var buttons = map[Action]core.Button{
	GBButtonA:      core.ButtonA,
	GBButtonB:      core.ButtonB,
	GBButtonStart:  core.ButtonStart,
	GBButtonSelect: core.ButtonSelect,
	GBDPadUp:       core.ButtonUp,
	GBDPadDown:     core.ButtonDown,
	GBDPadLeft:     core.ButtonLeft,
	GBDPadRight:    core.ButtonRight,
}

// Button returns the joypad button behind a hardware action.
func (a Action) Button() (core.Button, bool) {
	b, ok := buttons[a]
	return b, ok
}

// IsDPad reports whether the action is one of the four directions.
func (a Action) IsDPad() bool {
	return a >= GBDPadUp && a <= GBDPadRight
}

var names = map[Action]string{
	RunnerPauseToggle:      "pause/resume",
	RunnerStepInstruction:  "step",
	RunnerStepMany:         "step x10",
	RunnerFrameLimitToggle: "frame limit",
	RunnerBreakpointAdd:    "add breakpoint",
	RunnerBreakpointRemove: "remove breakpoint",
	RunnerSnapshot:         "snapshot",
	RunnerQuit:             "quit",
	DebugLogLevelIncrease:  "more logs",
	DebugLogLevelDecrease:  "fewer logs",
}

func (a Action) String() string {
	if b, ok := a.Button(); ok {
		return "button " + b.String()
	}
	if name, ok := names[a]; ok {
		return name
	}
	return "unknown"
}
