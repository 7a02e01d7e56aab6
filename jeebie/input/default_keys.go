package input

import "github.com/valerio/jeebie-runner/jeebie/input/action"

// DefaultKeyMap provides default key mappings that work across observers.
var DefaultKeyMap = map[string]action.Action{
	// Game Boy controls
	"z":      action.GBButtonA,
	"x":      action.GBButtonB,
	"Enter":  action.GBButtonStart,
	"Select": action.GBButtonSelect,
	"c":      action.GBButtonSelect,
	"Up":     action.GBDPadUp,
	"Down":   action.GBDPadDown,
	"Left":   action.GBDPadLeft,
	"Right":  action.GBDPadRight,

	// Alternative arrow keys (WASD)
	"w": action.GBDPadUp,
	"s": action.GBDPadDown,
	"a": action.GBDPadLeft,
	"d": action.GBDPadRight,

	// Runner controls
	"Space":  action.RunnerPauseToggle,
	"p":      action.RunnerPauseToggle,
	"n":      action.RunnerStepInstruction,
	"i":      action.RunnerStepInstruction,
	"m":      action.RunnerStepMany,
	"l":      action.RunnerFrameLimitToggle,
	"b":      action.RunnerBreakpointAdd,
	"B":      action.RunnerBreakpointRemove,
	"F9":     action.RunnerSnapshot,
	"Escape": action.RunnerQuit,
	"q":      action.RunnerQuit,

	// Debug controls
	"+": action.DebugLogLevelIncrease,
	"=": action.DebugLogLevelIncrease,
	"-": action.DebugLogLevelDecrease,
	"_": action.DebugLogLevelDecrease,
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}
