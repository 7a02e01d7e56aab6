package runner

import "github.com/valerio/jeebie-runner/jeebie/core"

// Command is a request from an observer to the runner. Commands are applied
// in send order, each exactly once.
type Command interface {
	command()
}

type (
	// Exit terminates the runner.
	Exit struct{}
	// Pause stops stepping.
	Pause struct{}
	// Resume continues from Stopped or Break.
	Resume struct{}
	// Step retires up to Count instructions, then stops.
	Step struct{ Count uint }

	SetBreakpoint   struct{ Breakpoint Descriptor }
	UnsetBreakpoint struct{ Breakpoint Descriptor }

	// FrameLimit suspends a running core as if the frame cap had been hit.
	FrameLimit struct{}
	// FrameUnlimit ends a frame-limited pause. Ignored in any other state.
	FrameUnlimit struct{}

	ButtonPressed  struct{ Button core.Button }
	ButtonReleased struct{ Button core.Button }

	// loadROM is sent by Runner.Replace.
	loadROM struct{}
)

func (Exit) command()            {}
func (Pause) command()           {}
func (Resume) command()          {}
func (Step) command()            {}
func (SetBreakpoint) command()   {}
func (UnsetBreakpoint) command() {}
func (FrameLimit) command()      {}
func (FrameUnlimit) command()    {}
func (ButtonPressed) command()   {}
func (ButtonReleased) command()  {}
func (loadROM) command()         {}
