package runner

import "fmt"

// Status is the runner state published to observers.
type Status int

const (
	// Fresh is the state of a session that has not started running yet.
	Fresh Status = iota
	Running
	Stopped
	// Stepping retires a bounded number of instructions, then stops.
	Stepping
	// Break means a breakpoint matched. The runner waits for a command.
	Break
	// FrameLimited means the frame cap was hit and stepping is suspended
	// until the governor wake fires.
	FrameLimited
	// LoadingRom asks the owner to discard this runner for a new one.
	LoadingRom
)

var statusNames = [...]string{"Fresh", "Running", "Stopped", "Stepping", "Break", "FrameLimited", "LoadingRom"}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// idle states block on the command channel instead of stepping the core.
func (s Status) idle() bool {
	return s == Stopped || s == Break || s == FrameLimited
}

// active states step the core every iteration.
func (s Status) active() bool {
	return s == Running || s == Stepping
}
