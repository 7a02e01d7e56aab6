package runner

import (
	"fmt"

	"github.com/valerio/jeebie-runner/jeebie/core"
)

// Descriptor is a typed breakpoint condition. Descriptors are comparable, so
// the same condition always maps to the same core trigger.
type Descriptor interface {
	Trigger() core.Trigger
	fmt.Stringer
}

// RegisterEvent breaks when an 8-bit register changes value.
type RegisterEvent struct{ Register core.Register }

// FlagEvent breaks when a flag changes state.
type FlagEvent struct{ Flag core.Flag }

// MemoryWriteAt breaks after a write to Address.
type MemoryWriteAt struct{ Address uint16 }

// ProgramCounterAt breaks when execution reaches Address.
type ProgramCounterAt struct{ Address uint16 }

func (d RegisterEvent) Trigger() core.Trigger {
	return core.Trigger{Kind: core.TriggerRegister, Register: d.Register}
}

func (d FlagEvent) Trigger() core.Trigger {
	return core.Trigger{Kind: core.TriggerFlag, Flag: d.Flag}
}

func (d MemoryWriteAt) Trigger() core.Trigger {
	return core.Trigger{Kind: core.TriggerMemoryWrite, Address: d.Address}
}

func (d ProgramCounterAt) Trigger() core.Trigger {
	return core.Trigger{Kind: core.TriggerPC, Address: d.Address}
}

func (d RegisterEvent) String() string    { return d.Trigger().String() }
func (d FlagEvent) String() string        { return d.Trigger().String() }
func (d MemoryWriteAt) String() string    { return d.Trigger().String() }
func (d ProgramCounterAt) String() string { return d.Trigger().String() }
