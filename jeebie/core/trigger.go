package core

import "fmt"

// Register identifies one of the 8-bit CPU registers.
type Register uint8

const (
	RegA Register = iota
	RegF
	RegB
	RegC
	RegD
	RegE
	RegH
	RegL
)

var registerNames = [...]string{"A", "F", "B", "C", "D", "E", "H", "L"}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return fmt.Sprintf("Register(%d)", r)
}

// Flag identifies one of the bits of the F register.
type Flag uint8

const (
	FlagZ Flag = iota
	FlagN
	FlagH
	FlagC
)

var flagNames = [...]string{"Z", "N", "H", "C"}

func (f Flag) String() string {
	if int(f) < len(flagNames) {
		return flagNames[f]
	}
	return fmt.Sprintf("Flag(%d)", f)
}

// Bit returns the index of the flag in the F register.
func (f Flag) Bit() uint8 {
	return 7 - uint8(f)
}

// Mask returns the F register bit for the flag.
func (f Flag) Mask() uint8 {
	return 1 << f.Bit()
}

// TriggerKind selects what a Trigger watches.
type TriggerKind uint8

const (
	TriggerNone TriggerKind = iota
	// TriggerRegister fires when an 8-bit register changes value.
	TriggerRegister
	// TriggerFlag fires when a flag changes state.
	TriggerFlag
	// TriggerMemoryWrite fires when an address is written.
	TriggerMemoryWrite
	// TriggerPC fires when execution reaches an address.
	TriggerPC
)

// Trigger is a core-level break condition. Triggers are comparable and used
// as map keys; only the field selected by Kind is meaningful.
type Trigger struct {
	Kind     TriggerKind
	Register Register
	Flag     Flag
	Address  uint16
}

// Valid reports whether the trigger names a known condition.
func (t Trigger) Valid() bool {
	switch t.Kind {
	case TriggerRegister:
		return int(t.Register) < len(registerNames)
	case TriggerFlag:
		return int(t.Flag) < len(flagNames)
	case TriggerMemoryWrite, TriggerPC:
		return true
	}
	return false
}

func (t Trigger) String() string {
	switch t.Kind {
	case TriggerRegister:
		return "register " + t.Register.String()
	case TriggerFlag:
		return "flag " + t.Flag.String()
	case TriggerMemoryWrite:
		return fmt.Sprintf("write $%04X", t.Address)
	case TriggerPC:
		return fmt.Sprintf("pc $%04X", t.Address)
	}
	return "none"
}

// Triggers is the registry a core consults while stepping. It is not safe
// for concurrent use; the owner of the core serialises access.
type Triggers struct {
	set map[Trigger]struct{}
}

// Set adds t. Returns false if it was already present.
func (ts *Triggers) Set(t Trigger) bool {
	if ts.set == nil {
		ts.set = make(map[Trigger]struct{})
	}
	if _, ok := ts.set[t]; ok {
		return false
	}
	ts.set[t] = struct{}{}
	return true
}

// Unset removes t. Returns false if it was not present.
func (ts *Triggers) Unset(t Trigger) bool {
	if _, ok := ts.set[t]; !ok {
		return false
	}
	delete(ts.set, t)
	return true
}

func (ts *Triggers) Has(t Trigger) bool {
	_, ok := ts.set[t]
	return ok
}

func (ts *Triggers) Len() int {
	return len(ts.set)
}

// MatchPC reports whether a program counter trigger is set for pc.
func (ts *Triggers) MatchPC(pc uint16) bool {
	return ts.Has(Trigger{Kind: TriggerPC, Address: pc})
}

// MatchWrite reports whether a write trigger is set for address.
func (ts *Triggers) MatchWrite(address uint16) bool {
	return ts.Has(Trigger{Kind: TriggerMemoryWrite, Address: address})
}

// MatchRegister reports whether r is watched and changed from before to after.
func (ts *Triggers) MatchRegister(r Register, before, after uint8) bool {
	return before != after && ts.Has(Trigger{Kind: TriggerRegister, Register: r})
}

// MatchFlags reports whether any watched flag differs between two F values.
func (ts *Triggers) MatchFlags(before, after uint8) bool {
	changed := before ^ after
	if changed == 0 {
		return false
	}
	for f := FlagZ; f <= FlagC; f++ {
		if changed&f.Mask() != 0 && ts.Has(Trigger{Kind: TriggerFlag, Flag: f}) {
			return true
		}
	}
	return false
}
