package backend

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/valerio/jeebie-runner/jeebie/core"
	"github.com/valerio/jeebie-runner/jeebie/runner"
)

// Observer is a foreground surface for a runner. Observers are responsible
// for:
// - Draining frames from the shared state when a repaint is signalled
// - Reading debug snapshots
// - Translating their own input into runner commands
//
// Run returns when the session should end. Observers send Exit themselves
// when they decide to quit.
type Observer interface {
	Run(ctx context.Context, state *runner.State, tx *runner.Sender) error
}

// BreakpointTracker is implemented by observers that list active
// breakpoints. The session owner reports breakpoints it installed itself.
type BreakpointTracker interface {
	Track(ds ...runner.Descriptor)
}

// ErrInvalidBreakpoint is returned for breakpoint text that cannot be parsed.
var ErrInvalidBreakpoint = errors.New("invalid breakpoint")

var registerNames = map[string]core.Register{
	"a": core.RegA, "f": core.RegF,
	"b": core.RegB, "c": core.RegC,
	"d": core.RegD, "e": core.RegE,
	"h": core.RegH, "l": core.RegL,
}

var flagNames = map[string]core.Flag{
	"z": core.FlagZ, "n": core.FlagN, "h": core.FlagH, "c": core.FlagC,
}

// ParseBreakpoint turns user text into a breakpoint descriptor. Accepted
// forms are "pc 0150", "write $FF40", "reg a", "flag z" and a bare address,
// which means pc. Addresses are hexadecimal with an optional $ or 0x prefix.
func ParseBreakpoint(text string) (runner.Descriptor, error) {
	fields := strings.Fields(strings.ToLower(text))

	switch len(fields) {
	case 1:
		address, err := parseAddress(fields[0])
		if err != nil {
			return nil, err
		}
		return runner.ProgramCounterAt{Address: address}, nil
	case 2:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBreakpoint, text)
	}

	kind, arg := fields[0], fields[1]
	switch kind {
	case "pc", "exec", "x":
		address, err := parseAddress(arg)
		if err != nil {
			return nil, err
		}
		return runner.ProgramCounterAt{Address: address}, nil

	case "write", "w":
		address, err := parseAddress(arg)
		if err != nil {
			return nil, err
		}
		return runner.MemoryWriteAt{Address: address}, nil

	case "reg", "r":
		r, ok := registerNames[arg]
		if !ok {
			return nil, fmt.Errorf("%w: unknown register %q", ErrInvalidBreakpoint, arg)
		}
		return runner.RegisterEvent{Register: r}, nil

	case "flag", "f":
		f, ok := flagNames[arg]
		if !ok {
			return nil, fmt.Errorf("%w: unknown flag %q", ErrInvalidBreakpoint, arg)
		}
		return runner.FlagEvent{Flag: f}, nil
	}

	return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidBreakpoint, kind)
}

func parseAddress(s string) (uint16, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "$"), "0x")
	if digits == "" {
		return 0, fmt.Errorf("%w: missing address", ErrInvalidBreakpoint)
	}
	v, err := strconv.ParseUint(digits, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: address %q: %v", ErrInvalidBreakpoint, s, err)
	}
	return uint16(v), nil
}
