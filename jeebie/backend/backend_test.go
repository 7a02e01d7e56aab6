package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/jeebie-runner/jeebie/backend"
	"github.com/valerio/jeebie-runner/jeebie/core"
	"github.com/valerio/jeebie-runner/jeebie/runner"
)

func TestParseBreakpoint(t *testing.T) {
	tests := []struct {
		input string
		want  runner.Descriptor
	}{
		{"pc 0150", runner.ProgramCounterAt{Address: 0x0150}},
		{"PC $0150", runner.ProgramCounterAt{Address: 0x0150}},
		{"exec 0x8000", runner.ProgramCounterAt{Address: 0x8000}},
		{"c000", runner.ProgramCounterAt{Address: 0xC000}},
		{"write $ff40", runner.MemoryWriteAt{Address: 0xFF40}},
		{"  w   FF47 ", runner.MemoryWriteAt{Address: 0xFF47}},
		{"reg a", runner.RegisterEvent{Register: core.RegA}},
		{"r L", runner.RegisterEvent{Register: core.RegL}},
		{"flag z", runner.FlagEvent{Flag: core.FlagZ}},
		{"f c", runner.FlagEvent{Flag: core.FlagC}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := backend.ParseBreakpoint(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Trigger().Valid())
		})
	}
}

func TestParseBreakpointErrors(t *testing.T) {
	inputs := []string{
		"",
		"pc",
		"pc 10000",
		"pc zz",
		"write $",
		"reg q",
		"flag x",
		"jump 0150",
		"pc 0150 extra",
	}

	for _, input := range inputs {
		_, err := backend.ParseBreakpoint(input)
		assert.ErrorIs(t, err, backend.ErrInvalidBreakpoint, input)
	}
}
