package debug_test

import (
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-runner/jeebie/addr"
	"github.com/valerio/jeebie-runner/jeebie/debug"
	"github.com/valerio/jeebie-runner/jeebie/display"
)

type fakeSource struct {
	mem  [addr.MemorySize]uint8
	regs debug.Registers
}

func (f *fakeSource) Read(a uint16) uint8          { return f.mem[a] }
func (f *fakeSource) Registers() debug.Registers { return f.regs }

func TestCapture(t *testing.T) {
	src := &fakeSource{}
	src.regs = debug.Registers{A: 0x01, F: 0xB0, B: 0x02, PC: 0x0150, SP: 0xFFFE}
	src.mem[0x0150] = 0xEA // LD (a16),A
	src.mem[0x0151] = 0x40
	src.mem[0x0152] = 0xFF
	src.mem[addr.LCDC] = 0x91
	src.mem[addr.LY] = 0x90
	src.mem[addr.JOYP] = 0xCF

	snap := debug.Capture(src, false)

	assert.Equal(t, "LD ($FF40),A", snap.Instruction.String())
	assert.Equal(t, uint16(0x0150), snap.Instruction.Address)
	assert.Equal(t, src.regs, snap.Registers)
	assert.Equal(t, uint8(0x91), snap.IO.LCDC)
	assert.Equal(t, uint8(0x90), snap.IO.LY)
	assert.Equal(t, uint8(0xCF), snap.IO.JOYP)
	assert.Nil(t, snap.Memory)
	assert.Contains(t, snap.String(), "0150:")
	assert.Contains(t, snap.Lines()[0], "[Z-HC]")
}

func TestCaptureWithMemoryIsACopy(t *testing.T) {
	src := &fakeSource{}
	src.mem[0xC000] = 0x42

	snap := debug.Capture(src, true)
	require.NotNil(t, snap.Memory)
	assert.Equal(t, uint8(0x42), snap.Memory[0xC000])

	src.mem[0xC000] = 0x00
	assert.Equal(t, uint8(0x42), snap.Memory[0xC000], "later core writes must not leak into a taken snapshot")
}

func TestSaveFramePNGToDir(t *testing.T) {
	dir := t.TempDir()
	frame := make([]byte, display.FrameSize)
	for i := 3; i < len(frame); i += 4 {
		frame[i] = 0xFF
	}

	path, err := debug.SaveFramePNGToDir(frame, "test_frame", dir)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, display.Width, img.Bounds().Dx())
	assert.Equal(t, display.Height, img.Bounds().Dy())

	_, err = debug.SaveFramePNGToDir(frame[:10], "short", dir)
	assert.Error(t, err)
}
