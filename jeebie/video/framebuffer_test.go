package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/jeebie-runner/jeebie/display"
)

func TestCopyRGBA(t *testing.T) {
	fb := NewFrameBuffer()
	fb.SetPixel(0, 0, DarkGreyColor)
	fb.SetPixel(display.Width-1, display.Height-1, WhiteColor)

	dst := make([]byte, display.FrameSize)
	require.True(t, fb.CopyRGBA(dst))

	assert.Equal(t, []byte{0x4C, 0x4C, 0x4C, 0xFF}, dst[:4])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, dst[len(dst)-4:])
	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, dst[4:8], "untouched pixels stay zero")

	assert.False(t, fb.CopyRGBA(make([]byte, 10)))
}

func TestDrawPattern(t *testing.T) {
	fb := NewFrameBuffer()

	DrawPattern(fb, Checkerboard, 0)
	assert.Equal(t, WhiteColor, fb.GetPixel(0, 0))
	assert.Equal(t, BlackColor, fb.GetPixel(display.TestPatternTileSize, 0))

	DrawPattern(fb, Gradient, 0)
	assert.Equal(t, BlackColor, fb.GetPixel(0, 10))
	assert.Equal(t, WhiteColor, fb.GetPixel(display.Width-1, 10))

	DrawPattern(fb, Stripes, 0)
	first := fb.GetPixel(0, 0)
	DrawPattern(fb, Stripes, 2)
	assert.NotEqual(t, first, fb.GetPixel(0, 0), "stripes move between frames")
}
