package video

import "github.com/valerio/jeebie-runner/jeebie/display"

// GBColor is a packed 0xRRGGBBAA pixel.
type GBColor uint32

const (
	WhiteColor     GBColor = 0xFFFFFFFF
	LightGreyColor GBColor = 0x989898FF
	DarkGreyColor  GBColor = 0x4C4C4CFF
	BlackColor     GBColor = 0x000000FF
)

// Shades lists the four DMG shades from lightest to darkest.
var Shades = [4]GBColor{WhiteColor, LightGreyColor, DarkGreyColor, BlackColor}

type FrameBuffer struct {
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer the size of the LCD.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		buffer: make([]uint32, display.Width*display.Height),
	}
}

func (fb *FrameBuffer) GetPixel(x, y int) GBColor {
	return GBColor(fb.buffer[y*display.Width+x])
}

func (fb *FrameBuffer) SetPixel(x, y int, color GBColor) {
	fb.buffer[y*display.Width+x] = uint32(color)
}

func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// CopyRGBA unpacks the frame into dst as 4 bytes per pixel. dst must be
// display.FrameSize long; returns false otherwise.
func (fb *FrameBuffer) CopyRGBA(dst []byte) bool {
	if len(dst) != display.FrameSize {
		return false
	}
	for i, px := range fb.buffer {
		idx := i * display.RGBABytesPerPixel
		dst[idx] = byte(px >> display.RGBARShift)
		dst[idx+1] = byte(px >> display.RGBAGShift)
		dst[idx+2] = byte(px >> display.RGBABShift)
		dst[idx+3] = byte(px & display.RGBAColorMask)
	}
	return true
}
