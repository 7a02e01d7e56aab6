package render

import "github.com/valerio/jeebie-runner/jeebie/display"

// Shade levels, darkest first.
const (
	ShadeBlack = iota
	ShadeDarkGrey
	ShadeLightGrey
	ShadeWhite
)

// PixelToShade maps an RGBA pixel to one of the four shades by its red
// channel, the palette being grey.
func PixelToShade(r uint8) int {
	switch {
	case r >= 0xCC:
		return ShadeWhite
	case r >= 0x72:
		return ShadeLightGrey
	case r >= 0x26:
		return ShadeDarkGrey
	default:
		return ShadeBlack
	}
}

// ShadeAt returns the shade of pixel (x, y) in an RGBA frame. Rows past the
// bottom read as white.
func ShadeAt(frame []byte, x, y int) int {
	if y >= display.Height {
		return ShadeWhite
	}
	return PixelToShade(frame[(y*display.Width+x)*display.RGBABytesPerPixel])
}

// GetHalfBlockChar returns the character for a cell holding two vertically
// stacked pixels. The foreground color draws the top pixel unless only the
// bottom one is dark.
func GetHalfBlockChar(topShade, bottomShade int) rune {
	switch {
	case topShade == bottomShade:
		return '█'
	case topShade == ShadeWhite:
		return '▄'
	default:
		return '▀'
	}
}

// FrameToHalfBlocks converts an RGBA frame to half-block text, one string
// per pair of pixel rows.
func FrameToHalfBlocks(frame []byte) []string {
	if len(frame) != display.FrameSize {
		return nil
	}

	lines := make([]string, (display.Height+1)/2)
	for row := range lines {
		line := make([]rune, display.Width)
		for x := range line {
			line[x] = GetHalfBlockChar(ShadeAt(frame, x, row*2), ShadeAt(frame, x, row*2+1))
		}
		lines[row] = string(line)
	}
	return lines
}
