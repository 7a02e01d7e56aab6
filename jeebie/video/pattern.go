package video

import "github.com/valerio/jeebie-runner/jeebie/display"

// Pattern selects one of the built-in test patterns.
type Pattern int

const (
	Checkerboard Pattern = iota
	Gradient
	Stripes
	Diagonal
)

func (p Pattern) String() string {
	switch p {
	case Checkerboard:
		return "Checkerboard"
	case Gradient:
		return "Gradient"
	case Stripes:
		return "Stripes"
	case Diagonal:
		return "Diagonal"
	}
	return "Unknown"
}

// DrawPattern fills fb with the given pattern. frame animates the stripes and
// diagonal patterns; the others are static.
func DrawPattern(fb *FrameBuffer, p Pattern, frame int) {
	for y := 0; y < display.Height; y++ {
		for x := 0; x < display.Width; x++ {
			fb.SetPixel(x, y, patternPixel(p, x, y, frame))
		}
	}
}

func patternPixel(p Pattern, x, y, frame int) GBColor {
	switch p {
	case Gradient:
		return Shades[3-x*4/display.Width]
	case Stripes:
		if ((x+frame*display.TestPatternStripeSpeed)/display.TestPatternStripeWidth)%2 == 0 {
			return WhiteColor
		}
		return DarkGreyColor
	case Diagonal:
		if ((x+y+frame*display.TestPatternDiagonalSpeed)/display.TestPatternTileSize)%2 == 0 {
			return LightGreyColor
		}
		return DarkGreyColor
	default:
		if ((x/display.TestPatternTileSize)+(y/display.TestPatternTileSize))%2 == 0 {
			return WhiteColor
		}
		return BlackColor
	}
}
