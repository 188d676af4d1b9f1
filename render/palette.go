package render

import (
	"image/color"
	"math"
)

// Palette assigns a color to each channel.
type Palette []color.RGBA

// DefaultPalette is used for sources that do not choose their own colors.
var DefaultPalette = Palette{
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
}

// At returns the color for channel ch, cycling when there are more channels
// than colors.
func (p Palette) At(ch int) color.RGBA {
	return p[ch%len(p)]
}

// SpreadPalette returns n colors with hues stepped by the golden ratio so
// that neighbouring channels are easy to tell apart.
func SpreadPalette(n int) Palette {
	out := make(Palette, 0, n)
	for i := 0; i < n; i++ {
		h := math.Mod(float64(i)*math.Phi, 1) * 360
		out = append(out, hsv(h, 0.8, 1))
	}
	return out
}

// hsv converts a hue in degrees and saturation/value in [0,1] to an opaque
// color.
func hsv(h, s, v float64) color.RGBA {
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return color.RGBA{
		R: uint8(math.Round((r + m) * 255)),
		G: uint8(math.Round((g + m) * 255)),
		B: uint8(math.Round((b + m) * 255)),
		A: 255,
	}
}
