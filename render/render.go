// Package render rasterizes a window of stored points into an RGBA patch.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"git.sr.ht/~whereswaldon/rtgraph/store"
)

var (
	// ErrInvariantViolation is returned when a queried point maps outside the
	// patch. It means the querier disagrees with the requested window and is
	// a programming error, never a data condition.
	ErrInvariantViolation = errors.New("render invariant violated")
	// ErrInvalidWindow is returned for empty time or value ranges and empty
	// destination images.
	ErrInvalidWindow = errors.New("invalid render window")
	// ErrEmptyPalette is returned when there are no colors to draw with.
	ErrEmptyPalette = errors.New("empty palette")
)

// Querier is the read side of a store needed for rendering.
type Querier interface {
	QueryRange(t0, t1 uint32) []store.Point
	ValLen() uint8
}

var _ Querier = (*store.Store)(nil)

// Window is the time and value range mapped onto a patch. T1 and V1 are
// exclusive.
type Window struct {
	T0, T1 uint32
	V0, V1 uint16
}

// FullRange returns a window covering [t0,t1) and the full value range.
func FullRange(t0, t1 uint32) Window {
	return Window{T0: t0, T1: t1, V0: 0, V1: math.MaxUint16}
}

// Renderer draws points with a fixed palette, style and background.
type Renderer struct {
	Palette    Palette
	Style      PointStyle
	Background color.RGBA
}

// NewPatch allocates a w by h patch.
func NewPatch(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// Render fills dst with the background and then plots every point of q in
// the window, one mark per channel. Columns are spread evenly over
// [T0,T1) and rows over [V0,V1), with larger values higher up. Values that
// fall outside the value range are not drawn.
func (r Renderer) Render(dst *image.RGBA, q Querier, w Window) error {
	bounds := dst.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 1 || height < 1 {
		return fmt.Errorf("patch of %dx%d pixels: %w", width, height, ErrInvalidWindow)
	}
	if w.T1 <= w.T0 {
		return fmt.Errorf("time range [%d,%d): %w", w.T0, w.T1, ErrInvalidWindow)
	}
	if w.V1 <= w.V0 {
		return fmt.Errorf("value range [%d,%d): %w", w.V0, w.V1, ErrInvalidWindow)
	}
	if len(r.Palette) < 1 {
		return ErrEmptyPalette
	}
	bg := r.Background
	bg.A = 255
	draw.Draw(dst, bounds, &image.Uniform{bg}, image.Point{}, draw.Src)

	tSpan := float64(w.T1 - w.T0)
	vSpan := float64(w.V1 - w.V0)
	plot := r.Style.plotter()
	for _, p := range q.QueryRange(w.T0, w.T1) {
		x := int(math.Floor(float64(p.T-w.T0) / tSpan * float64(width)))
		if x < 0 || x >= width {
			return fmt.Errorf("point at t=%d maps to x=%d in a %d pixel patch for [%d,%d): %w", p.T, x, width, w.T0, w.T1, ErrInvariantViolation)
		}
		for ch, v := range p.Vs {
			if v < w.V0 {
				continue
			}
			y := int(math.Floor(float64(v-w.V0) / vSpan * float64(height)))
			if y >= height {
				continue
			}
			c := r.Palette.At(ch)
			c.A = 255
			plot(dst, bounds.Min.X+x, bounds.Min.Y+height-y, c)
		}
	}
	return nil
}

// setPixel writes c at (x,y), quietly ignoring coordinates outside the image.
func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if !(image.Point{x, y}).In(img.Rect) {
		return
	}
	o := img.PixOffset(x, y)
	px := img.Pix[o : o+4 : o+4]
	px[0], px[1], px[2], px[3] = c.R, c.G, c.B, c.A
}
