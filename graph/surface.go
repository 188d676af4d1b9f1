package graph

import (
	"image"
	"image/color"
	"image/draw"
)

// Surface is a pixel buffer owned by a graph.
type Surface interface {
	Bounds() image.Rectangle
	// Fill sets every pixel of r to c.
	Fill(r image.Rectangle, c color.RGBA)
	// Blit copies the sr part of src so that sr.Min lands on dst. Anything
	// outside the surface is dropped.
	Blit(dst image.Point, src image.Image, sr image.Rectangle)
	// Image exposes the surface contents for presentation.
	Image() image.Image
}

// Sink allocates the surfaces a graph draws into and shows them.
type Sink interface {
	NewSurface(w, h int) Surface
	// Present is called whenever s holds a new frame.
	Present(s Surface)
}

// ImageSurface is a Surface backed by an *image.RGBA.
type ImageSurface struct {
	img *image.RGBA
}

var _ Surface = (*ImageSurface)(nil)

func NewImageSurface(w, h int) *ImageSurface {
	return &ImageSurface{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (s *ImageSurface) Bounds() image.Rectangle {
	return s.img.Rect
}

func (s *ImageSurface) Fill(r image.Rectangle, c color.RGBA) {
	draw.Draw(s.img, r.Intersect(s.img.Rect), &image.Uniform{c}, image.Point{}, draw.Src)
}

func (s *ImageSurface) Blit(dst image.Point, src image.Image, sr image.Rectangle) {
	r := sr.Sub(sr.Min).Add(dst)
	clipped := r.Intersect(s.img.Rect)
	if clipped.Empty() {
		return
	}
	draw.Draw(s.img, clipped, src, sr.Min.Add(clipped.Min.Sub(dst)), draw.Src)
}

func (s *ImageSurface) Image() image.Image {
	return s.img
}

// RGBA returns the backing image.
func (s *ImageSurface) RGBA() *image.RGBA {
	return s.img
}

// ImageSink keeps graph frames in memory. Frontends that can display an
// *image.RGBA poll Current.
type ImageSink struct {
	current  *image.RGBA
	presents int
}

var _ Sink = (*ImageSink)(nil)

func (s *ImageSink) NewSurface(w, h int) Surface {
	return NewImageSurface(w, h)
}

func (s *ImageSink) Present(sf Surface) {
	if is, ok := sf.(*ImageSurface); ok {
		s.current = is.img
	} else {
		b := sf.Bounds()
		img := image.NewRGBA(b)
		draw.Draw(img, b, sf.Image(), b.Min, draw.Src)
		s.current = img
	}
	s.presents++
}

// Current returns the most recently presented frame. The graph keeps
// drawing into it, so callers must not hold it across ticks.
func (s *ImageSink) Current() *image.RGBA {
	return s.current
}

// Presents returns how many frames have been presented.
func (s *ImageSink) Presents() int {
	return s.presents
}
