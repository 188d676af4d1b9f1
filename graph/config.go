package graph

import (
	"errors"
	"fmt"
	"image/color"

	"git.sr.ht/~whereswaldon/rtgraph/render"
	"git.sr.ht/~whereswaldon/rtgraph/source"
)

// ErrInvalidConfig is wrapped by the error New returns for a bad Config.
var ErrInvalidConfig = errors.New("invalid graph config")

var (
	// DefaultBackground is the page color outside rendered patches.
	DefaultBackground = color.RGBA{R: 102, G: 102, B: 102, A: 255}
	// DefaultPatchBackground is the color behind plotted points.
	DefaultPatchBackground = color.RGBA{A: 255}
)

// Config describes a graph. It cannot be changed once the graph is built.
type Config struct {
	// BaseZoomX is the most zoomed-out level, in time units per pixel. It is
	// also the initial zoom and the scale retention is measured in.
	BaseZoomX float64
	// MaxZoomX is the most zoomed-in level, in time units per pixel.
	MaxZoomX float64
	// Width and Height are the size of the graph in pixels.
	Width, Height int
	// WindowsToStore is how many fully zoomed-out screens of history are
	// retained.
	WindowsToStore uint32
	PointStyle     render.PointStyle
	DataSource     source.DataSource
	// Background fills the parts of the graph no patch has been drawn to.
	Background color.RGBA
	// PatchBackground fills rendered patches behind their points.
	PatchBackground color.RGBA
}

// DefaultConfig returns an 800x200 graph with no data.
func DefaultConfig() Config {
	return Config{
		BaseZoomX:       1000,
		MaxZoomX:        1,
		Width:           800,
		Height:          200,
		WindowsToStore:  100,
		PointStyle:      render.Point,
		DataSource:      source.Null{},
		Background:      DefaultBackground,
		PatchBackground: DefaultPatchBackground,
	}
}

func (c Config) validate() error {
	switch {
	case c.DataSource == nil:
		return fmt.Errorf("%w: no data source", ErrInvalidConfig)
	case c.Width < 1 || c.Height < 1:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	case !(c.MaxZoomX > 0):
		return fmt.Errorf("%w: max zoom %v must be positive", ErrInvalidConfig, c.MaxZoomX)
	case !(c.BaseZoomX >= c.MaxZoomX):
		return fmt.Errorf("%w: base zoom %v is below max zoom %v", ErrInvalidConfig, c.BaseZoomX, c.MaxZoomX)
	case c.WindowsToStore < 1:
		return fmt.Errorf("%w: windows to store must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// retention is the span of time kept behind the latest point.
func (c Config) retention() uint64 {
	return uint64(c.WindowsToStore) * uint64(float64(c.Width)*c.BaseZoomX)
}
