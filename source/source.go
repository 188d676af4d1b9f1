// Package source provides the data sources a graph polls for new points.
package source

import (
	"image/color"

	"git.sr.ht/~whereswaldon/rtgraph/render"
	"git.sr.ht/~whereswaldon/rtgraph/store"
)

// DataSource supplies points to a graph. GetData is called once per frame
// and must not block; sources fed asynchronously buffer internally. Times
// must increase strictly across calls. NumValues is queried once and must
// not change.
type DataSource interface {
	GetData() ([]store.Point, error)
	NumValues() (int, error)
}

// Colorer is implemented by sources that choose their own channel colors.
type Colorer interface {
	Colors() ([]color.RGBA, error)
}

// Colors returns the palette for ds, falling back to render.DefaultPalette
// when ds does not implement Colorer or offers no colors.
func Colors(ds DataSource) (render.Palette, error) {
	c, ok := ds.(Colorer)
	if !ok {
		return render.DefaultPalette, nil
	}
	colors, err := c.Colors()
	if err != nil {
		return nil, err
	}
	if len(colors) == 0 {
		return render.DefaultPalette, nil
	}
	return render.Palette(colors), nil
}

// Null is a source with a single channel that never produces data.
type Null struct{}

var _ DataSource = Null{}

func (Null) GetData() ([]store.Point, error) {
	return nil, nil
}

func (Null) NumValues() (int, error) {
	return 1, nil
}
