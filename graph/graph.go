// Package graph drives a scrolling real-time graph: it polls a data source
// every tick, keeps a bounded history, and incrementally renders new data
// into a backing surface.
package graph

import (
	"errors"
	"fmt"
	"image"
	"log"
	"math"

	"git.sr.ht/~whereswaldon/rtgraph/observable"
	"git.sr.ht/~whereswaldon/rtgraph/render"
	"git.sr.ht/~whereswaldon/rtgraph/source"
	"git.sr.ht/~whereswaldon/rtgraph/store"
	"golang.org/x/exp/constraints"
)

// pointAtMaxPixels is how far, in pixels, PointAt will look past the
// requested position for a point.
const pointAtMaxPixels = 10

// Graph owns a store, a view and the surfaces the view is drawn into. It
// must be used from a single goroutine.
type Graph struct {
	cfg      Config
	store    *store.Store
	renderer render.Renderer
	sink     Sink
	// backing holds the current frame. temp is the second buffer used to
	// shift the frame left while following.
	backing, temp Surface
	// patch is scratch space for rendering, as large as the whole graph.
	patch *image.RGBA

	view       View
	viewReader *observable.Reader[View]
	viewWriter *observable.Writer[View]
}

// New builds a graph from cfg, presenting frames to sink. A nil sink uses an
// ImageSink.
func New(cfg Config, sink Sink) (*Graph, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	n, err := cfg.DataSource.NumValues()
	if err != nil {
		return nil, fmt.Errorf("failed querying channel count: %w", err)
	}
	if n < 1 || n > math.MaxUint8 {
		return nil, fmt.Errorf("%w: data source has %d channels", ErrInvalidConfig, n)
	}
	palette, err := source.Colors(cfg.DataSource)
	if err != nil {
		return nil, fmt.Errorf("failed querying colors: %w", err)
	}
	if sink == nil {
		sink = &ImageSink{}
	}
	g := &Graph{
		cfg:   cfg,
		store: store.New(uint8(n)),
		renderer: render.Renderer{
			Palette:    palette,
			Style:      cfg.PointStyle,
			Background: cfg.PatchBackground,
		},
		sink:  sink,
		patch: render.NewPatch(cfg.Width, cfg.Height),
		view: View{
			ZoomX: cfg.BaseZoomX,
			Mode:  Following,
		},
	}
	g.backing = sink.NewSurface(cfg.Width, cfg.Height)
	g.temp = sink.NewSurface(cfg.Width, cfg.Height)
	g.backing.Fill(g.backing.Bounds(), cfg.Background)
	g.temp.Fill(g.temp.Bounds(), cfg.Background)
	g.viewReader, g.viewWriter = observable.New(g.view).Split()
	sink.Present(g.backing)
	return g, nil
}

// Tick ingests whatever the data source has produced, drops history older
// than the retention window and draws any new data.
//
// Points the store rejects as out of order are logged and the tick carries
// on with the points accepted before them; the error is still returned.
// Any other data source or store error ends the tick immediately.
func (g *Graph) Tick() error {
	prevLast := g.store.LastT()
	pts, err := g.cfg.DataSource.GetData()
	if err != nil {
		return fmt.Errorf("failed getting data: %w", err)
	}
	var orderErr error
	if err := g.store.Ingest(pts); err != nil {
		if !errors.Is(err, store.ErrInvalidOrder) {
			return err
		}
		log.Printf("dropping rest of batch: %v", err)
		orderErr = err
	}

	latest := g.store.LastT()
	if keep := g.cfg.retention(); uint64(latest) > keep {
		g.store.Discard(0, uint32(uint64(latest)-keep))
	}
	g.view.MinT = g.store.FirstT()
	g.view.MaxT = latest
	g.publish()

	if latest == prevLast {
		return orderErr
	}
	if g.view.Mode == Scrolled && g.view.LastDrawnX >= g.cfg.Width {
		return orderErr
	}
	zoom := g.view.ZoomX
	patchWidth := min(floor(float64(latest-g.view.LastDrawnT)/zoom), float64(g.cfg.Width))
	if patchWidth < 1 {
		return orderErr
	}
	pw := int(patchWidth)
	newT := g.view.LastDrawnT + uint32(patchWidth*zoom)
	if newT <= g.view.LastDrawnT {
		return orderErr
	}
	offset := g.view.LastDrawnX
	if g.view.Mode == Following {
		offset = g.cfg.Width - pw
		g.temp.Blit(image.Point{}, g.backing.Image(), image.Rect(pw, 0, g.cfg.Width, g.cfg.Height))
		g.backing, g.temp = g.temp, g.backing
	}
	// In scrolled mode a patch running past the right edge is clipped by
	// the surface and the clipped data is not drawn later.
	if err := g.drawPatch(offset, pw, g.view.LastDrawnT, newT); err != nil {
		return err
	}
	g.view.LastDrawnT = newT
	g.view.LastDrawnX = min(offset+pw, g.cfg.Width)
	g.publish()
	g.sink.Present(g.backing)
	return orderErr
}

// drawPatch renders [t0,t1) into a width pixel wide patch at x.
func (g *Graph) drawPatch(x, width int, t0, t1 uint32) error {
	patch := g.patch.SubImage(image.Rect(0, 0, width, g.cfg.Height)).(*image.RGBA)
	if err := g.renderer.Render(patch, g.store, render.FullRange(t0, t1)); err != nil {
		return fmt.Errorf("failed rendering [%d,%d) at x=%d: %w", t0, t1, x, err)
	}
	g.backing.Blit(image.Pt(x, 0), patch, patch.Bounds())
	return nil
}

// redraw renders the whole visible window from scratch.
func (g *Graph) redraw() error {
	g.backing.Fill(g.backing.Bounds(), g.cfg.Background)
	zoom := g.view.ZoomX
	t1 := g.view.LastDrawnT
	t0 := uint32(max(0, float64(t1)-float64(g.cfg.Width)*zoom))
	pw := int(min(floor(float64(t1-t0)/zoom), float64(g.cfg.Width)))
	x := 0
	if g.view.Mode == Following {
		x = g.cfg.Width - pw
	}
	if pw > 0 {
		if err := g.drawPatch(x, pw, t0, t1); err != nil {
			return err
		}
	}
	// With nothing drawn this leaves a scrolled view open at the left edge
	// so later ticks fill it.
	g.view.LastDrawnX = x + pw
	g.publish()
	g.sink.Present(g.backing)
	return nil
}

// SetZoomX changes the zoom, clamped to the configured range, and redraws.
func (g *Graph) SetZoomX(zoom float64) error {
	if math.IsNaN(zoom) {
		return nil
	}
	g.view.ZoomX = clamp(zoom, g.cfg.MaxZoomX, g.cfg.BaseZoomX)
	g.publish()
	return g.redraw()
}

// SetFollow jumps to the newest data and keeps following it.
func (g *Graph) SetFollow() error {
	g.view.Mode = Following
	g.view.LastDrawnT = g.store.LastT()
	g.publish()
	return g.redraw()
}

// Scroll shows the window starting at time v. Scrolling to within a pixel
// of the newest data resumes following.
func (g *Graph) Scroll(v float64) error {
	if !(v > 0) {
		v = 0
	}
	zoom := g.view.ZoomX
	span := float64(g.cfg.Width) * zoom
	last := float64(g.store.LastT())
	newT := floor(min(v+span, last)/zoom) * zoom
	if v+span >= last-zoom {
		g.view.Mode = Following
	} else {
		g.view.Mode = Scrolled
	}
	g.view.LastDrawnT = uint32(newT)
	g.view.LastDrawnX = 0
	g.publish()
	return g.redraw()
}

// PointAt returns the point drawn at or just right of pixel column x, if
// there is one within a few pixels.
func (g *Graph) PointAt(x float64) (store.Point, bool) {
	zoom := g.view.ZoomX
	t := float64(g.view.LastDrawnT) + (x-float64(g.view.LastDrawnX))*zoom
	t = clamp(t, 0, float64(g.view.LastDrawnT))
	p, ok := g.store.QueryPoint(uint32(t))
	if !ok || float64(p.T)-t >= zoom*pointAtMaxPixels {
		return store.Point{}, false
	}
	return p, true
}

// ScrollRange describes the scrollable extent in time units: the oldest and
// newest times and the span of one screen.
func (g *Graph) ScrollRange() (lower, upper, page float64) {
	return float64(g.store.FirstT()), float64(g.store.LastT()), float64(g.cfg.Width) * g.view.ZoomX
}

// ScrollValue is the time at the left edge of the graph.
func (g *Graph) ScrollValue() float64 {
	_, upper, page := g.ScrollRange()
	if g.view.Mode == Scrolled {
		upper = float64(g.view.LastDrawnT)
	}
	return max(0, upper-page)
}

func (g *Graph) publish() {
	g.viewWriter.Set(g.view)
}

// View returns the current view.
func (g *Graph) View() View {
	return g.view
}

// ViewObservable notifies subscribers of every view change.
func (g *Graph) ViewObservable() *observable.Reader[View] {
	return g.viewReader
}

func (g *Graph) Width() int { return g.cfg.Width }
func (g *Graph) Height() int { return g.cfg.Height }
func (g *Graph) BaseZoomX() float64 { return g.cfg.BaseZoomX }
func (g *Graph) MaxZoomX() float64 { return g.cfg.MaxZoomX }
func (g *Graph) FirstT() uint32 { return g.store.FirstT() }
func (g *Graph) LastT() uint32 { return g.store.LastT() }
func (g *Graph) Surface() Surface { return g.backing }
func (g *Graph) Palette() render.Palette { return g.renderer.Palette }

func floor[T constraints.Integer | constraints.Float](a T) T {
	return T(math.Floor(float64(a)))
}

func clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
