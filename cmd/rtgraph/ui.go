package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"log"
	"strings"

	"gioui.org/font/gofont"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/rtgraph/graph"
	"git.sr.ht/~whereswaldon/rtgraph/observable"
	"git.sr.ht/~whereswaldon/rtgraph/source"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

func mustIcon(data []byte) *widget.Icon {
	icon, err := widget.NewIcon(data)
	if err != nil {
		panic(err)
	}
	return icon
}

var (
	followIcon  = mustIcon(icons.AVFastForward)
	zoomInIcon  = mustIcon(icons.ActionZoomIn)
	zoomOutIcon = mustIcon(icons.ActionZoomOut)
	openIcon    = mustIcon(icons.FileFolderOpen)
)

// opened is the result of choosing a trace in the file explorer.
type opened struct {
	src *source.CSV
	err error
}

// chooseTrace asks the user for a trace file with choose and reads its
// header. The result is sent once, then the channel is closed.
func chooseTrace(ctx context.Context, choose func() (io.ReadCloser, error)) <-chan opened {
	out := make(chan opened)
	go func() {
		defer close(out)
		var o opened
		if file, err := choose(); err != nil {
			o.err = err
		} else {
			o.src, o.err = source.NewCSV(file)
		}
		select {
		case out <- o:
		case <-ctx.Done():
			if o.src != nil {
				o.src.Close()
			}
		}
	}()
	return out
}

// frames alternates between two copies of the graph's image, so the copy
// held by the current ImageOp is never written while it is on screen.
type frames struct {
	bufs [2]*image.RGBA
	next int
}

func (f *frames) snapshot(src *image.RGBA) *image.RGBA {
	dst := f.bufs[f.next]
	if dst == nil || dst.Bounds() != src.Bounds() {
		dst = image.NewRGBA(src.Bounds())
		f.bufs[f.next] = dst
	}
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	f.next = 1 - f.next
	return dst
}

// UI is responsible for holding the state of and drawing the top-level UI.
type UI struct {
	expl *explorer.Explorer
	ctrl *stream.Controller
	th   *material.Theme

	cfg    graph.Config
	sink   *graph.ImageSink
	graph  *graph.Graph
	viewID observable.SubscriptionID

	imgOp    paint.ImageOp
	frames   frames
	presents int

	followBtn  widget.Clickable
	zoomInBtn  widget.Clickable
	zoomOutBtn widget.Clickable
	openBtn    widget.Clickable
	scroll     widget.Float
	plotTag    int

	openStream *stream.Stream[opened]

	status    string
	selection string
	errText   string
}

func NewUI(ctrl *stream.Controller, expl *explorer.Explorer, cfg graph.Config) (*UI, error) {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	ui := &UI{
		expl: expl,
		ctrl: ctrl,
		th:   th,
	}
	if err := ui.setSource(cfg); err != nil {
		return nil, err
	}
	return ui, nil
}

// setSource replaces the graph with one reading from cfg.DataSource.
func (ui *UI) setSource(cfg graph.Config) error {
	sink := &graph.ImageSink{}
	g, err := graph.New(cfg, sink)
	if err != nil {
		return fmt.Errorf("failed building graph: %w", err)
	}
	ui.Close()
	ui.cfg, ui.sink, ui.graph = cfg, sink, g
	ui.presents = -1
	ui.viewID = g.ViewObservable().Connect(ui.viewChanged)
	ui.viewChanged(g.View())
	ui.selection = ""
	return nil
}

func (ui *UI) viewChanged(v graph.View) {
	ui.status = fmt.Sprintf("%s  %.1f/px  drawn to t=%d  retained [%d, %d]", v.Mode, v.ZoomX, v.LastDrawnT, v.MinT, v.MaxT)
}

// Close releases the current graph's data source.
func (ui *UI) Close() {
	if ui.graph == nil {
		return
	}
	ui.graph.ViewObservable().Disconnect(ui.viewID)
	if c, ok := ui.cfg.DataSource.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("failed closing data source: %v", err)
		}
	}
}

func (ui *UI) openTrace() {
	ui.openStream = stream.New(ui.ctrl, func(ctx context.Context) <-chan opened {
		return chooseTrace(ctx, func() (io.ReadCloser, error) {
			return ui.expl.ChooseFile(".csv")
		})
	})
}

// traceOpened swaps the graph over to a newly chosen trace.
func (ui *UI) traceOpened(o opened) {
	if o.err != nil {
		if o.err != explorer.ErrUserDecline {
			ui.check(fmt.Errorf("failed opening trace: %w", o.err))
		}
		return
	}
	cfg := ui.cfg
	cfg.DataSource = o.src
	if err := ui.setSource(cfg); err != nil {
		ui.check(err)
		o.src.Close()
	}
}

func (ui *UI) check(err error) {
	if err != nil {
		log.Printf("%v", err)
		ui.errText = err.Error()
	}
}

// Update the state of the UI and advance the graph by one frame.
func (ui *UI) Update(gtx C) {
	if ui.openStream == nil && ui.openBtn.Clicked(gtx) {
		ui.openTrace()
	}
	if ui.openStream != nil {
		if o, isNew := ui.openStream.ReadNew(gtx); isNew {
			ui.openStream = nil
			ui.traceOpened(o)
		}
	}
	if err := ui.graph.Tick(); err != nil {
		ui.check(err)
	}
	if ui.followBtn.Clicked(gtx) {
		ui.check(ui.graph.SetFollow())
	}
	if ui.zoomInBtn.Clicked(gtx) {
		ui.check(ui.graph.SetZoomX(ui.graph.View().ZoomX / 2))
	}
	if ui.zoomOutBtn.Clicked(gtx) {
		ui.check(ui.graph.SetZoomX(ui.graph.View().ZoomX * 2))
	}

	lower, upper, page := ui.graph.ScrollRange()
	last := max(lower, upper-page)
	if ui.scroll.Update(gtx) {
		ui.check(ui.graph.Scroll(lower + float64(ui.scroll.Value)*(last-lower)))
	} else if !ui.scroll.Dragging() {
		ui.scroll.Value = 1
		if last > lower {
			ui.scroll.Value = float32((ui.graph.ScrollValue() - lower) / (last - lower))
		}
	}

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: &ui.plotTag,
			Kinds:  pointer.Press,
		})
		if !ok {
			break
		}
		if ev, ok := ev.(pointer.Event); ok {
			ui.selection = ui.describePoint(float64(ev.Position.X))
		}
	}

	if n := ui.sink.Presents(); n != ui.presents {
		ui.presents = n
		ui.imgOp = paint.NewImageOp(ui.frames.snapshot(ui.sink.Current()))
	}
}

func (ui *UI) describePoint(x float64) string {
	p, ok := ui.graph.PointAt(x)
	if !ok {
		return "no point here"
	}
	var names []string
	if c, ok := ui.cfg.DataSource.(*source.CSV); ok {
		names = c.Names()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "t=%d", p.T)
	for i, v := range p.Vs {
		name := fmt.Sprintf("ch%d", i)
		if i < len(names) {
			name = names[i]
		}
		fmt.Fprintf(&b, "  %s=%d", name, v)
	}
	return b.String()
}

func (ui *UI) layoutPlot(gtx C) D {
	size := ui.sink.Current().Bounds().Size()
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	ui.imgOp.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
	event.Op(gtx.Ops, &ui.plotTag)
	return D{Size: size}
}

func (ui *UI) iconButton(btn *widget.Clickable, icon *widget.Icon, description string) layout.FlexChild {
	return layout.Rigid(func(gtx C) D {
		b := material.IconButton(ui.th, btn, icon, description)
		b.Size = unit.Dp(20)
		b.Inset = layout.UniformInset(unit.Dp(6))
		return layout.UniformInset(unit.Dp(2)).Layout(gtx, b.Layout)
	})
}

// Layout the UI into the provided context.
func (ui *UI) Layout(gtx C) D {
	ui.Update(gtx)
	gtx.Execute(op.InvalidateCmd{At: gtx.Now.Add(frameInterval)})
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(ui.layoutPlot),
		layout.Rigid(func(gtx C) D {
			gtx.Constraints.Max.X = ui.graph.Width()
			return material.Slider(ui.th, &ui.scroll).Layout(gtx)
		}),
		layout.Rigid(func(gtx C) D {
			return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
				ui.iconButton(&ui.followBtn, followIcon, "Follow"),
				ui.iconButton(&ui.zoomInBtn, zoomInIcon, "Zoom in"),
				ui.iconButton(&ui.zoomOutBtn, zoomOutIcon, "Zoom out"),
				ui.iconButton(&ui.openBtn, openIcon, "Open trace"),
				layout.Flexed(1, material.Body2(ui.th, ui.status).Layout),
			)
		}),
		layout.Rigid(material.Body2(ui.th, ui.selection).Layout),
		layout.Rigid(func(gtx C) D {
			if ui.errText == "" {
				return D{}
			}
			l := material.Body2(ui.th, ui.errText)
			l.Color = color.NRGBA{R: 150, A: 255}
			return l.Layout(gtx)
		}),
	)
}
