package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"gioui.org/app"
	"gioui.org/op"
	"gioui.org/unit"
	"gioui.org/x/explorer"
	"git.sr.ht/~gioverse/skel/stream"
	"git.sr.ht/~whereswaldon/rtgraph/graph"
	"git.sr.ht/~whereswaldon/rtgraph/render"
	"git.sr.ht/~whereswaldon/rtgraph/source"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `%[1]s: scrolling real-time graph
Usage:

 %[1]s                      # plot generated test data
 %[1]s -trace file.csv      # plot (and follow) a CSV trace
 %[1]s -serial auto         # plot a CSV trace printed by a serial device
 rtgraph-gen | %[1]s -trace /dev/stdin

`, os.Args[0])
	flag.PrintDefaults()
}

// frameInterval is how often a frame, and so a graph tick, is requested.
const frameInterval = time.Second / 60

func main() {
	flag.Usage = usage
	cfg := graph.DefaultConfig()
	flag.IntVar(&cfg.Width, "width", cfg.Width, "Graph width in pixels")
	flag.IntVar(&cfg.Height, "height", cfg.Height, "Graph height in pixels")
	flag.Float64Var(&cfg.BaseZoomX, "base-zoom", cfg.BaseZoomX, "Most zoomed-out level in time units per pixel")
	flag.Float64Var(&cfg.MaxZoomX, "max-zoom", cfg.MaxZoomX, "Most zoomed-in level in time units per pixel")
	windows := flag.Uint("windows", uint(cfg.WindowsToStore), "Number of zoomed-out screens of history to keep")
	style := flag.String("style", cfg.PointStyle.String(), "Point style, one of point or cross")
	tracePath := flag.String("trace", "", "CSV trace file to plot")
	serialPort := flag.String("serial", "", "Serial port printing a CSV trace, or \"auto\"")
	baud := flag.Int("baud", 115200, "Serial baud rate")
	flag.Parse()

	cfg.WindowsToStore = uint32(*windows)
	var err error
	cfg.PointStyle, err = render.ParsePointStyle(*style)
	if err != nil {
		log.Fatalf("bad -style: %v", err)
	}
	switch {
	case *serialPort != "":
		cfg.DataSource, err = source.OpenSerial(*serialPort, *baud)
	case *tracePath != "":
		cfg.DataSource, err = openTrace(*tracePath)
	default:
		cfg.DataSource = source.NewGenerator()
	}
	if err != nil {
		log.Fatalf("failed opening data source: %v", err)
	}

	go func() {
		w := app.NewWindow(
			app.Title("rtgraph"),
			app.Size(unit.Dp(cfg.Width), unit.Dp(cfg.Height+80)),
		)
		if err := loop(w, cfg); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func openTrace(path string) (*source.CSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed opening trace: %w", err)
	}
	return source.NewCSV(f)
}

func loop(w *app.Window, cfg graph.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	expl := explorer.NewExplorer(w)
	ui, err := NewUI(stream.NewController(ctx, w.Invalidate), expl, cfg)
	if err != nil {
		return err
	}
	defer ui.Close()

	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
