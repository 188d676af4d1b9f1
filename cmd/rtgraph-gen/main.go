package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"git.sr.ht/~whereswaldon/rtgraph/source"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `%[1]s: write a csv trace of generated sine waves
Usage:

 %[1]s > file

OR

 %[1]s | rtgraph -trace /dev/stdin

`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	dur := flag.Duration("sample-interval", 100*time.Millisecond, "Interval between writing batches of samples")
	points := flag.Int("points", 50, "Samples written per interval")
	step := flag.Uint("step", source.DefaultInterval, "Time units between consecutive samples")
	outputName := flag.String("output", "-", "Output file for CSV trace data")
	flag.Parse()
	if *points < 1 || *step < 1 {
		log.Fatalf("-points and -step must be positive")
	}

	var output io.WriteCloser
	if *outputName == "-" {
		output = os.Stdout
	} else {
		f, err := os.Create(*outputName)
		if err != nil {
			log.Fatalf("failed opening output file %q: %v", *outputName, err)
		}
		output = f
	}

	gen := source.NewGenerator()
	gen.PointsPerCall = *points
	gen.Interval = uint32(*step)
	trace, err := source.NewTraceWriter(output, source.GeneratorNames)
	if err != nil {
		log.Fatalf("failed starting trace: %v", err)
	}

	ticker := time.NewTicker(*dur)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	defer ticker.Stop()
	for {
		select {
		case <-sigChan:
			if err := trace.Flush(); err != nil {
				log.Printf("failed flushing output: %v", err)
			}
			if err := output.Close(); err != nil {
				log.Printf("failed closing output: %v", err)
			}
			return
		case <-ticker.C:
			pts, _ := gen.GetData()
			if err := trace.Write(pts); err != nil {
				log.Fatalf("failed writing samples: %v", err)
			}
			// Flush every batch so a reader tailing the file sees whole rows.
			if err := trace.Flush(); err != nil {
				log.Fatalf("failed flushing output: %v", err)
			}
		}
	}
}
