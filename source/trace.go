package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"git.sr.ht/~whereswaldon/rtgraph/store"
)

// TraceWriter writes points in the format read by NewCSV.
type TraceWriter struct {
	w      *csv.Writer
	record []string
}

// NewTraceWriter writes the header for channels with the given names.
func NewTraceWriter(w io.Writer, names []string) (*TraceWriter, error) {
	t := &TraceWriter{
		w:      csv.NewWriter(w),
		record: make([]string, len(names)+1),
	}
	header := append([]string{"t"}, names...)
	if err := t.w.Write(header); err != nil {
		return nil, fmt.Errorf("failed writing header: %w", err)
	}
	return t, nil
}

// Write appends one row per point. Points must carry one value per channel.
func (t *TraceWriter) Write(pts []store.Point) error {
	for _, p := range pts {
		if len(p.Vs) != len(t.record)-1 {
			return fmt.Errorf("point at t=%d has %d values, want %d: %w", p.T, len(p.Vs), len(t.record)-1, store.ErrChannelMismatch)
		}
		t.record[0] = strconv.FormatUint(uint64(p.T), 10)
		for i, v := range p.Vs {
			t.record[i+1] = strconv.FormatUint(uint64(v), 10)
		}
		if err := t.w.Write(t.record); err != nil {
			return fmt.Errorf("failed writing row: %w", err)
		}
	}
	return nil
}

// Flush writes any buffered rows to the underlying writer.
func (t *TraceWriter) Flush() error {
	t.w.Flush()
	return t.w.Error()
}
