package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"git.sr.ht/~whereswaldon/rtgraph/render"
	"git.sr.ht/~whereswaldon/rtgraph/store"
	"github.com/fsnotify/fsnotify"
)

// pointBuffer is how many parsed points may wait for GetData before the
// reader goroutine stops reading.
const pointBuffer = 4096

// CSV is a source reading a trace of the form
//
//	t, name0, name1, ...
//	10, 512, 40000, ...
//
// where t is a uint32 time and every other column is a uint16 channel value.
// The header is read by NewCSV; rows are parsed in the background and handed
// out by GetData. If the underlying reader is a file, reaching its end waits
// for the file to grow instead of ending the stream.
type CSV struct {
	names   []string
	points  chan store.Point
	in      io.Reader
	csv     *csv.Reader
	watcher *fsnotify.Watcher
	done    chan struct{}
	close   sync.Once

	errLock sync.Mutex
	err     error
	// reported is set once err has been returned by GetData.
	reported bool
}

var (
	_ DataSource = (*CSV)(nil)
	_ Colorer    = (*CSV)(nil)
)

// NewCSV reads the header from r and starts parsing rows in the background.
// It blocks until the header is available.
func NewCSV(r io.Reader) (*CSV, error) {
	c := &CSV{
		points: make(chan store.Point, pointBuffer),
		in:     r,
		done:   make(chan struct{}),
	}
	if f, ok := r.(interface{ Name() string }); ok {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed creating file watcher: %w", err)
		}
		if err := watcher.Add(f.Name()); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed watching %q: %w", f.Name(), err)
		}
		c.watcher = watcher
	}
	c.csv = csv.NewReader(newLineReader(r))
	c.csv.TrimLeadingSpace = true
	c.csv.FieldsPerRecord = -1
	c.csv.ReuseRecord = true

	headings, err := c.read()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed reading CSV header: %w", err)
	}
	if len(headings) < 2 {
		c.Close()
		return nil, fmt.Errorf("CSV header %q has no value columns", headings)
	}
	if len(headings)-1 > 255 {
		c.Close()
		return nil, fmt.Errorf("CSV header has %d value columns, at most 255 are supported", len(headings)-1)
	}
	for _, h := range headings[1:] {
		c.names = append(c.names, strings.TrimSpace(h))
	}
	go c.readRows()
	return c, nil
}

// read returns the next record, waiting for writes to a watched file when
// it runs out of data.
func (c *CSV) read() ([]string, error) {
	for {
		rec, err := c.csv.Read()
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, io.EOF) || c.watcher == nil {
			return nil, err
		}
		if !c.waitForWrite() {
			return nil, io.EOF
		}
	}
}

// waitForWrite blocks until the watched file is written to. It returns false
// if the source was closed.
func (c *CSV) waitForWrite() bool {
	for {
		select {
		case <-c.done:
			return false
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return false
			}
			if ev.Has(fsnotify.Write) {
				return true
			}
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return false
			}
			log.Printf("file watcher error: %v", err)
		}
	}
}

// readRows continuously parses the CSV data and sends it on the points
// channel.
func (c *CSV) readRows() {
	defer close(c.points)
	var lastT uint32
	haveLast := false
	for {
		rec, err := c.read()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				select {
				case <-c.done:
				default:
					c.setErr(fmt.Errorf("could not read CSV data: %w", err))
				}
			}
			return
		}
		p, err := c.parseRow(rec)
		if err != nil {
			log.Printf("skipping CSV row %q: %v", rec, err)
			continue
		}
		if haveLast && p.T <= lastT {
			log.Printf("skipping CSV row at t=%d: not after t=%d", p.T, lastT)
			continue
		}
		lastT, haveLast = p.T, true
		select {
		case c.points <- p:
		case <-c.done:
			return
		}
	}
}

func (c *CSV) parseRow(rec []string) (store.Point, error) {
	if len(rec) != len(c.names)+1 {
		return store.Point{}, fmt.Errorf("expected %d fields, got %d", len(c.names)+1, len(rec))
	}
	t, err := strconv.ParseUint(strings.TrimSpace(rec[0]), 10, 32)
	if err != nil {
		return store.Point{}, fmt.Errorf("failed parsing timestamp: %w", err)
	}
	p := store.Point{T: uint32(t), Vs: make([]uint16, len(c.names))}
	for i, field := range rec[1:] {
		v, err := strconv.ParseUint(strings.TrimSpace(field), 10, 16)
		if err != nil {
			return store.Point{}, fmt.Errorf("failed parsing %s: %w", c.names[i], err)
		}
		p.Vs[i] = uint16(v)
	}
	return p, nil
}

func (c *CSV) setErr(err error) {
	c.errLock.Lock()
	defer c.errLock.Unlock()
	c.err = err
}

// GetData returns every point parsed since the last call. Once the stream
// has ended because of a read error, that error is returned exactly once.
func (c *CSV) GetData() ([]store.Point, error) {
	var out []store.Point
	for {
		select {
		case p, ok := <-c.points:
			if !ok {
				return out, c.takeErr()
			}
			out = append(out, p)
		default:
			return out, nil
		}
	}
}

func (c *CSV) takeErr() error {
	c.errLock.Lock()
	defer c.errLock.Unlock()
	if c.reported {
		return nil
	}
	c.reported = c.err != nil
	return c.err
}

// Err returns the error that ended the stream, if any.
func (c *CSV) Err() error {
	c.errLock.Lock()
	defer c.errLock.Unlock()
	return c.err
}

func (c *CSV) NumValues() (int, error) {
	return len(c.names), nil
}

// Names returns the channel names from the header.
func (c *CSV) Names() []string {
	return c.names
}

// Colors uses the default palette for up to three channels and spreads hues
// evenly for more.
func (c *CSV) Colors() ([]color.RGBA, error) {
	if len(c.names) <= len(render.DefaultPalette) {
		return render.DefaultPalette, nil
	}
	return render.SpreadPalette(len(c.names)), nil
}

// Close stops the background reader and closes the underlying reader if it
// is an io.Closer.
func (c *CSV) Close() error {
	var err error
	c.close.Do(func() {
		close(c.done)
		if c.watcher != nil {
			err = c.watcher.Close()
		}
		if closer, ok := c.in.(io.Closer); ok {
			err = errors.Join(err, closer.Close())
		}
	})
	return err
}
