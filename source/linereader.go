package source

import (
	"bufio"
	"io"
)

// lineReader is a specialized reader that ensures only entire newline-delimited lines are
// read at a time. This is useful when attempting to parse a file that is being actively
// written to as a CSV, as you don't actually attempt to parse any partial lines.
type lineReader struct {
	r *bufio.Reader
	// partial is an unterminated line seen before the last error.
	partial []byte
	// ready is the unread rest of a complete line.
	ready []byte
}

var _ io.Reader = (*lineReader)(nil)

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{
		r: bufio.NewReader(r),
	}
}

func (l *lineReader) Read(b []byte) (int, error) {
	if len(l.ready) == 0 {
		data, err := l.r.ReadBytes('\n')
		l.partial = append(l.partial, data...)
		if err != nil {
			return 0, err
		}
		l.ready, l.partial = l.partial, nil
	}
	n := copy(b, l.ready)
	l.ready = l.ready[n:]
	return n, nil
}
