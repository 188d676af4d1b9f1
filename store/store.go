// Package store holds the retained history of a real-time graph: an ordered
// series of timestamped, multi-channel samples.
package store

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var (
	// ErrInvalidOrder is returned by Ingest when a point's time is not
	// strictly greater than the latest time ever ingested.
	ErrInvalidOrder = errors.New("point time not after last ingested time")
	// ErrChannelMismatch is returned by Ingest when a point carries a
	// different number of values than the store was created with. It
	// indicates a broken data source and should be treated as fatal.
	ErrChannelMismatch = errors.New("point value count does not match store channel count")
)

// Point is a single sample: a time and one value per channel.
type Point struct {
	T  uint32
	Vs []uint16
}

// Store is an ordered collection of points keyed by time. Points are held in
// parallel slices sorted by time, so queries are binary searches and ingest
// is an append.
//
// A Store is not safe for concurrent use.
type Store struct {
	lastT  uint32
	valLen uint8
	times  []uint32
	// values holds valLen entries per point, in the same order as times.
	values []uint16
}

// New returns an empty store whose points all carry valLen values.
func New(valLen uint8) *Store {
	return &Store{valLen: valLen}
}

// Ingest appends points in order. Each point must be strictly later than the
// last time ever ingested. On the first offending point Ingest stops and
// returns an error wrapping ErrInvalidOrder or ErrChannelMismatch; points
// accepted earlier in the same call remain in the store.
func (s *Store) Ingest(ps []Point) error {
	for i, p := range ps {
		if p.T <= s.lastT {
			return fmt.Errorf("failed ingesting point %d (t=%d, last t=%d): %w", i, p.T, s.lastT, ErrInvalidOrder)
		}
		if len(p.Vs) != int(s.valLen) {
			return fmt.Errorf("failed ingesting point %d (t=%d): got %d values, want %d: %w", i, p.T, len(p.Vs), s.valLen, ErrChannelMismatch)
		}
		s.lastT = p.T
		s.times = append(s.times, p.T)
		s.values = append(s.values, p.Vs...)
	}
	return nil
}

// index returns the index of the first retained point with time >= t.
func (s *Store) index(t uint32) int {
	return sort.Search(len(s.times), func(i int) bool {
		return s.times[i] >= t
	})
}

// Discard removes every point in the half-open interval [t0,t1).
func (s *Store) Discard(t0, t1 uint32) {
	if t1 <= t0 {
		return
	}
	i, j := s.index(t0), s.index(t1)
	if i >= j {
		return
	}
	vl := int(s.valLen)
	if i == 0 {
		// Dropping the oldest points is the common case; reslicing avoids
		// shifting the whole history.
		s.times = s.times[j:]
		s.values = s.values[j*vl:]
		return
	}
	s.times = slices.Delete(s.times, i, j)
	s.values = slices.Delete(s.values, i*vl, j*vl)
}

func (s *Store) point(i int) Point {
	vl := int(s.valLen)
	return Point{
		T:  s.times[i],
		Vs: slices.Clone(s.values[i*vl : (i+1)*vl]),
	}
}

// QueryRange returns the points in [t0,t1) in ascending time order. The
// returned points do not share memory with the store.
func (s *Store) QueryRange(t0, t1 uint32) []Point {
	if t1 <= t0 {
		return nil
	}
	i, j := s.index(t0), s.index(t1)
	if i >= j {
		return nil
	}
	out := make([]Point, 0, j-i)
	for k := i; k < j; k++ {
		out = append(out, s.point(k))
	}
	return out
}

// QueryPoint returns the first point with time >= t.
func (s *Store) QueryPoint(t uint32) (Point, bool) {
	i := s.index(t)
	if i == len(s.times) {
		return Point{}, false
	}
	return s.point(i), true
}

// LastT returns the highest time ever ingested. It is not affected by
// Discard.
func (s *Store) LastT() uint32 {
	return s.lastT
}

// FirstT returns the time of the earliest retained point, or zero if the
// store is empty. Callers that need to tell the two apart should check Len.
func (s *Store) FirstT() uint32 {
	if len(s.times) == 0 {
		return 0
	}
	return s.times[0]
}

// ValLen returns the number of values carried by every point.
func (s *Store) ValLen() uint8 {
	return s.valLen
}

// Len returns the number of retained points.
func (s *Store) Len() int {
	return len(s.times)
}
