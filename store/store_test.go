package store

import (
	"errors"
	"slices"
	"testing"
)

func makeTestStore(t *testing.T, valLen uint8, interval uint32, count int) *Store {
	s := New(valLen)
	for i := 1; i <= count; i++ {
		vs := make([]uint16, valLen)
		for ch := range vs {
			vs[ch] = uint16(i*10 + ch)
		}
		if err := s.Ingest([]Point{{T: uint32(i) * interval, Vs: vs}}); err != nil {
			t.Fatalf("ingesting ordered point %d should succeed, got: %v", i, err)
		}
	}
	return s
}

func pointsEqual(a, b []Point) bool {
	return slices.EqualFunc(a, b, func(x, y Point) bool {
		return x.T == y.T && slices.Equal(x.Vs, y.Vs)
	})
}

func TestIngestAndQueryRange(t *testing.T) {
	s := New(1)
	in := []Point{{T: 10, Vs: []uint16{100}}, {T: 20, Vs: []uint16{200}}}
	if err := s.Ingest(in); err != nil {
		t.Fatalf("expected ingest to succeed, got: %v", err)
	}
	out := s.QueryRange(0, 30)
	if !pointsEqual(in, out) {
		t.Errorf("expected %v, got %v", in, out)
	}
	if lt := s.LastT(); lt != 20 {
		t.Errorf("expected last t 20, got %d", lt)
	}
}

func TestIngestRejectsEqualTime(t *testing.T) {
	s := New(1)
	if err := s.Ingest([]Point{{T: 5, Vs: []uint16{1}}}); err != nil {
		t.Fatalf("expected first ingest to succeed, got: %v", err)
	}
	err := s.Ingest([]Point{{T: 5, Vs: []uint16{2}}})
	if !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("expected ErrInvalidOrder, got: %v", err)
	}
	if lt := s.LastT(); lt != 5 {
		t.Errorf("expected last t 5, got %d", lt)
	}
	if n := s.Len(); n != 1 {
		t.Errorf("expected 1 point retained, got %d", n)
	}
	pt, ok := s.QueryPoint(0)
	if !ok || pt.Vs[0] != 1 {
		t.Errorf("expected original point to be untouched, got %v (ok=%v)", pt, ok)
	}
}

func TestIngestRejectsTimeZero(t *testing.T) {
	s := New(1)
	err := s.Ingest([]Point{{T: 0, Vs: []uint16{1}}})
	if !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("expected ErrInvalidOrder for t=0 on an empty store, got: %v", err)
	}
}

func TestIngestPartial(t *testing.T) {
	s := New(1)
	err := s.Ingest([]Point{
		{T: 1, Vs: []uint16{1}},
		{T: 2, Vs: []uint16{2}},
		{T: 2, Vs: []uint16{3}},
		{T: 4, Vs: []uint16{4}},
	})
	if !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("expected ErrInvalidOrder, got: %v", err)
	}
	if n := s.Len(); n != 2 {
		t.Errorf("expected the 2 points before the failure to remain, got %d", n)
	}
	if lt := s.LastT(); lt != 2 {
		t.Errorf("expected last t 2, got %d", lt)
	}
}

func TestIngestChannelMismatch(t *testing.T) {
	s := New(2)
	err := s.Ingest([]Point{{T: 1, Vs: []uint16{1}}})
	if !errors.Is(err, ErrChannelMismatch) {
		t.Errorf("expected ErrChannelMismatch, got: %v", err)
	}
	if lt := s.LastT(); lt != 0 {
		t.Errorf("expected rejected point to leave last t at 0, got %d", lt)
	}
	if n := s.Len(); n != 0 {
		t.Errorf("expected empty store, got %d points", n)
	}
}

func TestQueryRangeOrdered(t *testing.T) {
	s := makeTestStore(t, 3, 7, 50)
	out := s.QueryRange(0, 1000)
	if len(out) != 50 {
		t.Fatalf("expected 50 points, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].T >= out[i].T {
			t.Errorf("expected strictly increasing times, got %d then %d", out[i-1].T, out[i].T)
		}
	}
}

func TestQueryRangeHalfOpen(t *testing.T) {
	s := makeTestStore(t, 1, 10, 5) // 10,20,30,40,50
	type testcase struct {
		name     string
		t0, t1   uint32
		expected []uint32
	}
	for _, tc := range []testcase{
		{name: "all", t0: 0, t1: 100, expected: []uint32{10, 20, 30, 40, 50}},
		{name: "inclusive start", t0: 20, t1: 40, expected: []uint32{20, 30}},
		{name: "exclusive end", t0: 0, t1: 10, expected: nil},
		{name: "between points", t0: 21, t1: 29, expected: nil},
		{name: "inverted", t0: 40, t1: 20, expected: nil},
		{name: "past end", t0: 51, t1: 1000, expected: nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			out := s.QueryRange(tc.t0, tc.t1)
			var times []uint32
			for _, p := range out {
				times = append(times, p.T)
			}
			if !slices.Equal(times, tc.expected) {
				t.Errorf("expected times %v, got %v", tc.expected, times)
			}
		})
	}
}

func TestQueryPoint(t *testing.T) {
	s := New(1)
	if _, ok := s.QueryPoint(0); ok {
		t.Errorf("expected no point in empty store")
	}
	s = makeTestStore(t, 1, 10, 3) // 10,20,30
	type testcase struct {
		name string
		t    uint32
		want uint32
		ok   bool
	}
	for _, tc := range []testcase{
		{name: "before first", t: 0, want: 10, ok: true},
		{name: "exact", t: 20, want: 20, ok: true},
		{name: "between", t: 21, want: 30, ok: true},
		{name: "after last", t: 31, ok: false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, ok := s.QueryPoint(tc.t)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && p.T != tc.want {
				t.Errorf("expected point at %d, got %d", tc.want, p.T)
			}
		})
	}
}

func TestQueryPointFindsEveryIngestedPoint(t *testing.T) {
	const count, interval = 200, 7
	s := makeTestStore(t, 2, interval, count)
	for i := 1; i <= count; i++ {
		want := uint32(i) * interval
		got, ok := s.QueryPoint(want)
		if !ok || got.T != want {
			t.Errorf("expected point at %d, got %d (ok=%v)", want, got.T, ok)
			continue
		}
		if vs := []uint16{uint16(i * 10), uint16(i*10 + 1)}; !slices.Equal(got.Vs, vs) {
			t.Errorf("expected values %v at %d, got %v", vs, want, got.Vs)
		}
	}
}

func TestDiscard(t *testing.T) {
	type testcase struct {
		name         string
		t0, t1       uint32
		expectedLeft []uint32
	}
	for _, tc := range []testcase{
		{name: "prefix", t0: 0, t1: 30, expectedLeft: []uint32{30, 40, 50}},
		{name: "middle", t0: 20, t1: 40, expectedLeft: []uint32{10, 40, 50}},
		{name: "suffix", t0: 40, t1: 1000, expectedLeft: []uint32{10, 20, 30}},
		{name: "nothing", t0: 11, t1: 19, expectedLeft: []uint32{10, 20, 30, 40, 50}},
		{name: "empty interval", t0: 30, t1: 30, expectedLeft: []uint32{10, 20, 30, 40, 50}},
		{name: "everything", t0: 0, t1: 1000, expectedLeft: nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := makeTestStore(t, 2, 10, 5)
			s.Discard(tc.t0, tc.t1)
			if out := s.QueryRange(tc.t0, tc.t1); len(out) != 0 && tc.t0 < tc.t1 {
				t.Errorf("expected discarded range to be empty, got %v", out)
			}
			var times []uint32
			for _, p := range s.QueryRange(0, 1000) {
				times = append(times, p.T)
				if p.Vs[0] != uint16(p.T) || p.Vs[1] != uint16(p.T)+1 {
					t.Errorf("point %d carries wrong values after discard: %v", p.T, p.Vs)
				}
			}
			if !slices.Equal(times, tc.expectedLeft) {
				t.Errorf("expected remaining times %v, got %v", tc.expectedLeft, times)
			}
			if lt := s.LastT(); lt != 50 {
				t.Errorf("expected discard to leave last t at 50, got %d", lt)
			}
		})
	}
}

func TestFirstT(t *testing.T) {
	s := New(1)
	if ft := s.FirstT(); ft != 0 {
		t.Errorf("expected first t of empty store to be 0, got %d", ft)
	}
	s = makeTestStore(t, 1, 10, 5)
	if ft := s.FirstT(); ft != 10 {
		t.Errorf("expected first t 10, got %d", ft)
	}
	s.Discard(0, 25)
	if ft := s.FirstT(); ft != 30 {
		t.Errorf("expected first t 30 after discard, got %d", ft)
	}
	s.Discard(0, 100)
	if ft := s.FirstT(); ft != 0 {
		t.Errorf("expected first t 0 once emptied, got %d", ft)
	}
	if err := s.Ingest([]Point{{T: 60, Vs: []uint16{1}}}); err != nil {
		t.Errorf("expected ingest after discard to succeed, got: %v", err)
	}
	if err := s.Ingest([]Point{{T: 55, Vs: []uint16{1}}}); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("expected ingest behind last t to fail after discard, got: %v", err)
	}
}

func TestQueryDoesNotAlias(t *testing.T) {
	s := makeTestStore(t, 1, 10, 2)
	out := s.QueryRange(0, 100)
	out[0].Vs[0] = 9999
	p, _ := s.QueryPoint(0)
	if p.Vs[0] == 9999 {
		t.Errorf("expected query results not to alias store memory")
	}
}
