package observable

import (
	"slices"
	"testing"
)

func TestValueGetSet(t *testing.T) {
	o := New(1)
	if v := o.Get(); v != 1 {
		t.Errorf("expected 1, got %d", v)
	}
	o.Set(2)
	if v := o.Get(); v != 2 {
		t.Errorf("expected 2, got %d", v)
	}
}

func TestValueConnectThenSet(t *testing.T) {
	o := New(1)
	var seen []int
	o.Connect(func(v int) {
		seen = append(seen, v)
	})
	o.Set(2)
	o.Set(3)
	if !slices.Equal(seen, []int{2, 3}) {
		t.Errorf("expected subscriber to see [2 3], got %v", seen)
	}
}

func TestValueDisconnect(t *testing.T) {
	o := New(1)
	var seen []int
	id := o.Connect(func(v int) {
		seen = append(seen, v)
	})
	o.Set(2)
	o.Disconnect(id)
	o.Set(3)
	if !slices.Equal(seen, []int{2}) {
		t.Errorf("expected subscriber to see only [2], got %v", seen)
	}
	// Disconnecting twice is harmless.
	o.Disconnect(id)
	o.Disconnect(SubscriptionID(12345))
}

func TestSplitSharesCell(t *testing.T) {
	r, w := New("a").Split()
	var seen []string
	r.Connect(func(v string) {
		seen = append(seen, v)
	})
	w.Set("b")
	if v := r.Get(); v != "b" {
		t.Errorf("expected reader to observe write, got %q", v)
	}
	if !slices.Equal(seen, []string{"b"}) {
		t.Errorf("expected reader subscriber to see [b], got %v", seen)
	}
}

func TestSignalAccumulate(t *testing.T) {
	var s Signal[int]
	sum := 0
	s.Connect(func(v int) {
		sum += v
	})
	for i := 1; i <= 4; i++ {
		s.Raise(i)
	}
	if sum != 10 {
		t.Errorf("expected sum 10, got %d", sum)
	}
}

func TestSignalOrder(t *testing.T) {
	var s Signal[int]
	var order []string
	s.Connect(func(int) { order = append(order, "first") })
	s.Connect(func(int) { order = append(order, "second") })
	s.Connect(func(int) { order = append(order, "third") })
	s.Raise(0)
	expected := []string{"first", "second", "third"}
	if !slices.Equal(order, expected) {
		t.Errorf("expected order %v, got %v", expected, order)
	}
	if n := s.Len(); n != 3 {
		t.Errorf("expected 3 subscribers, got %d", n)
	}
}

func TestSignalDisconnectDuringDispatch(t *testing.T) {
	var s Signal[int]
	var second SubscriptionID
	calledSecond := false
	s.Connect(func(int) { s.Disconnect(second) })
	second = s.Connect(func(int) { calledSecond = true })
	s.Raise(0)
	if calledSecond {
		t.Errorf("expected subscriber disconnected mid-dispatch not to be called")
	}
	if n := s.Len(); n != 1 {
		t.Errorf("expected 1 subscriber left, got %d", n)
	}
}

func TestSignalNestedRaise(t *testing.T) {
	var s Signal[int]
	var seen []int
	s.Connect(func(v int) {
		seen = append(seen, v)
		if v < 3 {
			s.Raise(v + 1)
		}
	})
	s.Raise(0)
	if !slices.Equal(seen, []int{0, 1, 2, 3}) {
		t.Errorf("expected nested raises delivered in order, got %v", seen)
	}
}

func TestSignalRunawayRaiseTerminates(t *testing.T) {
	var s Signal[int]
	calls := 0
	s.Connect(func(v int) {
		calls++
		s.Raise(v + 1)
	})
	s.Raise(0)
	if calls != maxNestedRaises+1 {
		t.Errorf("expected %d calls, got %d", maxNestedRaises+1, calls)
	}
	// The signal is usable again afterwards.
	calls = 0
	s.Raise(0)
	if calls != maxNestedRaises+1 {
		t.Errorf("expected signal to recover, got %d calls", calls)
	}
}
