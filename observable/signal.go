// Package observable provides synchronous change notification: a Signal that
// broadcasts values to subscribers and a Value cell that raises its Signal on
// every Set.
//
// Neither type is safe for concurrent use; they are meant to be driven from
// the single goroutine that owns the graph.
package observable

import "log"

// maxNestedRaises bounds how many raises issued from inside subscribers are
// delivered for one outer Raise. Anything beyond it is dropped.
const maxNestedRaises = 32

// SubscriptionID identifies a subscriber for Disconnect.
type SubscriptionID uint64

type subscription[T any] struct {
	id      SubscriptionID
	fn      func(T)
	removed bool
}

// Signal broadcasts values to its subscribers in subscription order.
type Signal[T any] struct {
	subs        []*subscription[T]
	next        SubscriptionID
	dispatching bool
	pending     []T
}

// Connect registers fn and returns an id that can later be passed to
// Disconnect.
func (s *Signal[T]) Connect(fn func(T)) SubscriptionID {
	s.next++
	id := s.next
	s.subs = append(s.subs, &subscription[T]{id: id, fn: fn})
	return id
}

// Disconnect removes the subscriber with the given id. Unknown ids are
// ignored. A subscriber disconnected while a Raise is in progress is not
// called for the rest of that Raise.
func (s *Signal[T]) Disconnect(id SubscriptionID) {
	for i, sub := range s.subs {
		if sub.id == id {
			sub.removed = true
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// Raise calls every subscriber with v. A Raise made by a subscriber while
// another Raise is running is queued and delivered once the current one
// finishes.
func (s *Signal[T]) Raise(v T) {
	if s.dispatching {
		if len(s.pending) >= maxNestedRaises {
			log.Printf("observable: dropping nested raise, %d already queued", len(s.pending))
			return
		}
		s.pending = append(s.pending, v)
		return
	}
	s.dispatching = true
	defer func() {
		s.dispatching = false
		s.pending = s.pending[:0]
	}()
	s.dispatch(v)
	// Queued raises may queue further raises; the cap on pending keeps this
	// loop finite.
	delivered := 0
	for len(s.pending) > 0 && delivered < maxNestedRaises {
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.dispatch(next)
		delivered++
	}
	if len(s.pending) > 0 {
		log.Printf("observable: dropping %d nested raises", len(s.pending))
	}
}

func (s *Signal[T]) dispatch(v T) {
	// Subscribers may connect or disconnect while being called, so iterate
	// over a snapshot.
	subs := append([]*subscription[T](nil), s.subs...)
	for _, sub := range subs {
		if sub.removed {
			continue
		}
		sub.fn(v)
	}
}

// Len returns the number of connected subscribers.
func (s *Signal[T]) Len() int {
	return len(s.subs)
}
