package observable

// Value is a cell holding a T that notifies subscribers whenever it is set.
type Value[T any] struct {
	v      T
	signal Signal[T]
}

// New returns a Value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

// Get returns the current value.
func (o *Value[T]) Get() T {
	return o.v
}

// Set stores v and then calls every subscriber with it.
func (o *Value[T]) Set(v T) {
	o.v = v
	o.signal.Raise(v)
}

// Connect registers fn to be called with each new value.
func (o *Value[T]) Connect(fn func(T)) SubscriptionID {
	return o.signal.Connect(fn)
}

// Disconnect removes a subscriber added with Connect.
func (o *Value[T]) Disconnect(id SubscriptionID) {
	o.signal.Disconnect(id)
}

// Split returns a read-only and a write-only handle to the same cell. The
// owner keeps the Writer and hands the Reader to observers.
func (o *Value[T]) Split() (*Reader[T], *Writer[T]) {
	return &Reader[T]{o: o}, &Writer[T]{o: o}
}

// Reader is the observing half of a Value.
type Reader[T any] struct {
	o *Value[T]
}

func (r *Reader[T]) Get() T {
	return r.o.Get()
}

func (r *Reader[T]) Connect(fn func(T)) SubscriptionID {
	return r.o.Connect(fn)
}

func (r *Reader[T]) Disconnect(id SubscriptionID) {
	r.o.Disconnect(id)
}

// Writer is the publishing half of a Value.
type Writer[T any] struct {
	o *Value[T]
}

func (w *Writer[T]) Set(v T) {
	w.o.Set(v)
}
