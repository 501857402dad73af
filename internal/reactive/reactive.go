// Package reactive provides the small set of observable values the form
// descriptors are bound to. Dependencies are explicit: a Ref notifies the
// subscribers registered on it, a Computed re-evaluates its function on every
// read, and nothing is tracked implicitly.
package reactive

import "sync"

// Signal is a value a renderer reads before each paint.
type Signal[T any] interface {
	Get() T
}

// Ref is a mutable observable value. Subscribers are called synchronously by
// Set, after the lock is released, in registration order.
type Ref[T any] struct {
	mu      sync.RWMutex
	value   T
	version uint64
	nextID  int
	subs    []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// NewRef creates a Ref holding v.
func NewRef[T any](v T) *Ref[T] {
	return &Ref[T]{value: v}
}

// Get returns the current value.
func (r *Ref[T]) Get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Version returns the number of Set calls applied so far.
func (r *Ref[T]) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Set replaces the value and notifies subscribers.
func (r *Ref[T]) Set(v T) {
	r.mu.Lock()
	r.value = v
	r.version++
	subs := make([]subscriber[T], len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Subscribe registers fn and returns a function that removes it.
func (r *Ref[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs = append(r.subs, subscriber[T]{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, s := range r.subs {
				if s.id == id {
					r.subs = append(r.subs[:i], r.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Computed derives a value from other state each time it is read.
type Computed[T any] struct {
	fn func() T
}

// NewComputed wraps fn as a Signal.
func NewComputed[T any](fn func() T) Computed[T] {
	return Computed[T]{fn: fn}
}

// Get evaluates the derivation.
func (c Computed[T]) Get() T { return c.fn() }

// Const is a Signal that never changes.
type Const[T any] struct {
	value T
}

// Static wraps a fixed value as a Signal.
func Static[T any](v T) Const[T] { return Const[T]{value: v} }

// Get returns the fixed value.
func (c Const[T]) Get() T { return c.value }
