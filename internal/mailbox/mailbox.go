// Package mailbox provides a single-slot buffer where the latest value wins.
// The watch loop posts a report after every cycle and never blocks on a slow
// reader; readers only ever see the most recent report.
package mailbox

import (
	"context"
	"sync"
)

// Mailbox holds at most one pending value. Put overwrites any pending value.
// Take blocks until a value is available or the context ends.
type Mailbox[T any] struct {
	mu     sync.Mutex
	val    *T
	notify chan struct{}
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{notify: make(chan struct{}, 1)}
}

// Put stores v, replacing any pending value. It never blocks.
func (m *Mailbox[T]) Put(v T) {
	m.mu.Lock()
	m.val = &v
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Take blocks until a value is available, then returns it and clears the slot.
// It returns false when ctx is done first.
func (m *Mailbox[T]) Take(ctx context.Context) (T, bool) {
	for {
		if v := m.TryTake(); v != nil {
			return *v, true
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, false
		case <-m.notify:
		}
	}
}

// TryTake returns the pending value, or nil if empty. It never blocks.
func (m *Mailbox[T]) TryTake() *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := m.val
	m.val = nil
	return v
}

// Pending reports whether a value is waiting.
func (m *Mailbox[T]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.val != nil
}
