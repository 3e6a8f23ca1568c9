// Package loading tracks outstanding requests for the global busy indicator.
package loading

import "sync"

// Tracker counts pending operations. The indicator is on while the count is above zero.
type Tracker struct {
	mu       sync.Mutex
	pending  int
	onChange func(loading bool, pending int)
}

// NewTracker creates a tracker. onChange may be nil; it is called whenever the
// loading state flips, outside the lock.
func NewTracker(onChange func(loading bool, pending int)) *Tracker {
	return &Tracker{onChange: onChange}
}

// Start registers one pending operation
func (t *Tracker) Start() {
	t.update(func(n int) int { return n + 1 })
}

// Stop settles one pending operation. The count never goes below zero.
func (t *Tracker) Stop() {
	t.update(func(n int) int {
		if n <= 0 {
			return 0
		}
		return n - 1
	})
}

// Reset clears all pending operations
func (t *Tracker) Reset() {
	t.update(func(int) int { return 0 })
}

// SetLoading is a manual toggle: on behaves as Start, off as Stop.
func (t *Tracker) SetLoading(on bool) {
	if on {
		t.Start()
		return
	}
	t.Stop()
}

// Pending returns the number of outstanding operations
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// IsLoading reports whether anything is pending
func (t *Tracker) IsLoading() bool {
	return t.Pending() > 0
}

func (t *Tracker) update(fn func(int) int) {
	t.mu.Lock()
	before := t.pending > 0
	t.pending = fn(t.pending)
	after := t.pending > 0
	pending := t.pending
	cb := t.onChange
	t.mu.Unlock()

	if cb != nil && before != after {
		cb(after, pending)
	}
}
