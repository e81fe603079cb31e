package adapter

import (
	"sync"
	"time"
)

// CallBudget is a rolling call counter with a reset window.
//
// Design decision: The counter is adapter-scoped shared mutable state, not a
// global registry. Each adapter receives its own budget at construction, so
// the only mutation discipline needed is that increment-and-check is atomic
// per adapter; there is no cross-adapter contention.
type CallBudget struct {
	mu sync.Mutex

	// maxCalls is the number of invocations allowed per window.
	maxCalls int

	// window is how long a counting period lasts.
	window time.Duration

	// calls is the number of invocations in the current window.
	calls int

	// resetAt is when the current window ends.
	resetAt time.Time

	// now is injectable for tests.
	now func() time.Time
}

// NewCallBudget creates a budget allowing maxCalls per window.
// A maxCalls of 0 or less means unlimited.
func NewCallBudget(maxCalls int, window time.Duration) *CallBudget {
	b := &CallBudget{
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
	}
	b.resetAt = b.now().Add(window)
	return b
}

// Allow atomically increments the counter and reports whether the call is
// within budget. When the window has elapsed, the counter resets first.
func (b *CallBudget) Allow() bool {
	if b.maxCalls <= 0 {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.now().After(b.resetAt) {
		b.calls = 0
		b.resetAt = b.now().Add(b.window)
	}
	if b.calls >= b.maxCalls {
		return false
	}
	b.calls++
	return true
}

// Remaining returns the calls left in the current window.
func (b *CallBudget) Remaining() int {
	if b.maxCalls <= 0 {
		return -1
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.now().After(b.resetAt) {
		return b.maxCalls
	}
	return b.maxCalls - b.calls
}
