package adapter

import (
	"sync"
	"testing"
	"time"
)

func TestCallBudgetAllow(t *testing.T) {
	t.Parallel()

	t.Run("counts up to the limit", func(t *testing.T) {
		t.Parallel()

		b := NewCallBudget(3, time.Hour)
		for i := 0; i < 3; i++ {
			if !b.Allow() {
				t.Fatalf("call %d should be within budget", i+1)
			}
		}
		if b.Allow() {
			t.Error("fourth call should be rejected")
		}
	})

	t.Run("unlimited when max is zero", func(t *testing.T) {
		t.Parallel()

		b := NewCallBudget(0, time.Hour)
		for i := 0; i < 100; i++ {
			if !b.Allow() {
				t.Fatal("unlimited budget should never reject")
			}
		}
		if got := b.Remaining(); got != -1 {
			t.Errorf("Remaining() = %d, want -1 for unlimited", got)
		}
	})

	t.Run("resets after the window elapses", func(t *testing.T) {
		t.Parallel()

		b := NewCallBudget(1, time.Hour)
		current := time.Now()
		b.now = func() time.Time { return current }
		b.resetAt = current.Add(time.Hour)

		if !b.Allow() {
			t.Fatal("first call should be allowed")
		}
		if b.Allow() {
			t.Fatal("second call in the same window should be rejected")
		}

		current = current.Add(2 * time.Hour)
		if !b.Allow() {
			t.Error("call after window reset should be allowed")
		}
	})
}

func TestCallBudgetRemaining(t *testing.T) {
	t.Parallel()

	b := NewCallBudget(5, time.Hour)
	if got := b.Remaining(); got != 5 {
		t.Errorf("Remaining() = %d, want 5", got)
	}

	b.Allow()
	b.Allow()
	if got := b.Remaining(); got != 3 {
		t.Errorf("Remaining() after 2 calls = %d, want 3", got)
	}
}

func TestCallBudgetConcurrentAllow(t *testing.T) {
	t.Parallel()

	const limit = 50
	b := NewCallBudget(limit, time.Hour)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < limit*2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Allow() {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != limit {
		t.Errorf("allowed %d calls, want exactly %d", allowed, limit)
	}
}
