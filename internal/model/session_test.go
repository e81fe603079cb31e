package model

import (
	"errors"
	"testing"
)

// TestNewSession tests session creation validation.
func TestNewSession(t *testing.T) {
	t.Parallel()

	t.Run("creates queued session with id", func(t *testing.T) {
		t.Parallel()

		id, err := NewIdentifier("jdoe", TargetUsername)
		if err != nil {
			t.Fatalf("failed to create identifier: %v", err)
		}

		s, err := NewSession("owner-1", SearchUsername, []Identifier{id}, "my investigation")
		if err != nil {
			t.Fatalf("failed to create session: %v", err)
		}

		if s.ID == "" {
			t.Error("session id should be generated")
		}
		if s.State != StateQueued {
			t.Errorf("new session state = %s, want %s", s.State, StateQueued)
		}
		if s.CreatedAt.IsZero() {
			t.Error("created timestamp should be set")
		}
	})

	t.Run("rejects unknown search kind", func(t *testing.T) {
		t.Parallel()

		id, _ := NewIdentifier("jdoe", TargetUsername)
		_, err := NewSession("owner-1", SearchKind("dns-search"), []Identifier{id}, "")
		if !errors.Is(err, ErrUnknownSearchKind) {
			t.Errorf("expected ErrUnknownSearchKind, got %v", err)
		}
	})

	t.Run("rejects empty identifier list", func(t *testing.T) {
		t.Parallel()

		_, err := NewSession("owner-1", SearchUsername, nil, "")
		if !errors.Is(err, ErrNoIdentifiers) {
			t.Errorf("expected ErrNoIdentifiers, got %v", err)
		}
	})
}

// TestSessionTransitions tests that state changes follow the
// queued -> running -> {completed, failed} machine exactly.
func TestSessionTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		from    SessionState
		to      SessionState
		allowed bool
	}{
		{"queued to running", StateQueued, StateRunning, true},
		{"queued to failed (pre-flight)", StateQueued, StateFailed, true},
		{"queued to completed skips running", StateQueued, StateCompleted, false},
		{"running to completed", StateRunning, StateCompleted, true},
		{"running to failed", StateRunning, StateFailed, true},
		{"running back to queued", StateRunning, StateQueued, false},
		{"completed is terminal", StateCompleted, StateRunning, false},
		{"completed cannot fail", StateCompleted, StateFailed, false},
		{"failed is terminal", StateFailed, StateRunning, false},
		{"failed cannot complete", StateFailed, StateCompleted, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}

			s := &Session{State: tt.from}
			err := s.Transition(tt.to)
			if tt.allowed && err != nil {
				t.Errorf("Transition(%s -> %s) unexpected error: %v", tt.from, tt.to, err)
			}
			if !tt.allowed && !errors.Is(err, ErrIllegalTransition) {
				t.Errorf("Transition(%s -> %s) expected ErrIllegalTransition, got %v", tt.from, tt.to, err)
			}
		})
	}
}

// TestSessionTransitionTimestamps tests timestamp stamping on transitions.
func TestSessionTransitionTimestamps(t *testing.T) {
	t.Parallel()

	s := &Session{State: StateQueued}

	if err := s.Transition(StateRunning); err != nil {
		t.Fatalf("queued -> running failed: %v", err)
	}
	if s.StartedAt.IsZero() {
		t.Error("StartedAt should be stamped on running")
	}

	if err := s.Transition(StateCompleted); err != nil {
		t.Fatalf("running -> completed failed: %v", err)
	}
	if s.CompletedAt.IsZero() {
		t.Error("CompletedAt should be stamped on completion")
	}
}

// TestSessionFail tests the failure helper records the reason.
func TestSessionFail(t *testing.T) {
	t.Parallel()

	s := &Session{State: StateRunning}
	if err := s.Fail("storage write failure"); err != nil {
		t.Fatalf("fail transition errored: %v", err)
	}
	if s.State != StateFailed {
		t.Errorf("state = %s, want failed", s.State)
	}
	if s.LastError != "storage write failure" {
		t.Errorf("last error = %q, want reason preserved", s.LastError)
	}
}

// TestSearchKindTargetCategory tests the kind-to-category mapping.
func TestSearchKindTargetCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind SearchKind
		want TargetCategory
	}{
		{SearchUsername, TargetUsername},
		{SearchEmail, TargetEmail},
		{SearchPhone, TargetPhone},
		{SearchFullProfile, TargetComposite},
	}

	for _, tt := range tests {
		if got := tt.kind.TargetCategory(); got != tt.want {
			t.Errorf("%s.TargetCategory() = %s, want %s", tt.kind, got, tt.want)
		}
	}
}
