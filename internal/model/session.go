package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session errors.
var (
	// ErrUnknownSearchKind is returned for a search kind outside the known set.
	ErrUnknownSearchKind = errors.New("unknown search kind")
	// ErrNoIdentifiers is returned when a session is created without identifiers.
	ErrNoIdentifiers = errors.New("session requires at least one identifier")
	// ErrIllegalTransition is returned when a state change violates the
	// queued -> running -> {completed, failed} ordering.
	ErrIllegalTransition = errors.New("illegal session state transition")
)

// SearchKind identifies which investigation the session performs.
// Each kind maps to a fixed set of lookup tools.
type SearchKind string

// Search kind constants.
const (
	// SearchUsername sweeps social platforms for a handle.
	SearchUsername SearchKind = "username-search"
	// SearchEmail investigates an email address for breaches and accounts.
	SearchEmail SearchKind = "email-search"
	// SearchPhone investigates a phone number.
	SearchPhone SearchKind = "phone-search"
	// SearchFullProfile is the composite investigation combining every tool
	// applicable to the identifiers present in the bundle.
	SearchFullProfile SearchKind = "full-profile"
)

// String returns the string representation of the SearchKind.
func (k SearchKind) String() string {
	return string(k)
}

// IsValid returns true if this is a known search kind.
func (k SearchKind) IsValid() bool {
	switch k {
	case SearchUsername, SearchEmail, SearchPhone, SearchFullProfile:
		return true
	default:
		return false
	}
}

// TargetCategory returns the identifier category a single-identifier kind
// investigates. SearchFullProfile returns TargetComposite.
func (k SearchKind) TargetCategory() TargetCategory {
	switch k {
	case SearchUsername:
		return TargetUsername
	case SearchEmail:
		return TargetEmail
	case SearchPhone:
		return TargetPhone
	default:
		return TargetComposite
	}
}

// SessionState represents the lifecycle state of a session.
//
// Transitions are monotonic: queued -> running -> {completed, failed}.
// The only transition that skips running is a pre-flight validation failure
// going straight to failed before any adapter is invoked. Completed and
// failed are terminal; retrying means creating a new session.
type SessionState string

// Session state constants.
const (
	// StateQueued means the session is persisted but execution has not begun.
	StateQueued SessionState = "queued"
	// StateRunning means adapters are being invoked.
	StateRunning SessionState = "running"
	// StateCompleted means every adapter invocation settled.
	StateCompleted SessionState = "completed"
	// StateFailed means the session terminated without completing the fan-out.
	StateFailed SessionState = "failed"
)

// String returns the string representation of the SessionState.
func (s SessionState) String() string {
	return string(s)
}

// Terminal returns true for completed and failed sessions.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransitionTo reports whether the state machine allows moving to next.
func (s SessionState) CanTransitionTo(next SessionState) bool {
	switch s {
	case StateQueued:
		// A queued session may fail without running (pre-flight rejection
		// or cancellation before execute begins).
		return next == StateRunning || next == StateFailed
	case StateRunning:
		return next == StateCompleted || next == StateFailed
	default:
		return false
	}
}

// Session identifies one investigation of a target identifier.
// A Session owns its Findings: deleting a session cascades to them.
type Session struct {
	// ID is an opaque unique token identifying the session.
	ID string `json:"id"`

	// OwnerID identifies the principal that created the session.
	// Only the owner (or an elevated role) may read or delete it.
	OwnerID string `json:"owner_id"`

	// Label is a human-readable name for the investigation.
	Label string `json:"label,omitempty"`

	// Kind selects the tool set for this investigation.
	Kind SearchKind `json:"kind"`

	// Identifiers are the target identifiers under investigation.
	// Single-identifier kinds carry exactly one entry.
	Identifiers []Identifier `json:"identifiers"`

	// State is the current lifecycle state.
	State SessionState `json:"state"`

	// CreatedAt is when the session was accepted.
	CreatedAt time.Time `json:"created_at"`

	// StartedAt is when execution began. Zero while queued.
	StartedAt time.Time `json:"started_at,omitempty"`

	// CompletedAt is when the session reached a terminal state.
	CompletedAt time.Time `json:"completed_at,omitempty"`

	// ResultCount is the total number of findings persisted for this session.
	// Written once by the orchestrator on completion, never by readers.
	ResultCount int `json:"result_count"`

	// LastError records the reason for a failed session. Empty otherwise.
	// Adapter failures are not session failures and never appear here.
	LastError string `json:"last_error,omitempty"`

	// Metadata carries free-form key/value annotations.
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewSession creates a queued session with a generated id.
// It validates the kind and that at least one identifier is present.
func NewSession(ownerID string, kind SearchKind, identifiers []Identifier, label string) (*Session, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSearchKind, kind)
	}
	if len(identifiers) == 0 {
		return nil, ErrNoIdentifiers
	}

	return &Session{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Label:       label,
		Kind:        kind,
		Identifiers: identifiers,
		State:       StateQueued,
		CreatedAt:   time.Now().UTC(),
		Metadata:    make(map[string]string),
	}, nil
}

// Transition moves the session to the next state, stamping the relevant
// timestamp. Returns ErrIllegalTransition if the move is not allowed.
func (s *Session) Transition(next SessionState) error {
	if !s.State.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, s.State, next)
	}

	now := time.Now().UTC()
	switch next {
	case StateRunning:
		s.StartedAt = now
	case StateCompleted, StateFailed:
		s.CompletedAt = now
	}
	s.State = next
	return nil
}

// Fail transitions the session to failed and records the reason.
func (s *Session) Fail(reason string) error {
	if err := s.Transition(StateFailed); err != nil {
		return err
	}
	s.LastError = reason
	return nil
}
