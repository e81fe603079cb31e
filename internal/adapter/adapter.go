package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/foundme/foundme/internal/model"
)

// ErrorKind classifies adapter failures so the orchestrator can react
// per tool instead of treating every error the same way.
type ErrorKind string

// Error kind constants.
const (
	// KindUnavailable means the tool's backend is unreachable or down.
	KindUnavailable ErrorKind = "unavailable"
	// KindRateLimited means the adapter's call budget is exhausted.
	KindRateLimited ErrorKind = "rate_limited"
	// KindTimeout means the invocation exceeded its deadline.
	KindTimeout ErrorKind = "timeout"
	// KindBadTarget means the target identifier is malformed for this tool.
	KindBadTarget ErrorKind = "bad_target"
	// KindUnknown covers everything else.
	KindUnknown ErrorKind = "unknown"
)

// InvokeError is the typed failure returned by adapter invocations.
type InvokeError struct {
	// Tool names the adapter that failed.
	Tool string

	// Kind classifies the failure.
	Kind ErrorKind

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *InvokeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Tool, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Tool, e.Kind)
}

// Unwrap returns the underlying cause.
func (e *InvokeError) Unwrap() error {
	return e.Err
}

// newInvokeError builds an InvokeError for a tool.
func newInvokeError(tool string, kind ErrorKind, err error) *InvokeError {
	return &InvokeError{Tool: tool, Kind: kind, Err: err}
}

// KindOf extracts the error kind from an adapter error.
// Context deadline errors map to timeout; unclassified errors map to unknown.
func KindOf(err error) ErrorKind {
	var ie *InvokeError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// Adapter is the uniform interface to one external lookup tool.
//
// The contract guarantees:
//   - Invoke returns a non-empty finding list only on success
//   - failures are *InvokeError with a distinguishable Kind
//   - the adapter enforces its own call budget and refuses over-budget
//     calls rather than silently queuing them
//
// Availability is polled, not assumed: the orchestrator calls Available
// before Invoke and records unusable adapters as skipped.
type Adapter interface {
	// Name returns the tool name this adapter wraps.
	Name() string

	// Available reports whether the tool is currently usable.
	Available(ctx context.Context) bool

	// Invoke runs one lookup for the target identifier.
	// Returned findings carry no session id; the orchestrator assigns one
	// when persisting.
	Invoke(ctx context.Context, target string, category model.TargetCategory) ([]*model.Finding, error)
}
