package config

import "errors"

// Configuration validation errors.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoTarget is returned when no identifier to search is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one username, email, or phone")

	// ErrInvalidKind is returned when the search kind is not one of
	// username-search, email-search, phone-search, or full-profile.
	ErrInvalidKind = errors.New("invalid search kind")

	// ErrInvalidTimeout is returned when the per-tool timeout is not positive.
	// A zero or negative timeout would fail every invocation immediately.
	ErrInvalidTimeout = errors.New("invalid tool timeout: must be positive")

	// ErrInvalidConcurrency is returned when the adapter concurrency limit
	// is not positive. Zero concurrency would mean no tool ever runs.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when more than one of --json
	// and --markdown is specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidQuota is returned when a quota limit is negative.
	// Use 0 for an unlimited quota.
	ErrInvalidQuota = errors.New("invalid quota: must be non-negative")
)
