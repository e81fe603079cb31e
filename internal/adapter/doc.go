// Package adapter wraps each external lookup capability behind a uniform
// contract so the orchestrator can fan an investigation out without knowing
// tool specifics.
//
// Every adapter exposes three things: a name, an availability probe, and an
// Invoke operation returning findings or a typed failure. Failures carry a
// Kind (unavailable, rate_limited, timeout, bad_target, unknown) so the
// orchestrator can record a tool as skipped or down without failing the
// whole session.
//
// Each adapter owns its own call budget: a rolling counter with a reset
// window, injected at construction. Over-budget calls are refused with a
// rate_limited error rather than queued.
package adapter
