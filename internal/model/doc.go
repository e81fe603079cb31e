// Package model defines the core data structures used throughout FoundMe.
//
// This package contains the following main types:
//   - Session: One investigation request with its own lifecycle state machine
//   - Finding: A single piece of evidence produced by one tool for one target
//   - Evidence: A tagged union of tool-specific payloads keyed by finding category
//   - Correlation: A derived relationship between two findings (never persisted)
//   - RiskAssessment / Recommendation: Derived summaries computed at report time
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (adapter, orchestrator, correlate, risk,
// report) need these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
