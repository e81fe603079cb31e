// Package store provides SQLite-backed persistence for sessions and findings.
//
// The store is append-write, read-many: findings are inserted as adapters
// settle and never mutated afterwards, except for the reviewer path that
// updates the verification flag and tags. Findings are keyed both by their
// owning session and by (target, target_category) so a repeatedly
// investigated identifier can be correlated across sessions.
//
// We use modernc.org/sqlite (pure Go, no cgo) with WAL mode enabled for
// concurrent readers alongside the single writer.
package store
