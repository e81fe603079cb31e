// Package risk derives an exposure score and remediation guidance from a
// target's findings.
//
// Assessments are computed at request time from whatever the store holds;
// nothing in this package persists state. Scoring is additive per finding
// with per-category weights, so the score is monotone: more findings never
// lower the assessed risk.
package risk
