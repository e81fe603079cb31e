// Package correlate derives relationships between findings of different
// categories for a single target.
//
// Correlations are a pure function of a finding set: the engine holds no
// state between runs and writes nothing. Reports recompute correlations
// from the store on every request, so a reviewer flagging a finding as
// unverified immediately changes what the next report correlates.
package correlate
