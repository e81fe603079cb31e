// Package report assembles and renders investigation reports.
//
// The Builder reads persisted findings for a target, recomputes
// correlations and risk on demand, and returns one aggregate Report.
// Writers render that report in different formats:
//   - TextWriter: human-readable output for terminal display
//   - JSONWriter: structured output for tool integration
//   - MarkdownWriter: documentation-friendly output for sharing
//
// Design decision: We separate report assembly from report rendering so
// that new output formats can be added without touching the aggregation
// logic. Writers implement the Writer interface and can be composed for
// multi-format output.
package report
