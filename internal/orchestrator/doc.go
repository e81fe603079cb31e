// Package orchestrator drives search sessions from creation to a terminal
// state.
//
// A session moves queued -> running -> completed or failed, never
// backwards. The orchestrator fans invocations out across the applicable
// adapters, persists findings as each adapter settles, and treats
// individual tool failures as degraded results rather than session
// failures. Only pre-flight rejection, cancellation, or a store write
// failure fails a session.
package orchestrator
