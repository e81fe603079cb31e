// Package log provides structured logging with automatic redaction of the
// sensitive material this application handles, built on top of the
// standard slog package.
//
// An investigation run touches breach records, personal identifiers, and
// service credentials. Log lines get copied into tickets and pasted into
// chat, so the handler masks dangerous values at the logging boundary
// instead of trusting every call site to remember:
//   - service credentials (API keys, bearer tokens, basic auth, JWTs)
//   - password material surfaced from breach corpora
//   - session tokens and cookies
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//	logger.Info("breach index queried",
//	    "api_key", "sk-abc123",   // masked
//	    "target", "user@example.com",
//	)
//	slog.SetDefault(logger)
//
// Target identifiers themselves are NOT masked: the operator is running an
// authorized search on them, and scrubbing the subject from its own audit
// trail would make the logs useless.
package log
