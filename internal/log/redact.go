package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// Masked replaces redacted attribute values.
const Masked = "***MASKED***"

// maskedKeys are attribute keys whose values are always redacted,
// whatever they contain.
var maskedKeys = map[string]bool{
	// Service credentials for the lookup backends.
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"x-api-key":     true,
	"access_token":  true,
	"refresh_token": true,
	"authorization": true,

	// Password material from breach records.
	"password":      true,
	"passwd":        true,
	"password_hash": true,
	"plaintext":     true,

	// Session material.
	"cookie":     true,
	"set-cookie": true,
	"session_id": true,
	"sid":        true,

	// Generic secrets.
	"secret":      true,
	"private_key": true,
	"credential":  true,
	"credentials": true,
}

// maskedKeywords are substrings that flag a key as sensitive when the key
// is not in maskedKeys verbatim. The bare "key" keyword is excluded on
// purpose: it flags "primary_key" and "keyboard" while the specific forms
// are already in maskedKeys.
var maskedKeywords = []string{
	"password", "passwd", "secret", "token", "credential", "private",
}

// maskedValuePatterns flag values as sensitive regardless of key name.
var maskedValuePatterns = []*regexp.Regexp{
	// JWTs.
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer and basic authorization values.
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Private key blocks.
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),

	// Full 40-hex-character digests. The breach lookup's anonymity rests
	// on never revealing more than the 5-character prefix; a full digest
	// in a log line would undo that.
	regexp.MustCompile(`^[0-9a-fA-F]{40}$`),
}

// RedactingHandler wraps an slog.Handler and masks sensitive attribute
// values before they reach the underlying handler. The wrapper form keeps
// it compatible with any output handler and with every slog API.
type RedactingHandler struct {
	handler slog.Handler
}

// NewRedactingHandler wraps handler. A nil handler wraps slog's default.
func NewRedactingHandler(handler slog.Handler) *RedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactingHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle masks the record's attributes and forwards it.
func (h *RedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.maskAttr(a))
		return true
	})
	return h.handler.Handle(ctx, masked)
}

// WithAttrs masks the attributes before adding them.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = h.maskAttr(a)
	}
	return &RedactingHandler{handler: h.handler.WithAttrs(masked)}
}

// WithGroup delegates to the underlying handler.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{handler: h.handler.WithGroup(name)}
}

// maskAttr masks one attribute, recursing into groups.
func (h *RedactingHandler) maskAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		masked := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			masked[i] = h.maskAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(masked...)}
	}

	key := strings.ToLower(a.Key)
	if maskedKeys[key] || hasMaskedKeyword(key) {
		return slog.String(a.Key, Masked)
	}

	if a.Value.Kind() == slog.KindString && isMaskedValue(a.Value.String()) {
		return slog.String(a.Key, Masked)
	}

	return a
}

// hasMaskedKeyword reports whether the key contains a sensitive substring.
func hasMaskedKeyword(key string) bool {
	for _, keyword := range maskedKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isMaskedValue reports whether the value matches a sensitive pattern.
func isMaskedValue(value string) bool {
	for _, pattern := range maskedValuePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// NewLogger creates a text logger with redaction. Verbose selects Debug
// level, otherwise Warn.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewRedactingHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewJSONLogger creates a JSON logger with redaction for log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewRedactingHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
