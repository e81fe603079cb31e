package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactingHandlerMasksByKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "api key", key: "api_key", val: "sk-live-abc123"},
		{name: "password", key: "password", val: "hunter2"},
		{name: "password hash", key: "password_hash", val: "5f4dcc3b5aa"},
		{name: "authorization header", key: "authorization", val: "whatever"},
		{name: "keyword substring", key: "backend_token", val: "tok_123"},
		{name: "case insensitive", key: "API_KEY", val: "sk-live-abc123"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, true)
			logger.Info("test", tt.key, tt.val)

			out := buf.String()
			if strings.Contains(out, tt.val) {
				t.Errorf("output contains raw value %q: %s", tt.val, out)
			}
			if !strings.Contains(out, Masked) {
				t.Errorf("output missing mask: %s", out)
			}
		})
	}
}

func TestRedactingHandlerMasksByValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		val  string
	}{
		{name: "jwt", val: "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig"},
		{name: "bearer", val: "Bearer abc.def.ghi"},
		{name: "basic auth", val: "Basic dXNlcjpwYXNz"},
		{name: "full sha1 digest", val: "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := NewLogger(&buf, true)
			logger.Info("test", "value", tt.val)

			if strings.Contains(buf.String(), tt.val) {
				t.Errorf("output contains raw value %q: %s", tt.val, buf.String())
			}
		})
	}
}

func TestRedactingHandlerKeepsTargets(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)
	logger.Info("session started",
		"target", "alice@example.com",
		"kind", "email-search",
		"hash_prefix", "DA39A")

	out := buf.String()
	for _, want := range []string{"alice@example.com", "email-search", "DA39A"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should keep %q: %s", want, out)
		}
	}
}

func TestRedactingHandlerGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)
	logger.Info("request", slog.Group("http",
		slog.String("url", "https://index.example/range/DA39A"),
		slog.String("api_key", "sk-live-abc123"),
	))

	out := buf.String()
	if strings.Contains(out, "sk-live-abc123") {
		t.Errorf("grouped secret leaked: %s", out)
	}
	if !strings.Contains(out, "https://index.example/range/DA39A") {
		t.Errorf("grouped plain value should survive: %s", out)
	}
}

func TestRedactingHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewLogger(&buf, true).With("access_token", "tok_persistent")
	logger.Info("tick")

	if strings.Contains(buf.String(), "tok_persistent") {
		t.Errorf("WithAttrs secret leaked: %s", buf.String())
	}
}

func TestLoggerLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	quiet := NewLogger(&buf, false)
	quiet.Debug("hidden")
	quiet.Info("also hidden")
	if buf.Len() != 0 {
		t.Errorf("non-verbose logger should drop debug/info: %s", buf.String())
	}

	quiet.Warn("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("warnings should always log")
	}
}

func TestNewJSONLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, true)
	logger.Info("test", "password", "hunter2")

	out := buf.String()
	if !strings.HasPrefix(out, "{") {
		t.Errorf("expected JSON output, got %s", out)
	}
	if strings.Contains(out, "hunter2") {
		t.Errorf("JSON output leaked secret: %s", out)
	}
}
