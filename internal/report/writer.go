package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Writer renders an assembled report to a configured destination.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *Report) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write reports, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *Report) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// OpenOutput resolves a report destination. An empty path means stdout;
// a file path gets its parent directories created. The caller closes the
// returned writer when it is a file; closing stdout is a no-op via
// nopCloser.
func OpenOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create report directory %q: %w", dir, err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // path comes from the operator's own --output flag
	if err != nil {
		return nil, fmt.Errorf("create report file %q: %w", path, err)
	}
	return f, nil
}

// nopCloser wraps stdout so callers can defer Close unconditionally.
type nopCloser struct {
	io.Writer
}

// Close implements io.Closer.
func (nopCloser) Close() error { return nil }
