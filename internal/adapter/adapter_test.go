package adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestInvokeErrorError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *InvokeError
		want string
	}{
		{
			name: "with cause",
			err:  &InvokeError{Tool: "sherlock", Kind: KindTimeout, Err: errors.New("deadline")},
			want: "sherlock: timeout: deadline",
		},
		{
			name: "without cause",
			err:  &InvokeError{Tool: "h8mail", Kind: KindRateLimited},
			want: "h8mail: rate_limited",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInvokeErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := newInvokeError("holehe", KindUnavailable, cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "invoke error",
			err:  newInvokeError("sherlock", KindBadTarget, nil),
			want: KindBadTarget,
		},
		{
			name: "wrapped invoke error",
			err:  fmt.Errorf("tool failed: %w", newInvokeError("h8mail", KindRateLimited, nil)),
			want: KindRateLimited,
		},
		{
			name: "context deadline",
			err:  context.DeadlineExceeded,
			want: KindTimeout,
		},
		{
			name: "plain error",
			err:  errors.New("something"),
			want: KindUnknown,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
		})
	}
}
