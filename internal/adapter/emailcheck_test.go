package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foundme/foundme/internal/model"
)

func TestEmailCheckAdapterInvoke(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/check" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if got := r.URL.Query().Get("email"); got != "alice@example.com" {
			t.Errorf("query email = %q, want alice@example.com", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"service": "spotify", "exists": true, "profile_url": "https://spotify.example/alice"},
			{"service": "twitter", "exists": false},
			{"service": "adobe", "exists": true}
		]`))
	}))
	defer srv.Close()

	a := NewEmailCheckAdapter(srv.Client(), NewCallBudget(0, time.Hour), srv.URL)

	findings, err := a.Invoke(context.Background(), "alice@example.com", model.TargetEmail)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2 registered services", len(findings))
	}

	first := findings[0]
	if first.Category != model.FindingAccountPresence {
		t.Errorf("category = %s, want %s", first.Category, model.FindingAccountPresence)
	}
	if first.Evidence.Account == nil || first.Evidence.Account.Platform != "spotify" {
		t.Errorf("first finding should reference spotify, got %+v", first.Evidence.Account)
	}
	if first.SourceURL != "https://spotify.example/alice" {
		t.Errorf("source url = %q", first.SourceURL)
	}
}

func TestEmailCheckAdapterStatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   ErrorKind
	}{
		{name: "too many requests", status: http.StatusTooManyRequests, want: KindRateLimited},
		{name: "bad request", status: http.StatusBadRequest, want: KindBadTarget},
		{name: "server error", status: http.StatusInternalServerError, want: KindUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			a := NewEmailCheckAdapter(srv.Client(), NewCallBudget(0, time.Hour), srv.URL)

			_, err := a.Invoke(context.Background(), "alice@example.com", model.TargetEmail)
			if KindOf(err) != tt.want {
				t.Errorf("KindOf(err) = %s, want %s", KindOf(err), tt.want)
			}
		})
	}
}

func TestEmailCheckAdapterMalformedResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	a := NewEmailCheckAdapter(srv.Client(), NewCallBudget(0, time.Hour), srv.URL)

	_, err := a.Invoke(context.Background(), "alice@example.com", model.TargetEmail)
	if KindOf(err) != KindUnknown {
		t.Errorf("KindOf(err) = %s, want %s", KindOf(err), KindUnknown)
	}
}
