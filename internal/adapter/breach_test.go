package adapter

import (
	"context"
	"crypto/sha1" //nolint:gosec // mirrors the index's k-anonymity scheme
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foundme/foundme/internal/model"
)

// breachSuffix returns the SHA-1 suffix the index would hold for an address.
func breachSuffix(t *testing.T, email string) string {
	t.Helper()

	sum := sha1.Sum([]byte(strings.ToLower(email))) //nolint:gosec // test fixture
	return strings.ToUpper(hex.EncodeToString(sum[:]))[hashPrefixLen:]
}

func TestBreachAdapterInvoke(t *testing.T) {
	t.Parallel()

	const target = "victim@example.com"
	suffix := breachSuffix(t, target)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/range/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprintf(w, "%s:MegaCorp:2021-03-14:emails;passwords\n", suffix)
		fmt.Fprintf(w, "%s:OtherLeak:2020-01-01:emails\n", suffix)
		fmt.Fprintln(w, "0000000000000000000000000000000000X:Unrelated:2019-05-05:emails")
	}))
	defer srv.Close()

	a := NewBreachAdapter(srv.Client(), NewCallBudget(0, time.Hour), srv.URL)

	findings, err := a.Invoke(context.Background(), target, model.TargetEmail)
	if err != nil {
		t.Fatalf("Invoke() error = %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2 matching records", len(findings))
	}

	first := findings[0]
	if first.Category != model.FindingCredentialExposure {
		t.Errorf("category = %s, want %s", first.Category, model.FindingCredentialExposure)
	}
	if first.Evidence.Breach == nil {
		t.Fatal("finding should carry breach evidence")
	}
	if first.Evidence.Breach.BreachName != "MegaCorp" {
		t.Errorf("breach name = %q, want MegaCorp", first.Evidence.Breach.BreachName)
	}
	if !first.Evidence.Breach.PasswordExposed {
		t.Error("passwords data class should set PasswordExposed")
	}
	if findings[1].Evidence.Breach.PasswordExposed {
		t.Error("breach without passwords class should not set PasswordExposed")
	}
}

func TestBreachAdapterRateLimitedByIndex(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewBreachAdapter(srv.Client(), NewCallBudget(0, time.Hour), srv.URL)

	_, err := a.Invoke(context.Background(), "victim@example.com", model.TargetEmail)
	if KindOf(err) != KindRateLimited {
		t.Errorf("KindOf(err) = %s, want %s", KindOf(err), KindRateLimited)
	}
}

func TestBreachAdapterRejectsNonEmail(t *testing.T) {
	t.Parallel()

	a := NewBreachAdapter(http.DefaultClient, NewCallBudget(0, time.Hour), "http://127.0.0.1:1")

	_, err := a.Invoke(context.Background(), "alice", model.TargetUsername)
	if KindOf(err) != KindBadTarget {
		t.Errorf("KindOf(err) = %s, want %s", KindOf(err), KindBadTarget)
	}
}

func TestParseBreachRecord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want *breachRecord
	}{
		{
			name: "full record",
			line: "ABCDEF:MegaCorp:2021-03-14:emails;passwords",
			want: &breachRecord{
				suffix:      "ABCDEF",
				breach:      "MegaCorp",
				dataClasses: []string{"emails", "passwords"},
			},
		},
		{
			name: "no date or classes",
			line: "ABCDEF:MegaCorp",
			want: &breachRecord{suffix: "ABCDEF", breach: "MegaCorp"},
		},
		{
			name: "empty line",
			line: "",
			want: nil,
		},
		{
			name: "missing breach name",
			line: "ABCDEF:",
			want: nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := parseBreachRecord(tt.line)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("parseBreachRecord(%q) = %v, want %v", tt.line, got, tt.want)
			}
			if got == nil {
				return
			}
			if got.suffix != tt.want.suffix || got.breach != tt.want.breach {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if len(got.dataClasses) != len(tt.want.dataClasses) {
				t.Errorf("data classes = %v, want %v", got.dataClasses, tt.want.dataClasses)
			}
		})
	}
}

func TestParseBreachRecordDate(t *testing.T) {
	t.Parallel()

	got := parseBreachRecord("ABCDEF:MegaCorp:2021-03-14:emails")
	if got == nil {
		t.Fatal("record should parse")
	}

	want := time.Date(2021, 3, 14, 0, 0, 0, 0, time.UTC)
	if !got.date.Equal(want) {
		t.Errorf("date = %v, want %v", got.date, want)
	}
}
