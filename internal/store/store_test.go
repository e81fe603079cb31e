package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/foundme/foundme/internal/model"
)

// setupTestStore creates a temporary store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// newTestSession persists a fresh session for use in finding tests.
func newTestSession(t *testing.T, s *Store) *model.Session {
	t.Helper()

	id, err := model.NewIdentifier("jdoe", model.TargetUsername)
	if err != nil {
		t.Fatalf("failed to create identifier: %v", err)
	}
	session, err := model.NewSession("owner-1", model.SearchUsername, []model.Identifier{id}, "test")
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := s.SaveSession(context.Background(), session); err != nil {
		t.Fatalf("failed to save session: %v", err)
	}
	return session
}

// accountFinding builds an account-presence finding owned by the session.
func accountFinding(session *model.Session, platform string, confidence float64) *model.Finding {
	f := model.NewFinding("jdoe", model.TargetUsername, "sherlock", model.FindingAccountPresence,
		model.Evidence{Account: &model.AccountEvidence{Platform: platform, Username: "jdoe"}}, confidence)
	f.SessionID = session.ID
	return f
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		s, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		defer s.Close()

		if _, err := os.Stat(filepath.Join(dbDir, "foundme.db")); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false errors when database missing", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})
}

// TestSessionRoundTrip tests save and read-back of a session.
func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	session := newTestSession(t, s)

	got, err := s.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}

	if got.OwnerID != session.OwnerID {
		t.Errorf("owner = %q, want %q", got.OwnerID, session.OwnerID)
	}
	if got.Kind != model.SearchUsername {
		t.Errorf("kind = %s, want %s", got.Kind, model.SearchUsername)
	}
	if got.State != model.StateQueued {
		t.Errorf("state = %s, want queued", got.State)
	}
	if len(got.Identifiers) != 1 || got.Identifiers[0].Value != "jdoe" {
		t.Errorf("identifiers = %+v, want jdoe", got.Identifiers)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created timestamp should round-trip")
	}
}

// TestGetSessionNotFound tests the missing-session sentinel.
func TestGetSessionNotFound(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	_, err := s.GetSession(context.Background(), "no-such-id")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

// TestUpdateSession tests state updates survive a read-back.
func TestUpdateSession(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	session := newTestSession(t, s)

	if err := session.Transition(model.StateRunning); err != nil {
		t.Fatalf("transition failed: %v", err)
	}
	if err := s.UpdateSession(ctx, session); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := s.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.State != model.StateRunning {
		t.Errorf("state = %s, want running", got.State)
	}
	if got.StartedAt.IsZero() {
		t.Error("started timestamp should round-trip")
	}
}

// TestDeleteSessionCascades tests that deleting a session removes its findings.
func TestDeleteSessionCascades(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	session := newTestSession(t, s)

	f := accountFinding(session, "github", 0.8)
	if err := s.InsertFinding(ctx, f); err != nil {
		t.Fatalf("failed to insert finding: %v", err)
	}

	if err := s.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}

	if _, err := s.GetFinding(ctx, f.ID); !errors.Is(err, ErrFindingNotFound) {
		t.Errorf("finding should cascade-delete with its session, got %v", err)
	}
}

// TestInsertFindingsBatchAtomic tests that a failing batch persists nothing.
func TestInsertFindingsBatchAtomic(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	session := newTestSession(t, s)

	good := accountFinding(session, "github", 0.8)
	dup := accountFinding(session, "reddit", 0.7)
	dup.ID = good.ID // primary key collision makes the second insert fail

	if err := s.InsertFindings(ctx, []*model.Finding{good, dup}); err == nil {
		t.Fatal("expected batch insert to fail on duplicate id")
	}

	count, err := s.CountFindings(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to count findings: %v", err)
	}
	if count != 0 {
		t.Errorf("found %d findings after failed batch, want 0", count)
	}
}

// TestReviewFinding tests the verification/tag mutation path.
func TestReviewFinding(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	session := newTestSession(t, s)

	f := accountFinding(session, "github", 0.8)
	if err := s.InsertFinding(ctx, f); err != nil {
		t.Fatalf("failed to insert finding: %v", err)
	}

	if err := s.ReviewFinding(ctx, f.ID, true, []string{"confirmed", "primary"}); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	got, err := s.GetFinding(ctx, f.ID)
	if err != nil {
		t.Fatalf("failed to get finding: %v", err)
	}
	if !got.Verified {
		t.Error("finding should be verified after review")
	}
	if !got.HasTag("confirmed") || !got.HasTag("primary") {
		t.Errorf("tags = %v, want confirmed+primary", got.Tags)
	}

	if err := s.ReviewFinding(ctx, "no-such-id", true, nil); !errors.Is(err, ErrFindingNotFound) {
		t.Errorf("expected ErrFindingNotFound, got %v", err)
	}
}

// TestSearchFindings tests conjunctive filtering.
func TestSearchFindings(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	session := newTestSession(t, s)

	high := accountFinding(session, "github", 0.9)
	low := accountFinding(session, "reddit", 0.3)
	breach := model.NewFinding("jdoe", model.TargetUsername, "h8mail", model.FindingCredentialExposure,
		model.Evidence{Breach: &model.BreachEvidence{BreachName: "example2019", PasswordExposed: true}}, 0.95)
	breach.SessionID = session.ID
	breach.Tags = []string{"breach"}

	if err := s.InsertFindings(ctx, []*model.Finding{high, low, breach}); err != nil {
		t.Fatalf("failed to insert findings: %v", err)
	}

	t.Run("by confidence range", func(t *testing.T) {
		got, err := s.SearchFindings(ctx, Filter{Target: "jdoe", MinConfidence: 0.5})
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d findings, want 2 above 0.5", len(got))
		}
	})

	t.Run("by tool and category", func(t *testing.T) {
		got, err := s.SearchFindings(ctx, Filter{Tool: "h8mail", Category: model.FindingCredentialExposure})
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != breach.ID {
			t.Errorf("got %d findings, want the breach finding", len(got))
		}
	})

	t.Run("by tag set", func(t *testing.T) {
		got, err := s.SearchFindings(ctx, Filter{Tags: []string{"breach"}})
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("got %d findings, want 1 tagged", len(got))
		}
	})

	t.Run("by time range excludes future window", func(t *testing.T) {
		got, err := s.SearchFindings(ctx, Filter{Since: time.Now().Add(time.Hour)})
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d findings, want 0 in the future", len(got))
		}
	})

	t.Run("pagination", func(t *testing.T) {
		got, err := s.SearchFindings(ctx, Filter{SessionID: session.ID, Limit: 2, Offset: 0})
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d findings, want page of 2", len(got))
		}
	})
}

// TestFindingsByTarget tests cross-session lookup by identifier.
func TestFindingsByTarget(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()

	first := newTestSession(t, s)
	second := newTestSession(t, s)

	if err := s.InsertFinding(ctx, accountFinding(first, "github", 0.8)); err != nil {
		t.Fatalf("failed to insert finding: %v", err)
	}
	if err := s.InsertFinding(ctx, accountFinding(second, "reddit", 0.7)); err != nil {
		t.Fatalf("failed to insert finding: %v", err)
	}

	got, err := s.FindingsByTarget(ctx, "jdoe", model.TargetUsername)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d findings across sessions, want 2", len(got))
	}
}

// TestStats tests aggregate statistics per target.
func TestStats(t *testing.T) {
	t.Parallel()

	s := setupTestStore(t)
	ctx := context.Background()
	session := newTestSession(t, s)

	findings := []*model.Finding{
		accountFinding(session, "github", 0.8),
		accountFinding(session, "reddit", 0.6),
	}
	breach := model.NewFinding("jdoe", model.TargetUsername, "h8mail", model.FindingCredentialExposure,
		model.Evidence{Breach: &model.BreachEvidence{BreachName: "example2019"}}, 1.0)
	breach.SessionID = session.ID
	findings = append(findings, breach)

	if err := s.InsertFindings(ctx, findings); err != nil {
		t.Fatalf("failed to insert findings: %v", err)
	}

	stats, err := s.Stats(ctx, "jdoe")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("total = %d, want 3", stats.Total)
	}
	if stats.ByCategory[model.FindingAccountPresence] != 2 {
		t.Errorf("account-presence count = %d, want 2", stats.ByCategory[model.FindingAccountPresence])
	}
	want := (0.8 + 0.6 + 1.0) / 3
	if diff := stats.AverageConfidence - want; diff > 0.0001 || diff < -0.0001 {
		t.Errorf("average confidence = %v, want %v", stats.AverageConfidence, want)
	}

	t.Run("empty target", func(t *testing.T) {
		stats, err := s.Stats(ctx, "nobody")
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if stats.Total != 0 || stats.AverageConfidence != 0 {
			t.Errorf("empty target stats = %+v, want zeroes", stats)
		}
	})
}
