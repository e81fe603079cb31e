package risk

import (
	"math"
	"testing"

	"github.com/foundme/foundme/internal/model"
)

// findingsOf builds n findings of one category.
func findingsOf(t *testing.T, category model.FindingCategory, n int) []*model.Finding {
	t.Helper()

	findings := make([]*model.Finding, n)
	for i := range findings {
		findings[i] = model.NewFinding("alice", model.TargetUsername, "test", category, model.Evidence{}, 0.8)
	}
	return findings
}

func TestAssessScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		findings  []*model.Finding
		wantScore float64
		wantLevel model.RiskLevel
	}{
		{
			name:      "no findings",
			findings:  nil,
			wantScore: 0,
			wantLevel: model.RiskLow,
		},
		{
			name:      "single account presence",
			findings:  findingsOf(t, model.FindingAccountPresence, 1),
			wantScore: 0.05,
			wantLevel: model.RiskLow,
		},
		{
			name:      "two credential exposures reach high",
			findings:  findingsOf(t, model.FindingCredentialExposure, 2),
			wantScore: 0.6,
			wantLevel: model.RiskHigh,
		},
		{
			name:      "three credential exposures reach critical",
			findings:  findingsOf(t, model.FindingCredentialExposure, 3),
			wantScore: 0.9,
			wantLevel: model.RiskCritical,
		},
		{
			name: "mixed categories accumulate",
			findings: append(
				findingsOf(t, model.FindingCredentialExposure, 1),
				findingsOf(t, model.FindingContactInfo, 1)...,
			),
			wantScore: 0.45,
			wantLevel: model.RiskMedium,
		},
		{
			name:      "score caps at one",
			findings:  findingsOf(t, model.FindingCredentialExposure, 10),
			wantScore: 1,
			wantLevel: model.RiskCritical,
		},
	}

	assessor := NewAssessor(DefaultWeights())
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := assessor.Assess("alice", tt.findings)
			if math.Abs(got.Score-tt.wantScore) > 0.0001 {
				t.Errorf("score = %f, want %f", got.Score, tt.wantScore)
			}
			if got.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s", got.Level, tt.wantLevel)
			}
		})
	}
}

func TestAssessMonotoneInCredentialExposures(t *testing.T) {
	t.Parallel()

	assessor := NewAssessor(DefaultWeights())

	prev := -1.0
	for n := 0; n <= 6; n++ {
		score := assessor.Assess("alice", findingsOf(t, model.FindingCredentialExposure, n)).Score
		if score < prev {
			t.Fatalf("score dropped from %f to %f when adding exposure %d", prev, score, n)
		}
		prev = score
	}
}

func TestAssessFactors(t *testing.T) {
	t.Parallel()

	findings := append(
		findingsOf(t, model.FindingAccountPresence, 3),
		findingsOf(t, model.FindingCredentialExposure, 1)...,
	)

	got := NewAssessor(DefaultWeights()).Assess("alice", findings)
	if len(got.Factors) != 2 {
		t.Fatalf("got %d factors, want one per contributing category", len(got.Factors))
	}
	// Stable category order: credential exposure lists first.
	if got.Factors[0] != "1 credential exposure finding in breach corpora" {
		t.Errorf("first factor = %q", got.Factors[0])
	}
	if got.CategoryCounts[model.FindingAccountPresence] != 3 {
		t.Errorf("account presence count = %d, want 3", got.CategoryCounts[model.FindingAccountPresence])
	}
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	assessor := NewAssessor(DefaultWeights())

	t.Run("credential exposure drives high priority", func(t *testing.T) {
		t.Parallel()

		assessment := assessor.Assess("alice", findingsOf(t, model.FindingCredentialExposure, 2))
		recs := assessor.Recommend(assessment)

		if len(recs) != 2 {
			t.Fatalf("got %d recommendations, want security + monitoring", len(recs))
		}
		if recs[0].Priority != model.PriorityHigh || recs[0].Category != "security" {
			t.Errorf("first recommendation = %s/%s, want high/security", recs[0].Priority, recs[0].Category)
		}
		if len(recs[0].Actions) == 0 {
			t.Error("security recommendation should carry concrete actions")
		}
	})

	t.Run("monitoring always present", func(t *testing.T) {
		t.Parallel()

		recs := assessor.Recommend(assessor.Assess("alice", nil))
		if len(recs) != 1 {
			t.Fatalf("got %d recommendations, want just monitoring", len(recs))
		}
		if recs[0].Priority != model.PriorityLow || recs[0].Category != "monitoring" {
			t.Errorf("recommendation = %s/%s, want low/monitoring", recs[0].Priority, recs[0].Category)
		}
	})

	t.Run("document metadata drives data hygiene", func(t *testing.T) {
		t.Parallel()

		assessment := assessor.Assess("alice", findingsOf(t, model.FindingDocumentMetadata, 1))
		recs := assessor.Recommend(assessment)

		var found bool
		for _, r := range recs {
			if r.Category == "data-hygiene" {
				found = true
				if r.Priority != model.PriorityMedium {
					t.Errorf("data-hygiene priority = %s, want medium", r.Priority)
				}
			}
		}
		if !found {
			t.Error("document metadata should produce a data-hygiene recommendation")
		}
	})
}
