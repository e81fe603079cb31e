package risk

import (
	"fmt"
	"time"

	"github.com/foundme/foundme/internal/model"
)

// Level cutoffs on the accumulated score.
const (
	criticalCutoff = 0.8
	highCutoff     = 0.6
	mediumCutoff   = 0.4
)

// Weights is the per-finding score contribution by category.
//
// The defaults encode severity ordering: exposed credentials dwarf
// everything else, leaked contact details and document metadata carry
// real-world reach, and mere account presence is close to noise.
type Weights struct {
	CredentialExposure float64 `yaml:"credential_exposure"`
	ContactInfo        float64 `yaml:"contact_info"`
	DocumentMetadata   float64 `yaml:"document_metadata"`
	ProfileSummary     float64 `yaml:"profile_summary"`
	AccountPresence    float64 `yaml:"account_presence"`
}

// DefaultWeights returns the built-in scoring weights.
func DefaultWeights() Weights {
	return Weights{
		CredentialExposure: 0.30,
		ContactInfo:        0.15,
		DocumentMetadata:   0.15,
		ProfileSummary:     0.10,
		AccountPresence:    0.05,
	}
}

// forCategory returns the weight for one finding category.
func (w Weights) forCategory(c model.FindingCategory) float64 {
	switch c {
	case model.FindingCredentialExposure:
		return w.CredentialExposure
	case model.FindingContactInfo:
		return w.ContactInfo
	case model.FindingDocumentMetadata:
		return w.DocumentMetadata
	case model.FindingProfileSummary:
		return w.ProfileSummary
	case model.FindingAccountPresence:
		return w.AccountPresence
	default:
		return 0
	}
}

// Assessor computes risk assessments and remediation guidance.
type Assessor struct {
	weights Weights
}

// NewAssessor creates an assessor with the given weights.
func NewAssessor(weights Weights) *Assessor {
	return &Assessor{weights: weights}
}

// Assess scores a target's findings. Factor strings are emitted in the
// stable category order so two runs over the same findings render the
// same report.
func (a *Assessor) Assess(target string, findings []*model.Finding) model.RiskAssessment {
	counts := make(map[model.FindingCategory]int)
	for _, f := range findings {
		counts[f.Category]++
	}

	var (
		score   float64
		factors []string
	)
	for _, category := range model.AllFindingCategories() {
		n := counts[category]
		if n == 0 {
			continue
		}
		score += a.weights.forCategory(category) * float64(n)
		factors = append(factors, factorFor(category, n))
	}

	score = model.ClampScore(score)
	return model.RiskAssessment{
		Target:         target,
		Score:          score,
		Level:          levelFor(score),
		Factors:        factors,
		CategoryCounts: counts,
		GeneratedAt:    time.Now().UTC(),
	}
}

// levelFor maps a score to its risk level.
func levelFor(score float64) model.RiskLevel {
	switch {
	case score >= criticalCutoff:
		return model.RiskCritical
	case score >= highCutoff:
		return model.RiskHigh
	case score >= mediumCutoff:
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

// factorFor renders one contributing-category explanation.
func factorFor(category model.FindingCategory, n int) string {
	noun := "findings"
	if n == 1 {
		noun = "finding"
	}

	switch category {
	case model.FindingCredentialExposure:
		return fmt.Sprintf("%d credential exposure %s in breach corpora", n, noun)
	case model.FindingContactInfo:
		return fmt.Sprintf("%d contact identifier %s discoverable", n, noun)
	case model.FindingDocumentMetadata:
		return fmt.Sprintf("%d published document %s leaking metadata", n, noun)
	case model.FindingProfileSummary:
		return fmt.Sprintf("%d public profile %s exposing personal details", n, noun)
	case model.FindingAccountPresence:
		return fmt.Sprintf("%d account presence %s across platforms", n, noun)
	default:
		return fmt.Sprintf("%d %s %s", n, category, noun)
	}
}
