package correlate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/foundme/foundme/internal/model"
)

// Scoring constants for one candidate pair.
const (
	// exactMatchIncrement is added per exact identifier match
	// (handle, email, or phone shared between the two findings).
	exactMatchIncrement = 0.4

	// temporalIncrement is added when the findings were discovered within
	// temporalWindow of each other.
	temporalIncrement = 0.1
	temporalWindow    = 24 * time.Hour

	// nameWeight scales the fuzzy display-name similarity; pairs below
	// nameFloor contribute nothing. Names outrank locations because two
	// people sharing a city is unremarkable while two accounts sharing a
	// name rarely is.
	nameWeight = 0.3
	nameFloor  = 0.8

	// locationWeight scales the fuzzy location similarity above locationFloor.
	locationWeight = 0.2
	locationFloor  = 0.7

	// retentionThreshold drops candidate pairs whose accumulated confidence
	// is too low to be worth showing.
	retentionThreshold = 0.7
)

// Engine computes correlations across a target's findings.
//
// The engine compares every cross-category pair of findings. Findings of
// the same category are never compared: two account-presence hits on
// different platforms both say "this handle exists", and correlating them
// would manufacture confidence out of repetition rather than independent
// evidence.
//
// The full pairwise pass is O(F squared), which is acceptable because F is
// bounded by the per-tool call budgets, not by user input.
type Engine struct{}

// NewEngine creates a correlation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Correlate computes the retained correlations for a finding set, sorted by
// descending confidence. The result is independent of input order.
func (e *Engine) Correlate(findings []*model.Finding) []model.Correlation {
	// Canonical input order makes pair construction, and therefore the
	// output, order-independent.
	sorted := make([]*model.Finding, len(findings))
	copy(sorted, findings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var correlations []model.Correlation
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if a.Category == b.Category {
				continue
			}

			c, ok := e.scorePair(a, b)
			if !ok {
				continue
			}
			correlations = append(correlations, c)
		}
	}

	sort.SliceStable(correlations, func(i, j int) bool {
		if correlations[i].Confidence != correlations[j].Confidence {
			return correlations[i].Confidence > correlations[j].Confidence
		}
		return correlations[i].FindingA.ID < correlations[j].FindingA.ID
	})

	return correlations
}

// scorePair accumulates the match signals for one cross-category pair.
// Returns false when the pair falls below the retention threshold.
//
// Exact identifier matches raise similarity along with confidence. An
// identical handle or email is the strongest form of sameness two
// findings can exhibit, so a pair retained purely on exact matches must
// not report zero similarity.
func (e *Engine) scorePair(a, b *model.Finding) (model.Correlation, bool) {
	var (
		confidence float64
		sim        float64
		evidence   []string
	)

	if ha, ok := a.Evidence.Handle(); ok {
		if hb, ok := b.Evidence.Handle(); ok && strings.EqualFold(ha, hb) {
			confidence += exactMatchIncrement
			sim += exactMatchIncrement
			evidence = append(evidence, fmt.Sprintf("shared handle %q", ha))
		}
	}
	if ea, ok := a.Evidence.Email(); ok {
		if eb, ok := b.Evidence.Email(); ok && strings.EqualFold(ea, eb) {
			confidence += exactMatchIncrement
			sim += exactMatchIncrement
			evidence = append(evidence, fmt.Sprintf("shared email %q", strings.ToLower(ea)))
		}
	}
	if pa, ok := a.Evidence.Phone(); ok {
		if pb, ok := b.Evidence.Phone(); ok && pa == pb {
			confidence += exactMatchIncrement
			sim += exactMatchIncrement
			evidence = append(evidence, fmt.Sprintf("shared phone %q", pa))
		}
	}

	delta := a.DiscoveredAt.Sub(b.DiscoveredAt)
	if delta < 0 {
		delta = -delta
	}
	if delta <= temporalWindow {
		confidence += temporalIncrement
		evidence = append(evidence, "discovered within 24h of each other")
	}

	var textSim float64
	if na, ok := a.Evidence.DisplayName(); ok {
		if nb, ok := b.Evidence.DisplayName(); ok {
			if s := similarity(na, nb); s >= nameFloor {
				confidence += nameWeight * s
				textSim = s
				evidence = append(evidence, fmt.Sprintf("similar names %q / %q", na, nb))
			}
		}
	}
	if la, ok := a.Evidence.Location(); ok {
		if lb, ok := b.Evidence.Location(); ok {
			if s := similarity(la, lb); s >= locationFloor {
				confidence += locationWeight * s
				if s > textSim {
					textSim = s
				}
				evidence = append(evidence, fmt.Sprintf("similar locations %q / %q", la, lb))
			}
		}
	}
	sim += textSim

	confidence = model.ClampScore(confidence)
	if confidence < retentionThreshold {
		return model.Correlation{}, false
	}

	return model.Correlation{
		FindingA:   a,
		FindingB:   b,
		Confidence: confidence,
		Similarity: model.ClampScore(sim),
		Strength:   model.StrengthForConfidence(confidence),
		Evidence:   evidence,
	}, true
}

// Summarize aggregates a correlation run for one target. The overall
// confidence is the mean retained confidence plus a corroboration bonus of
// 0.02 per correlation capped at 0.1, the whole capped at 1. An empty
// correlation set summarizes to zero confidence.
func (e *Engine) Summarize(target string, findings []*model.Finding, correlations []model.Correlation) model.CorrelationSummary {
	summary := model.CorrelationSummary{
		Target:           target,
		FindingCount:     len(findings),
		CorrelationCount: len(correlations),
	}
	if len(correlations) == 0 {
		return summary
	}

	var sum float64
	for _, c := range correlations {
		sum += c.Confidence
	}
	mean := sum / float64(len(correlations))

	bonus := 0.02 * float64(len(correlations))
	if bonus > 0.1 {
		bonus = 0.1
	}

	summary.OverallConfidence = model.ClampScore(mean + bonus)
	return summary
}
