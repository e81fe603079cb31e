package model

// CorrelationStrength classifies how strongly two findings relate.
//
// Design decision: Labels are defined across the full confidence range even
// though retained correlations always sit at or above the retention
// threshold. The summary's overall confidence reuses the same cutoffs, so
// the lower labels stay defined rather than collapsing into "strong only".
type CorrelationStrength string

// Correlation strength constants.
const (
	// StrengthNone indicates confidence below every labeled band.
	StrengthNone CorrelationStrength = "none"
	// StrengthWeak indicates confidence in [0.4, 0.6).
	StrengthWeak CorrelationStrength = "weak"
	// StrengthModerate indicates confidence in [0.6, 0.8).
	StrengthModerate CorrelationStrength = "moderate"
	// StrengthStrong indicates confidence at or above 0.8.
	StrengthStrong CorrelationStrength = "strong"
)

// Strength classification cutoffs.
const (
	strongCutoff   = 0.8
	moderateCutoff = 0.6
	weakCutoff     = 0.4
)

// StrengthForConfidence maps a confidence score to its strength label.
// This is a pure function of the confidence value.
func StrengthForConfidence(confidence float64) CorrelationStrength {
	switch {
	case confidence >= strongCutoff:
		return StrengthStrong
	case confidence >= moderateCutoff:
		return StrengthModerate
	case confidence >= weakCutoff:
		return StrengthWeak
	default:
		return StrengthNone
	}
}

// Correlation is a derived relationship between two findings of different
// categories belonging to the same target. Correlations are recomputed on
// every report request; they are a view over findings, never stored state.
type Correlation struct {
	// FindingA and FindingB are the related findings.
	// By construction their categories always differ.
	FindingA *Finding `json:"finding_a"`
	FindingB *Finding `json:"finding_b"`

	// Confidence is the accumulated match confidence in [0,1].
	Confidence float64 `json:"confidence"`

	// Similarity is the accumulated textual similarity in [0,1].
	Similarity float64 `json:"similarity"`

	// Strength is the label derived from Confidence.
	Strength CorrelationStrength `json:"strength"`

	// Evidence lists human-readable notes explaining which signals matched.
	Evidence []string `json:"evidence"`
}

// CorrelationSummary aggregates a correlation run for one target.
type CorrelationSummary struct {
	// Target is the identifier the correlations were computed for.
	Target string `json:"target"`

	// FindingCount is the number of findings considered.
	FindingCount int `json:"finding_count"`

	// CorrelationCount is the number of retained correlations.
	CorrelationCount int `json:"correlation_count"`

	// OverallConfidence is the mean retained confidence plus a small bonus
	// proportional to the number of independent corroborations, capped at 1.
	OverallConfidence float64 `json:"overall_confidence"`
}
