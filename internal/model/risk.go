package model

import "time"

// RiskLevel classifies overall exposure for a target.
type RiskLevel string

// Risk level constants.
const (
	// RiskLow indicates minimal observable exposure.
	RiskLow RiskLevel = "low"
	// RiskMedium indicates a footprint worth reviewing.
	RiskMedium RiskLevel = "medium"
	// RiskHigh indicates significant exposure requiring action.
	RiskHigh RiskLevel = "high"
	// RiskCritical indicates exposed credentials or equivalent severity.
	RiskCritical RiskLevel = "critical"
)

// String returns the string representation of the RiskLevel.
func (l RiskLevel) String() string {
	return string(l)
}

// RiskAssessment is a derived summary of exposure for one target.
// It is computed from the target's findings at request time and never stored.
type RiskAssessment struct {
	// Target is the identifier assessed.
	Target string `json:"target"`

	// Score is the accumulated weighted risk in [0,1].
	Score float64 `json:"score"`

	// Level is the label derived from Score via fixed cutoffs.
	Level RiskLevel `json:"level"`

	// Factors lists one human-readable explanation per contributing category.
	Factors []string `json:"factors"`

	// CategoryCounts is the number of findings per category.
	CategoryCounts map[FindingCategory]int `json:"category_counts"`

	// GeneratedAt is when the assessment was computed.
	GeneratedAt time.Time `json:"generated_at"`
}

// RecommendationPriority orders remediation guidance.
type RecommendationPriority string

// Recommendation priority constants.
const (
	// PriorityLow is ongoing-hygiene guidance.
	PriorityLow RecommendationPriority = "low"
	// PriorityMedium is guidance worth acting on soon.
	PriorityMedium RecommendationPriority = "medium"
	// PriorityHigh is guidance requiring immediate action.
	PriorityHigh RecommendationPriority = "high"
)

// Recommendation is a derived remediation entry with concrete actions.
type Recommendation struct {
	// Priority orders the recommendation against its peers.
	Priority RecommendationPriority `json:"priority"`

	// Category groups the recommendation (security, privacy, monitoring).
	Category string `json:"category"`

	// Title is a short headline.
	Title string `json:"title"`

	// Description explains why the recommendation applies.
	Description string `json:"description"`

	// Actions is the ordered checklist of concrete steps.
	Actions []string `json:"actions"`
}
