package model

import (
	"time"

	"github.com/google/uuid"
)

// FindingCategory classifies the kind of evidence a finding carries.
// The category selects which branch of the Evidence union is populated.
type FindingCategory string

// Finding category constants.
const (
	// FindingAccountPresence indicates an account registered on a platform.
	FindingAccountPresence FindingCategory = "account-presence"
	// FindingCredentialExposure indicates credentials found in a breach corpus.
	FindingCredentialExposure FindingCategory = "credential-exposure"
	// FindingDocumentMetadata indicates metadata extracted from a published document or image.
	FindingDocumentMetadata FindingCategory = "document-metadata"
	// FindingProfileSummary indicates profile details scraped from a public page.
	FindingProfileSummary FindingCategory = "profile-summary"
	// FindingContactInfo indicates a related contact identifier (email, phone, handle).
	FindingContactInfo FindingCategory = "contact-info"
)

// String returns the string representation of the FindingCategory.
func (c FindingCategory) String() string {
	return string(c)
}

// IsValid returns true if this is a known finding category.
func (c FindingCategory) IsValid() bool {
	switch c {
	case FindingAccountPresence, FindingCredentialExposure, FindingDocumentMetadata,
		FindingProfileSummary, FindingContactInfo:
		return true
	default:
		return false
	}
}

// AllFindingCategories lists every known finding category in stable order.
// Used for aggregate statistics and report rendering.
func AllFindingCategories() []FindingCategory {
	return []FindingCategory{
		FindingAccountPresence,
		FindingCredentialExposure,
		FindingDocumentMetadata,
		FindingProfileSummary,
		FindingContactInfo,
	}
}

// Finding is a single piece of evidence produced by one tool for one target.
// A finding belongs to exactly one Session and is immutable once written,
// except for the Verified flag and Tags which a human reviewer may update.
type Finding struct {
	// ID is an opaque unique token identifying the finding.
	ID string `json:"id"`

	// SessionID references the owning session.
	SessionID string `json:"session_id"`

	// Target is the identifier this finding is about.
	Target string `json:"target"`

	// TargetCategory classifies the target identifier.
	TargetCategory TargetCategory `json:"target_category"`

	// Tool names the adapter that produced this finding.
	Tool string `json:"tool"`

	// Category classifies the evidence and selects the Evidence union branch.
	Category FindingCategory `json:"category"`

	// Evidence is the tool-specific payload.
	Evidence Evidence `json:"evidence"`

	// Confidence is the tool's confidence in this finding, clamped to [0,1].
	Confidence float64 `json:"confidence"`

	// SourceURL is an optional locator for where the evidence was found.
	SourceURL string `json:"source_url,omitempty"`

	// DiscoveredAt is when the tool produced this finding.
	DiscoveredAt time.Time `json:"discovered_at"`

	// Verified is set by a human reviewer after confirming the evidence.
	Verified bool `json:"verified"`

	// Tags is an unordered set of free-text labels applied by reviewers.
	Tags []string `json:"tags,omitempty"`
}

// NewFinding creates a finding with a generated id and clamped confidence.
// The SessionID is assigned by the orchestrator when the finding is persisted;
// adapters leave it empty.
func NewFinding(target string, targetCategory TargetCategory, tool string, category FindingCategory, evidence Evidence, confidence float64) *Finding {
	return &Finding{
		ID:             uuid.NewString(),
		Target:         target,
		TargetCategory: targetCategory,
		Tool:           tool,
		Category:       category,
		Evidence:       evidence,
		Confidence:     ClampScore(confidence),
		DiscoveredAt:   time.Now().UTC(),
	}
}

// ClampScore bounds a score to [0,1].
// NaN is treated as zero so arithmetic on scores stays well-defined.
func ClampScore(score float64) float64 {
	if score != score { // NaN
		return 0
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// HasTag reports whether the finding carries the given tag.
func (f *Finding) HasTag(tag string) bool {
	for _, t := range f.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
