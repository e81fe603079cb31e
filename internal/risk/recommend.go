package risk

import (
	"fmt"

	"github.com/foundme/foundme/internal/model"
)

// Recommend derives remediation guidance from an assessment. Rules fire on
// the category counts, high priority first, and a low-priority monitoring
// entry always closes the list so no report ends without a next step.
func (a *Assessor) Recommend(assessment model.RiskAssessment) []model.Recommendation {
	var recs []model.Recommendation
	counts := assessment.CategoryCounts

	if n := counts[model.FindingCredentialExposure]; n > 0 {
		recs = append(recs, model.Recommendation{
			Priority: model.PriorityHigh,
			Category: "security",
			Title:    "Rotate exposed credentials",
			Description: fmt.Sprintf(
				"Credentials tied to this identity appear in %d breach record(s). Until rotated, every reused password is a live attack path.", n),
			Actions: []string{
				"Change the password on every account using the exposed address",
				"Enable multi-factor authentication wherever it is offered",
				"Stop reusing passwords; adopt a password manager",
				"Check active sessions and revoke unrecognized devices",
			},
		})
	}

	if n := counts[model.FindingAccountPresence]; n > 0 {
		recs = append(recs, model.Recommendation{
			Priority: model.PriorityMedium,
			Category: "privacy",
			Title:    "Review discoverable accounts",
			Description: fmt.Sprintf(
				"%d platform account(s) are linkable to this identity through the handle alone.", n),
			Actions: []string{
				"Close accounts that are no longer used",
				"Use distinct handles for unrelated contexts",
				"Tighten per-platform privacy settings on accounts that stay",
			},
		})
	}

	if counts[model.FindingContactInfo] > 0 || counts[model.FindingDocumentMetadata] > 0 {
		recs = append(recs, model.Recommendation{
			Priority: model.PriorityMedium,
			Category: "data-hygiene",
			Title:    "Reduce leaked contact details and document metadata",
			Description: "Contact identifiers or document metadata tied to this identity are publicly " +
				"indexed. Phone numbers enable SIM-swap and smishing attacks; embedded GPS data reveals physical locations.",
			Actions: []string{
				"Request removal of listings exposing phone numbers or addresses",
				"Strip EXIF and author metadata from files before publishing",
				"Re-upload scrubbed versions of already-published documents where possible",
			},
		})
	}

	recs = append(recs, model.Recommendation{
		Priority:    model.PriorityLow,
		Category:    "monitoring",
		Title:       "Monitor this identity going forward",
		Description: "Exposure changes as new breaches surface and platforms index new content.",
		Actions: []string{
			"Re-run this search periodically",
			"Subscribe to breach notification services for the monitored addresses",
		},
	})

	return recs
}
