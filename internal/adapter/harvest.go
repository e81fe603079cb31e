package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/foundme/foundme/internal/model"
)

// HarvestAdapter asks the harvester service for contact identifiers related
// to the target's mail domain: other addresses on the same domain, handles
// seen alongside the target, and phone numbers from public listings.
//
//	GET {base}/harvest?q=... -> {"emails": [...], "handles": [...], "phones": [...]}
type HarvestAdapter struct {
	client  *http.Client
	budget  *CallBudget
	baseURL string
	probe   *availProbe
}

// harvestResponse is the service's JSON response.
type harvestResponse struct {
	Emails  []string `json:"emails"`
	Handles []string `json:"handles"`
	Phones  []string `json:"phones"`
}

// NewHarvestAdapter creates a harvester service client.
func NewHarvestAdapter(client *http.Client, budget *CallBudget, baseURL string) *HarvestAdapter {
	return &HarvestAdapter{
		client:  client,
		budget:  budget,
		baseURL: strings.TrimRight(baseURL, "/"),
		probe:   newAvailProbe(client, baseURL),
	}
}

// Name returns the tool name.
func (a *HarvestAdapter) Name() string {
	return "theharvester"
}

// Available probes the harvester service.
func (a *HarvestAdapter) Available(ctx context.Context) bool {
	if a.budget.Remaining() == 0 {
		return false
	}
	return a.probe.available(ctx)
}

// Invoke collects related contact identifiers for the email address.
func (a *HarvestAdapter) Invoke(ctx context.Context, target string, category model.TargetCategory) ([]*model.Finding, error) {
	if category != model.TargetEmail {
		return nil, newInvokeError(a.Name(), KindBadTarget,
			fmt.Errorf("harvest requires an email, got %s", category))
	}
	if !a.budget.Allow() {
		return nil, newInvokeError(a.Name(), KindRateLimited, nil)
	}

	endpoint := a.baseURL + "/harvest?q=" + url.QueryEscape(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, newInvokeError(a.Name(), KindUnknown, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newInvokeError(a.Name(), KindTimeout, err)
		}
		return nil, newInvokeError(a.Name(), KindUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newInvokeError(a.Name(), KindUnavailable,
			fmt.Errorf("service returned status %d", resp.StatusCode))
	}

	var result harvestResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, newInvokeError(a.Name(), KindUnknown, fmt.Errorf("malformed response: %w", err))
	}

	var findings []*model.Finding
	for _, email := range result.Emails {
		if strings.EqualFold(email, target) {
			continue // the target itself is not a discovery
		}
		findings = append(findings, a.contactFinding(target,
			&model.ContactEvidence{Email: strings.ToLower(email), Source: a.Name()}))
	}
	for _, handle := range result.Handles {
		findings = append(findings, a.contactFinding(target,
			&model.ContactEvidence{Handle: handle, Source: a.Name()}))
	}
	for _, phone := range result.Phones {
		findings = append(findings, a.contactFinding(target,
			&model.ContactEvidence{Phone: model.NormalizePhone(phone), Source: a.Name()}))
	}

	return findings, nil
}

// contactFinding wraps one harvested identifier.
// Harvested identifiers come from public listings with no account-level
// verification, so confidence is lower than direct probes.
func (a *HarvestAdapter) contactFinding(target string, contact *model.ContactEvidence) *model.Finding {
	return model.NewFinding(target, model.TargetEmail, a.Name(), model.FindingContactInfo,
		model.Evidence{Contact: contact}, 0.6)
}
