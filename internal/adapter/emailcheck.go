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

// EmailCheckAdapter asks the account-probe service which platforms have an
// account registered under an email address.
//
// The service wraps registration-flow probing (password-reset and signup
// endpoints of each platform) behind a single JSON API:
//
//	GET {base}/check?email=... -> [{"service": "...", "exists": true, "profile_url": "..."}]
//
// Probing registration flows directly from this process would couple the
// core to every platform's anti-automation defenses, which is exactly what
// the adapter boundary exists to keep out.
type EmailCheckAdapter struct {
	client  *http.Client
	budget  *CallBudget
	baseURL string
	probe   *availProbe
}

// emailCheckResult is one entry of the service's JSON response.
type emailCheckResult struct {
	Service    string `json:"service"`
	Exists     bool   `json:"exists"`
	ProfileURL string `json:"profile_url,omitempty"`
}

// NewEmailCheckAdapter creates an account-probe service client.
func NewEmailCheckAdapter(client *http.Client, budget *CallBudget, baseURL string) *EmailCheckAdapter {
	return &EmailCheckAdapter{
		client:  client,
		budget:  budget,
		baseURL: strings.TrimRight(baseURL, "/"),
		probe:   newAvailProbe(client, baseURL),
	}
}

// Name returns the tool name.
func (a *EmailCheckAdapter) Name() string {
	return "holehe"
}

// Available probes the account-probe service.
func (a *EmailCheckAdapter) Available(ctx context.Context) bool {
	if a.budget.Remaining() == 0 {
		return false
	}
	return a.probe.available(ctx)
}

// Invoke checks which platforms know the email address.
func (a *EmailCheckAdapter) Invoke(ctx context.Context, target string, category model.TargetCategory) ([]*model.Finding, error) {
	if category != model.TargetEmail {
		return nil, newInvokeError(a.Name(), KindBadTarget,
			fmt.Errorf("account probe requires an email, got %s", category))
	}
	if !a.budget.Allow() {
		return nil, newInvokeError(a.Name(), KindRateLimited, nil)
	}

	endpoint := a.baseURL + "/check?email=" + url.QueryEscape(target)
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

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, newInvokeError(a.Name(), KindRateLimited, fmt.Errorf("service returned 429"))
	case resp.StatusCode == http.StatusBadRequest:
		return nil, newInvokeError(a.Name(), KindBadTarget, fmt.Errorf("service rejected target"))
	case resp.StatusCode != http.StatusOK:
		return nil, newInvokeError(a.Name(), KindUnavailable,
			fmt.Errorf("service returned status %d", resp.StatusCode))
	}

	var results []emailCheckResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, newInvokeError(a.Name(), KindUnknown, fmt.Errorf("malformed response: %w", err))
	}

	var findings []*model.Finding
	for _, r := range results {
		if !r.Exists {
			continue
		}

		f := model.NewFinding(target, model.TargetEmail, a.Name(), model.FindingAccountPresence,
			model.Evidence{Account: &model.AccountEvidence{
				Platform:   r.Service,
				ProfileURL: r.ProfileURL,
				Email:      target,
			}}, 0.75)
		f.SourceURL = r.ProfileURL
		findings = append(findings, f)
	}

	return findings, nil
}
