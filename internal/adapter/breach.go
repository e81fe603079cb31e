package adapter

import (
	"bufio"
	"context"
	"crypto/sha1" //nolint:gosec // SHA-1 is the breach index's k-anonymity scheme, not used for security
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/foundme/foundme/internal/model"
)

// hashPrefixLen is the number of hex characters sent to the breach index.
// The index answers with every record matching the prefix, so the queried
// address never leaves the process.
const hashPrefixLen = 5

// BreachAdapter queries a breach index for credential exposures.
//
// The index implements a k-anonymity range protocol: the client sends the
// first five characters of the SHA-1 of the lowercased address and receives
// one line per matching record in the form
//
//	SUFFIX:BREACH_NAME:DATE:DATA_CLASSES
//
// where DATA_CLASSES is a semicolon-separated list and DATE is YYYY-MM-DD.
type BreachAdapter struct {
	client  *http.Client
	budget  *CallBudget
	baseURL string
	probe   *availProbe
}

// NewBreachAdapter creates a breach index client.
func NewBreachAdapter(client *http.Client, budget *CallBudget, baseURL string) *BreachAdapter {
	return &BreachAdapter{
		client:  client,
		budget:  budget,
		baseURL: strings.TrimRight(baseURL, "/"),
		probe:   newAvailProbe(client, baseURL),
	}
}

// Name returns the tool name.
func (a *BreachAdapter) Name() string {
	return "h8mail"
}

// Available probes the breach index endpoint.
func (a *BreachAdapter) Available(ctx context.Context) bool {
	if a.budget.Remaining() == 0 {
		return false
	}
	return a.probe.available(ctx)
}

// Invoke queries the index for the email address.
func (a *BreachAdapter) Invoke(ctx context.Context, target string, category model.TargetCategory) ([]*model.Finding, error) {
	if category != model.TargetEmail {
		return nil, newInvokeError(a.Name(), KindBadTarget,
			fmt.Errorf("breach lookup requires an email, got %s", category))
	}
	if !a.budget.Allow() {
		return nil, newInvokeError(a.Name(), KindRateLimited, nil)
	}

	sum := sha1.Sum([]byte(strings.ToLower(target))) //nolint:gosec // k-anonymity hashing
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:hashPrefixLen], digest[hashPrefixLen:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/range/"+prefix, nil)
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
		return nil, newInvokeError(a.Name(), KindRateLimited, fmt.Errorf("index returned 429"))
	case resp.StatusCode != http.StatusOK:
		return nil, newInvokeError(a.Name(), KindUnavailable,
			fmt.Errorf("index returned status %d", resp.StatusCode))
	}

	var findings []*model.Finding
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		record := parseBreachRecord(scanner.Text())
		if record == nil || !strings.EqualFold(record.suffix, suffix) {
			continue
		}

		f := model.NewFinding(target, model.TargetEmail, a.Name(), model.FindingCredentialExposure,
			model.Evidence{Breach: &model.BreachEvidence{
				BreachName:      record.breach,
				Email:           strings.ToLower(target),
				BreachDate:      record.date,
				DataClasses:     record.dataClasses,
				PasswordExposed: record.passwordExposed(),
			}}, 0.95)
		findings = append(findings, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, newInvokeError(a.Name(), KindUnknown, err)
	}

	return findings, nil
}

// breachRecord is one parsed line of a range response.
type breachRecord struct {
	suffix      string
	breach      string
	date        time.Time
	dataClasses []string
}

// passwordExposed reports whether password material was part of the breach.
func (r *breachRecord) passwordExposed() bool {
	for _, class := range r.dataClasses {
		if strings.EqualFold(class, "passwords") {
			return true
		}
	}
	return false
}

// parseBreachRecord parses "SUFFIX:BREACH:DATE:CLASS;CLASS" lines.
// Malformed lines return nil and are skipped.
func parseBreachRecord(line string) *breachRecord {
	parts := strings.SplitN(strings.TrimSpace(line), ":", 4)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil
	}

	record := &breachRecord{suffix: parts[0], breach: parts[1]}
	if len(parts) > 2 && parts[2] != "" {
		if d, err := time.Parse("2006-01-02", parts[2]); err == nil {
			record.date = d
		}
	}
	if len(parts) > 3 && parts[3] != "" {
		record.dataClasses = strings.Split(parts[3], ";")
	}
	return record
}
