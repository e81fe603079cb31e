package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/foundme/foundme/internal/model"
)

// PhoneLookupAdapter resolves a phone number's country and numbering-plan
// carrier from a built-in prefix table. The lookup is entirely offline, so
// the adapter never becomes unavailable for reachability reasons.
type PhoneLookupAdapter struct {
	budget *CallBudget
}

// phonePrefix describes one numbering-plan prefix.
type phonePrefix struct {
	prefix  string
	region  string
	carrier string
}

// phonePrefixTable is ordered longest-prefix-first per country so that the
// first match wins.
var phonePrefixTable = []phonePrefix{
	{prefix: "+1800", region: "US/CA", carrier: "toll-free"},
	{prefix: "+1888", region: "US/CA", carrier: "toll-free"},
	{prefix: "+1", region: "US/CA", carrier: "NANP"},
	{prefix: "+447", region: "GB", carrier: "mobile"},
	{prefix: "+44", region: "GB", carrier: "landline"},
	{prefix: "+336", region: "FR", carrier: "mobile"},
	{prefix: "+337", region: "FR", carrier: "mobile"},
	{prefix: "+33", region: "FR", carrier: "landline"},
	{prefix: "+4915", region: "DE", carrier: "mobile"},
	{prefix: "+4916", region: "DE", carrier: "mobile"},
	{prefix: "+4917", region: "DE", carrier: "mobile"},
	{prefix: "+49", region: "DE", carrier: "landline"},
	{prefix: "+8170", region: "JP", carrier: "mobile"},
	{prefix: "+8180", region: "JP", carrier: "mobile"},
	{prefix: "+8190", region: "JP", carrier: "mobile"},
	{prefix: "+81", region: "JP", carrier: "landline"},
	{prefix: "+614", region: "AU", carrier: "mobile"},
	{prefix: "+61", region: "AU", carrier: "landline"},
	{prefix: "+919", region: "IN", carrier: "mobile"},
	{prefix: "+918", region: "IN", carrier: "mobile"},
	{prefix: "+917", region: "IN", carrier: "mobile"},
	{prefix: "+91", region: "IN", carrier: "landline"},
	{prefix: "+55", region: "BR", carrier: ""},
	{prefix: "+234", region: "NG", carrier: ""},
	{prefix: "+7", region: "RU/KZ", carrier: ""},
	{prefix: "+86", region: "CN", carrier: ""},
}

// NewPhoneLookupAdapter creates the phone lookup adapter.
func NewPhoneLookupAdapter(budget *CallBudget) *PhoneLookupAdapter {
	return &PhoneLookupAdapter{budget: budget}
}

// Name returns the tool name.
func (a *PhoneLookupAdapter) Name() string {
	return "phoneinfoga"
}

// Available reports whether the adapter can run. The table lives in the
// binary, so only budget exhaustion disables the lookup.
func (a *PhoneLookupAdapter) Available(_ context.Context) bool {
	return a.budget.Remaining() != 0
}

// Invoke normalizes the number and resolves it against the prefix table.
func (a *PhoneLookupAdapter) Invoke(_ context.Context, target string, category model.TargetCategory) ([]*model.Finding, error) {
	if category != model.TargetPhone {
		return nil, newInvokeError(a.Name(), KindBadTarget,
			fmt.Errorf("number lookup requires a phone, got %s", category))
	}
	if !a.budget.Allow() {
		return nil, newInvokeError(a.Name(), KindRateLimited, nil)
	}

	normalized := model.NormalizePhone(target)
	region, carrier, ok := lookupPrefix(normalized)
	if !ok {
		// Unknown numbering plan is a valid empty result, not an error.
		return nil, nil
	}

	f := model.NewFinding(target, model.TargetPhone, a.Name(), model.FindingContactInfo,
		model.Evidence{Contact: &model.ContactEvidence{
			Phone:   normalized,
			Carrier: carrier,
			Region:  region,
			Source:  a.Name(),
		}}, 0.9)
	return []*model.Finding{f}, nil
}

// lookupPrefix finds the longest matching numbering-plan prefix.
func lookupPrefix(number string) (region, carrier string, ok bool) {
	for _, entry := range phonePrefixTable {
		if strings.HasPrefix(number, entry.prefix) {
			return entry.region, entry.carrier, true
		}
	}
	return "", "", false
}
