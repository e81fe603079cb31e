package orchestrator

import "context"

// Quota is one principal's session allowance as reported by the quota
// collaborator. Limits of zero mean unlimited.
//
// CanProceed is the collaborator's decision, not a derivation from the
// counts: a billing-backed checker can deny a suspended account whose
// usage is under every limit, and the counts stay truthful for the
// rejection message.
type Quota struct {
	DailyUsed    int
	DailyLimit   int
	MonthlyUsed  int
	MonthlyLimit int
	CanProceed   bool
}

// QuotaChecker reports a principal's current session allowance. The
// orchestrator consults it before persisting a new session; an exhausted
// quota rejects the request before anything is written.
//
// The production implementation sits in front of the billing service. An
// error from CheckQuota rejects the request too: failing open would make
// a billing outage a free-for-all.
type QuotaChecker interface {
	CheckQuota(ctx context.Context, principalID string) (Quota, error)
}

// StaticQuota is a QuotaChecker with fixed limits and usage counted
// locally from the store. It backs single-operator CLI deployments where
// no external billing service exists.
type StaticQuota struct {
	Daily   int
	Monthly int

	// CountSessions reports how many sessions the principal created in
	// the current day and month.
	CountSessions func(ctx context.Context, principalID string) (day, month int, err error)
}

// CheckQuota implements QuotaChecker. The decision is computed from the
// counted usage against the static limits; a limit of zero never rejects.
func (s *StaticQuota) CheckQuota(ctx context.Context, principalID string) (Quota, error) {
	q := Quota{DailyLimit: s.Daily, MonthlyLimit: s.Monthly}
	if s.CountSessions != nil {
		day, month, err := s.CountSessions(ctx, principalID)
		if err != nil {
			return Quota{}, err
		}
		q.DailyUsed = day
		q.MonthlyUsed = month
	}

	q.CanProceed = true
	if q.DailyLimit > 0 && q.DailyUsed >= q.DailyLimit {
		q.CanProceed = false
	}
	if q.MonthlyLimit > 0 && q.MonthlyUsed >= q.MonthlyLimit {
		q.CanProceed = false
	}
	return q, nil
}
