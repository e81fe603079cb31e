package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/foundme/foundme/internal/adapter"
	"github.com/foundme/foundme/internal/model"
	"github.com/foundme/foundme/internal/store"
)

// Orchestrator errors.
var (
	// ErrQuotaExceeded is returned when the principal's quota admits no
	// further sessions. Nothing is persisted in that case.
	ErrQuotaExceeded = errors.New("session quota exceeded")

	// ErrForbidden is returned when a principal operates on a session it
	// does not own without an elevated role.
	ErrForbidden = errors.New("principal does not own this session")

	// ErrSessionTerminal is returned when cancelling or executing a
	// session that already completed or failed.
	ErrSessionTerminal = errors.New("session already reached a terminal state")
)

// Session metadata keys written during execution.
const (
	// metaSkippedTools lists tools skipped for unavailability.
	metaSkippedTools = "skipped_tools"
	// metaFailedTools lists tools whose invocation failed, with error kinds.
	metaFailedTools = "failed_tools"
)

// cancelReason is recorded as LastError on cancelled sessions.
const cancelReason = "cancelled by request"

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithToolTimeout bounds each adapter invocation.
func WithToolTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.toolTimeout = d }
}

// WithConcurrency bounds how many adapters run in parallel per session.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithNotifier sets the terminal-state notifier.
func WithNotifier(n *Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

// Orchestrator coordinates session lifecycle, adapter fan-out, and
// persistence.
type Orchestrator struct {
	store    *store.Store
	registry *adapter.Registry
	quota    QuotaChecker
	notifier *Notifier
	logger   *slog.Logger

	toolTimeout time.Duration
	concurrency int

	mu        sync.Mutex
	cancels   map[string]context.CancelFunc
	cancelled map[string]bool
}

// New creates an orchestrator.
func New(st *store.Store, registry *adapter.Registry, quota QuotaChecker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:       st,
		registry:    registry,
		quota:       quota,
		logger:      slog.Default(),
		toolTimeout: 2 * time.Minute,
		concurrency: 4,
		cancels:     make(map[string]context.CancelFunc),
		cancelled:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.notifier == nil {
		o.notifier = NewNotifier(64, o.logger)
	}
	return o
}

// Notifications returns the terminal-state notification stream.
func (o *Orchestrator) Notifications() <-chan Notification {
	return o.notifier.C()
}

// Create validates the request, checks the principal's quota, and persists
// a queued session. Quota exhaustion and validation failures reject the
// request before anything is written.
func (o *Orchestrator) Create(ctx context.Context, principal Principal, kind model.SearchKind, targets []string, label string) (*model.Session, error) {
	identifiers, err := classifyTargets(kind, targets)
	if err != nil {
		return nil, err
	}

	quota, err := o.quota.CheckQuota(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("quota check: %w", err)
	}
	if !quota.CanProceed {
		return nil, fmt.Errorf("%w: %d/%d today, %d/%d this month",
			ErrQuotaExceeded, quota.DailyUsed, quota.DailyLimit, quota.MonthlyUsed, quota.MonthlyLimit)
	}

	session, err := model.NewSession(principal.ID, kind, identifiers, label)
	if err != nil {
		return nil, err
	}
	if err := o.store.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	o.logger.Info("session created",
		"session_id", session.ID,
		"kind", kind.String(),
		"identifiers", len(identifiers))
	return session, nil
}

// classifyTargets validates raw targets against the search kind.
// Single-identifier kinds force the kind's category; full-profile infers
// a category per target.
func classifyTargets(kind model.SearchKind, targets []string) ([]model.Identifier, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownSearchKind, kind)
	}
	if len(targets) == 0 {
		return nil, model.ErrNoIdentifiers
	}

	identifiers := make([]model.Identifier, 0, len(targets))
	for _, raw := range targets {
		var (
			ident model.Identifier
			err   error
		)
		if kind == model.SearchFullProfile {
			ident, err = inferIdentifier(raw)
		} else {
			ident, err = model.NewIdentifier(raw, kind.TargetCategory())
		}
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", raw, err)
		}
		identifiers = append(identifiers, ident)
	}
	return identifiers, nil
}

// inferIdentifier guesses a target's category for composite searches.
// Addresses contain an @, numbers start with digits or +, everything else
// is treated as a handle.
func inferIdentifier(raw string) (model.Identifier, error) {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.Contains(trimmed, "@"):
		return model.NewIdentifier(trimmed, model.TargetEmail)
	case len(trimmed) > 0 && (trimmed[0] == '+' || trimmed[0] >= '0' && trimmed[0] <= '9'):
		return model.NewIdentifier(trimmed, model.TargetPhone)
	default:
		return model.NewIdentifier(trimmed, model.TargetUsername)
	}
}

// Execute runs a queued session to a terminal state. Adapter failures
// degrade the result set; only cancellation or a store write failure fails
// the session. Zero findings still completes.
func (o *Orchestrator) Execute(ctx context.Context, sessionID string) error {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.State.Terminal() {
		return fmt.Errorf("%w: %s", ErrSessionTerminal, session.State)
	}

	if err := session.Transition(model.StateRunning); err != nil {
		return err
	}
	if err := o.store.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}

	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.trackRunning(sessionID, cancel)
	defer o.untrackRunning(sessionID)

	run := o.fanOut(execCtx, session)

	if o.wasCancelled(sessionID) || execCtx.Err() != nil && ctx.Err() == nil {
		return o.finishFailed(ctx, session, cancelReason)
	}
	if run.storeErr != nil {
		return o.finishFailed(ctx, session, fmt.Sprintf("persist findings: %v", run.storeErr))
	}

	if len(run.skipped) > 0 {
		session.Metadata[metaSkippedTools] = strings.Join(run.skipped, ",")
	}
	if len(run.failed) > 0 {
		session.Metadata[metaFailedTools] = strings.Join(run.failed, ",")
	}
	session.ResultCount = run.count

	if err := session.Transition(model.StateCompleted); err != nil {
		return err
	}
	if err := o.store.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("persist completion: %w", err)
	}

	o.logger.Info("session completed",
		"session_id", session.ID,
		"findings", run.count,
		"skipped", len(run.skipped),
		"failed", len(run.failed))
	o.notify(session)
	return nil
}

// runResult aggregates one session's fan-out.
type runResult struct {
	count    int
	skipped  []string
	failed   []string
	storeErr error
}

// fanOut invokes every applicable adapter for every identifier, persisting
// findings as each invocation settles.
func (o *Orchestrator) fanOut(ctx context.Context, session *model.Session) *runResult {
	var (
		mu  sync.Mutex
		res runResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, ident := range session.Identifiers {
		ident := ident
		adapters := o.registry.Resolve(session.Kind, ident.Category)

		for _, ad := range adapters {
			ad := ad
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}

				if !ad.Available(gctx) {
					o.logger.Debug("tool unavailable, skipping",
						"session_id", session.ID, "tool", ad.Name())
					mu.Lock()
					res.skipped = append(res.skipped, ad.Name())
					mu.Unlock()
					return nil
				}

				tctx, tcancel := context.WithTimeout(gctx, o.toolTimeout)
				defer tcancel()

				findings, err := ad.Invoke(tctx, ident.Value, ident.Category)
				if err != nil {
					o.logger.Warn("tool invocation failed",
						"session_id", session.ID,
						"tool", ad.Name(),
						"kind", string(adapter.KindOf(err)),
						"error", err)
					mu.Lock()
					res.failed = append(res.failed, fmt.Sprintf("%s:%s", ad.Name(), adapter.KindOf(err)))
					mu.Unlock()
					return nil
				}
				if len(findings) == 0 {
					return nil
				}

				for _, f := range findings {
					f.SessionID = session.ID
				}

				// Cancelled sessions discard in-flight results.
				if gctx.Err() != nil {
					return nil
				}
				if err := o.store.InsertFindings(gctx, findings); err != nil {
					mu.Lock()
					if res.storeErr == nil {
						res.storeErr = err
					}
					mu.Unlock()
					return err // abort remaining invocations
				}

				mu.Lock()
				res.count += len(findings)
				mu.Unlock()
				return nil
			})
		}
	}

	// Errors are aggregated in res; the only error g.Wait can return is
	// the store failure already captured there.
	_ = g.Wait()

	sort.Strings(res.skipped)
	sort.Strings(res.failed)
	return &res
}

// finishFailed moves the session to failed and notifies.
func (o *Orchestrator) finishFailed(ctx context.Context, session *model.Session, reason string) error {
	if err := session.Fail(reason); err != nil {
		return err
	}
	if err := o.store.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("persist failure: %w", err)
	}

	o.logger.Warn("session failed", "session_id", session.ID, "reason", reason)
	o.notify(session)
	return nil
}

// Cancel requests termination of a session. Queued sessions fail
// immediately. Running sessions are signalled; the executing goroutine
// discards in-flight results and records the failure. Cancellation of a
// terminal session is an error.
func (o *Orchestrator) Cancel(ctx context.Context, principal Principal, sessionID string) error {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if !principal.mayAccess(session.OwnerID) {
		return ErrForbidden
	}
	if session.State.Terminal() {
		return fmt.Errorf("%w: %s", ErrSessionTerminal, session.State)
	}

	if session.State == model.StateQueued {
		return o.finishFailed(ctx, session, cancelReason)
	}

	// Running: signal the executor when it lives in this process,
	// otherwise force the state directly.
	o.mu.Lock()
	cancel, inProcess := o.cancels[sessionID]
	if inProcess {
		o.cancelled[sessionID] = true
	}
	o.mu.Unlock()

	if inProcess {
		cancel()
		return nil
	}
	return o.finishFailed(ctx, session, cancelReason)
}

// Status returns the session, enforcing ownership.
func (o *Orchestrator) Status(ctx context.Context, principal Principal, sessionID string) (*model.Session, error) {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !principal.mayAccess(session.OwnerID) {
		return nil, ErrForbidden
	}
	return session, nil
}

// Results returns a page of the session's findings, enforcing ownership.
// Reading is legal in any state; results are partial while running.
func (o *Orchestrator) Results(ctx context.Context, principal Principal, sessionID string, limit, offset int) ([]*model.Finding, error) {
	session, err := o.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !principal.mayAccess(session.OwnerID) {
		return nil, ErrForbidden
	}

	return o.store.SearchFindings(ctx, store.Filter{
		SessionID: sessionID,
		Limit:     limit,
		Offset:    offset,
	})
}

// notify publishes a terminal-state notification.
func (o *Orchestrator) notify(session *model.Session) {
	o.notifier.Publish(Notification{
		SessionID:   session.ID,
		OwnerID:     session.OwnerID,
		State:       session.State,
		ResultCount: session.ResultCount,
		Reason:      session.LastError,
		At:          time.Now().UTC(),
	})
}

func (o *Orchestrator) trackRunning(sessionID string, cancel context.CancelFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancels[sessionID] = cancel
}

func (o *Orchestrator) untrackRunning(sessionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.cancels, sessionID)
	delete(o.cancelled, sessionID)
}

func (o *Orchestrator) wasCancelled(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cancelled[sessionID]
}
