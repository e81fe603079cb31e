package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/foundme/foundme/internal/model"
)

// Platform describes one social platform the presence adapter sweeps.
type Platform struct {
	// Name is the platform's display name.
	Name string `yaml:"name"`

	// ProfileURL is a template with one %s placeholder for the username.
	ProfileURL string `yaml:"profile_url"`
}

// DefaultPlatforms is the built-in platform table for the presence sweep.
// The set can be extended via the config file.
func DefaultPlatforms() []Platform {
	return []Platform{
		{Name: "github", ProfileURL: "https://github.com/%s"},
		{Name: "gitlab", ProfileURL: "https://gitlab.com/%s"},
		{Name: "reddit", ProfileURL: "https://www.reddit.com/user/%s"},
		{Name: "twitter", ProfileURL: "https://x.com/%s"},
		{Name: "instagram", ProfileURL: "https://www.instagram.com/%s/"},
		{Name: "mastodon", ProfileURL: "https://mastodon.social/@%s"},
		{Name: "keybase", ProfileURL: "https://keybase.io/%s"},
		{Name: "medium", ProfileURL: "https://medium.com/@%s"},
	}
}

// presenceSweepConcurrency bounds parallel platform checks per invocation.
const presenceSweepConcurrency = 4

// PresenceAdapter sweeps a platform table for accounts registered under a
// handle. One HTTP probe per platform; a 200 response means the profile
// page exists.
//
// Design decision: The sweep runs inside the adapter rather than as
// separate adapters per platform because the orchestrator's unit of
// isolation is the tool, and "username sweep" is one tool. An errgroup
// with a small limit keeps the sweep polite.
type PresenceAdapter struct {
	client    *http.Client
	budget    *CallBudget
	platforms []Platform
}

// NewPresenceAdapter creates the presence adapter.
// A nil platform list uses DefaultPlatforms.
func NewPresenceAdapter(client *http.Client, budget *CallBudget, platforms []Platform) *PresenceAdapter {
	if platforms == nil {
		platforms = DefaultPlatforms()
	}
	return &PresenceAdapter{
		client:    client,
		budget:    budget,
		platforms: platforms,
	}
}

// Name returns the tool name.
func (a *PresenceAdapter) Name() string {
	return "sherlock"
}

// Available reports whether the adapter can run.
// The sweep targets many independent platforms, so there is no single
// backend to probe; only budget exhaustion makes the adapter unusable.
func (a *PresenceAdapter) Available(_ context.Context) bool {
	return a.budget.Remaining() != 0
}

// Invoke sweeps the platform table for the handle.
func (a *PresenceAdapter) Invoke(ctx context.Context, target string, category model.TargetCategory) ([]*model.Finding, error) {
	if category != model.TargetUsername {
		return nil, newInvokeError(a.Name(), KindBadTarget,
			fmt.Errorf("presence sweep requires a username, got %s", category))
	}
	if !a.budget.Allow() {
		return nil, newInvokeError(a.Name(), KindRateLimited, nil)
	}

	var (
		mu       sync.Mutex
		findings []*model.Finding
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(presenceSweepConcurrency)

	for _, platform := range a.platforms {
		platform := platform
		g.Go(func() error {
			profileURL := fmt.Sprintf(platform.ProfileURL, target)

			exists, err := a.profileExists(gctx, profileURL)
			if err != nil {
				// One unreachable platform doesn't invalidate the sweep.
				return nil //nolint:nilerr // per-platform failures are non-fatal
			}
			if !exists {
				return nil
			}

			f := model.NewFinding(target, model.TargetUsername, a.Name(), model.FindingAccountPresence,
				model.Evidence{Account: &model.AccountEvidence{
					Platform:   platform.Name,
					ProfileURL: profileURL,
					Username:   target,
				}}, 0.8)
			f.SourceURL = profileURL

			mu.Lock()
			findings = append(findings, f)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, newInvokeError(a.Name(), KindTimeout, err)
		}
		return nil, newInvokeError(a.Name(), KindUnknown, err)
	}

	return findings, nil
}

// profileExists probes one profile URL.
func (a *PresenceAdapter) profileExists(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
