package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/foundme/foundme/internal/model"
)

// maxProfileBodySize limits how much of a profile page is read.
// Profile metadata lives in the document head; 1MB covers pathological
// cases without risking memory exhaustion on streaming responses.
const maxProfileBodySize = 1 * 1024 * 1024

// ProfileAdapter fetches public profile pages for a handle and extracts
// the display name, location, and bio from the page metadata.
//
// Design decision: We parse with golang.org/x/net/html rather than regular
// expressions because profile pages embed their metadata in OpenGraph meta
// tags and title elements whose attribute order and quoting vary per
// platform. A real parser handles all of them uniformly.
type ProfileAdapter struct {
	client    *http.Client
	budget    *CallBudget
	platforms []Platform
}

// NewProfileAdapter creates the profile adapter.
// A nil platform list uses DefaultPlatforms.
func NewProfileAdapter(client *http.Client, budget *CallBudget, platforms []Platform) *ProfileAdapter {
	if platforms == nil {
		platforms = DefaultPlatforms()
	}
	return &ProfileAdapter{
		client:    client,
		budget:    budget,
		platforms: platforms,
	}
}

// Name returns the tool name.
func (a *ProfileAdapter) Name() string {
	return "maigret"
}

// Available reports whether the adapter can run.
func (a *ProfileAdapter) Available(_ context.Context) bool {
	return a.budget.Remaining() != 0
}

// Invoke fetches each platform's profile page for the handle and extracts
// whatever metadata the page exposes. Platforms without a profile simply
// contribute nothing.
func (a *ProfileAdapter) Invoke(ctx context.Context, target string, category model.TargetCategory) ([]*model.Finding, error) {
	if category != model.TargetUsername {
		return nil, newInvokeError(a.Name(), KindBadTarget,
			fmt.Errorf("profile extraction requires a username, got %s", category))
	}
	if !a.budget.Allow() {
		return nil, newInvokeError(a.Name(), KindRateLimited, nil)
	}

	var findings []*model.Finding
	for _, platform := range a.platforms {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, newInvokeError(a.Name(), KindTimeout, ctx.Err())
			}
			return nil, newInvokeError(a.Name(), KindUnknown, ctx.Err())
		default:
		}

		profileURL := fmt.Sprintf(platform.ProfileURL, target)
		meta, err := a.fetchProfileMeta(ctx, profileURL)
		if err != nil || meta.empty() {
			continue
		}

		f := model.NewFinding(target, model.TargetUsername, a.Name(), model.FindingProfileSummary,
			model.Evidence{Profile: &model.ProfileEvidence{
				Platform:    platform.Name,
				DisplayName: meta.displayName,
				Location:    meta.location,
				Bio:         meta.bio,
				AvatarURL:   meta.avatarURL,
			}}, 0.7)
		f.SourceURL = profileURL
		findings = append(findings, f)
	}

	return findings, nil
}

// profileMeta holds metadata extracted from one profile page.
type profileMeta struct {
	displayName string
	location    string
	bio         string
	avatarURL   string
}

// empty reports whether no metadata was found.
func (m profileMeta) empty() bool {
	return m.displayName == "" && m.location == "" && m.bio == "" && m.avatarURL == ""
}

// fetchProfileMeta fetches and parses one profile page.
func (a *ProfileAdapter) fetchProfileMeta(ctx context.Context, url string) (profileMeta, error) {
	var meta profileMeta

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return meta, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return meta, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return meta, fmt.Errorf("status %d", resp.StatusCode)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxProfileBodySize))
	if err != nil {
		return meta, err
	}

	walkProfileDoc(doc, &meta)
	return meta, nil
}

// walkProfileDoc recursively extracts profile metadata from the parse tree.
func walkProfileDoc(n *html.Node, meta *profileMeta) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "title":
			if meta.displayName == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				meta.displayName = cleanTitle(n.FirstChild.Data)
			}
		case "meta":
			applyMetaTag(n, meta)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkProfileDoc(c, meta)
	}
}

// applyMetaTag maps OpenGraph and named meta tags onto profile fields.
func applyMetaTag(n *html.Node, meta *profileMeta) {
	var property, content string
	for _, attr := range n.Attr {
		switch attr.Key {
		case "property", "name":
			property = attr.Val
		case "content":
			content = attr.Val
		}
	}
	if content == "" {
		return
	}

	switch property {
	case "og:title", "profile:username":
		meta.displayName = cleanTitle(content)
	case "og:description", "description":
		if meta.bio == "" {
			meta.bio = content
		}
	case "og:image":
		meta.avatarURL = content
	case "og:locality", "profile:location", "geo.placename":
		meta.location = content
	}
}

// cleanTitle strips common "Name - Platform" and "Name (@handle)" adornments.
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	for _, sep := range []string{" · ", " | ", " — ", " - "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
			break
		}
	}
	if idx := strings.Index(title, " (@"); idx > 0 {
		title = title[:idx]
	}
	return strings.TrimSpace(title)
}
