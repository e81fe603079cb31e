package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"

	"github.com/foundme/foundme/internal/model"
)

// maxDocumentSize limits how much of a discovered document is downloaded.
// EXIF blocks sit near the front of the file, so 8MB is generous.
const maxDocumentSize = 8 * 1024 * 1024

// maxDocumentsPerTarget bounds how many discovered documents one invocation
// downloads and parses.
const maxDocumentsPerTarget = 16

// DocMetaAdapter discovers publicly indexed documents and images tied to a
// target and extracts embedded metadata from them.
//
// Discovery goes through a document index service:
//
//	GET {base}/documents?q=... -> [{"url": "...", "mime_type": "..."}]
//
// Each discovered document is downloaded (size-limited) and scanned for an
// EXIF block. Author, software, GPS position, and creation time leak
// routinely through files people publish without scrubbing, which is what
// makes this category worth surfacing.
type DocMetaAdapter struct {
	client  *http.Client
	budget  *CallBudget
	baseURL string
	probe   *availProbe
}

// documentRef is one entry of the index service's JSON response.
type documentRef struct {
	URL      string `json:"url"`
	MIMEType string `json:"mime_type,omitempty"`
}

// NewDocMetaAdapter creates a document metadata adapter.
func NewDocMetaAdapter(client *http.Client, budget *CallBudget, baseURL string) *DocMetaAdapter {
	return &DocMetaAdapter{
		client:  client,
		budget:  budget,
		baseURL: strings.TrimRight(baseURL, "/"),
		probe:   newAvailProbe(client, baseURL),
	}
}

// Name returns the tool name.
func (a *DocMetaAdapter) Name() string {
	return "docmeta"
}

// Available probes the document index service.
func (a *DocMetaAdapter) Available(ctx context.Context) bool {
	if a.budget.Remaining() == 0 {
		return false
	}
	return a.probe.available(ctx)
}

// Invoke discovers documents for the target and extracts their metadata.
// Usernames and email addresses are both valid discovery queries.
func (a *DocMetaAdapter) Invoke(ctx context.Context, target string, category model.TargetCategory) ([]*model.Finding, error) {
	if category != model.TargetUsername && category != model.TargetEmail {
		return nil, newInvokeError(a.Name(), KindBadTarget,
			fmt.Errorf("document discovery requires a username or email, got %s", category))
	}
	if !a.budget.Allow() {
		return nil, newInvokeError(a.Name(), KindRateLimited, nil)
	}

	refs, err := a.discoverDocuments(ctx, target)
	if err != nil {
		return nil, err
	}
	if len(refs) > maxDocumentsPerTarget {
		refs = refs[:maxDocumentsPerTarget]
	}

	var findings []*model.Finding
	for _, ref := range refs {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, newInvokeError(a.Name(), KindTimeout, ctx.Err())
			}
			return nil, newInvokeError(a.Name(), KindUnknown, ctx.Err())
		default:
		}

		doc, err := a.extractDocumentEvidence(ctx, ref)
		if err != nil || doc == nil {
			// Unreachable or metadata-free documents are not findings.
			continue
		}

		f := model.NewFinding(target, category, a.Name(), model.FindingDocumentMetadata,
			model.Evidence{Document: doc}, 0.85)
		f.SourceURL = ref.URL
		findings = append(findings, f)
	}

	return findings, nil
}

// discoverDocuments queries the index service for documents tied to the target.
func (a *DocMetaAdapter) discoverDocuments(ctx context.Context, target string) ([]documentRef, error) {
	endpoint := a.baseURL + "/documents?q=" + url.QueryEscape(target)
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
		return nil, newInvokeError(a.Name(), KindRateLimited, fmt.Errorf("index returned 429"))
	case resp.StatusCode != http.StatusOK:
		return nil, newInvokeError(a.Name(), KindUnavailable,
			fmt.Errorf("index returned status %d", resp.StatusCode))
	}

	var refs []documentRef
	if err := json.NewDecoder(resp.Body).Decode(&refs); err != nil {
		return nil, newInvokeError(a.Name(), KindUnknown, fmt.Errorf("malformed response: %w", err))
	}
	return refs, nil
}

// extractDocumentEvidence downloads one document and pulls its EXIF metadata.
// Returns nil when the document carries no metadata worth reporting.
func (a *DocMetaAdapter) extractDocumentEvidence(ctx context.Context, ref documentRef) (*model.DocumentEvidence, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, err
	}

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil {
		// Includes exif.ErrNoExif for clean files.
		return nil, err
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, err
	}

	doc := &model.DocumentEvidence{
		DocumentURL: ref.URL,
		MIMEType:    ref.MIMEType,
	}
	mapExifEntries(entries, doc)

	if doc.Author == "" && doc.Software == "" && doc.Location == "" &&
		doc.Latitude == 0 && doc.Longitude == 0 && doc.CreatedAt.IsZero() {
		return nil, nil
	}
	return doc, nil
}

// mapExifEntries maps the flat tag list onto document evidence fields.
func mapExifEntries(entries []exif.ExifTag, doc *model.DocumentEvidence) {
	var (
		latRaw, lonRaw []exifcommon.Rational
		latRef, lonRef string
	)

	for _, entry := range entries {
		switch entry.TagName {
		case "Artist", "XPAuthor":
			if doc.Author == "" {
				doc.Author = strings.TrimSpace(entry.Formatted)
			}
		case "Software":
			doc.Software = strings.TrimSpace(entry.Formatted)
		case "DateTimeOriginal", "DateTimeDigitized":
			if doc.CreatedAt.IsZero() {
				if ts, err := time.Parse("2006:01:02 15:04:05", entry.Formatted); err == nil {
					doc.CreatedAt = ts
				}
			}
		case "GPSLatitude":
			latRaw, _ = entry.Value.([]exifcommon.Rational)
		case "GPSLongitude":
			lonRaw, _ = entry.Value.([]exifcommon.Rational)
		case "GPSLatitudeRef":
			latRef = entry.Formatted
		case "GPSLongitudeRef":
			lonRef = entry.Formatted
		case "GPSAreaInformation":
			doc.Location = strings.TrimSpace(entry.Formatted)
		}
	}

	if lat, ok := rationalsToDegrees(latRaw); ok {
		if strings.EqualFold(latRef, "S") {
			lat = -lat
		}
		doc.Latitude = lat
	}
	if lon, ok := rationalsToDegrees(lonRaw); ok {
		if strings.EqualFold(lonRef, "W") {
			lon = -lon
		}
		doc.Longitude = lon
	}
	if doc.Location == "" && (doc.Latitude != 0 || doc.Longitude != 0) {
		doc.Location = fmt.Sprintf("%.5f,%.5f", doc.Latitude, doc.Longitude)
	}
}

// rationalsToDegrees converts an EXIF degrees/minutes/seconds triple to
// decimal degrees.
func rationalsToDegrees(raw []exifcommon.Rational) (float64, bool) {
	if len(raw) != 3 {
		return 0, false
	}
	parts := make([]float64, 3)
	for i, r := range raw {
		if r.Denominator == 0 {
			return 0, false
		}
		parts[i] = float64(r.Numerator) / float64(r.Denominator)
	}
	return parts[0] + parts[1]/60 + parts[2]/3600, true
}
