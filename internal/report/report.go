package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/foundme/foundme/internal/correlate"
	"github.com/foundme/foundme/internal/model"
	"github.com/foundme/foundme/internal/risk"
	"github.com/foundme/foundme/internal/store"
)

// Options selects which derived sections a report includes. Findings and
// per-category counts are always present; everything else is opt-in
// because correlation and risk are recomputed on every request.
type Options struct {
	// IncludeCorrelations adds cross-category correlations and their summary.
	IncludeCorrelations bool

	// IncludeTimeline adds findings grouped by discovery day.
	IncludeTimeline bool

	// IncludeRisk adds the weighted risk assessment.
	IncludeRisk bool

	// IncludeRecommendations adds the rule-based recommendation list.
	// Implies IncludeRisk since recommendations derive from the assessment.
	IncludeRecommendations bool
}

// FullOptions enables every report section.
func FullOptions() Options {
	return Options{
		IncludeCorrelations:    true,
		IncludeTimeline:        true,
		IncludeRisk:            true,
		IncludeRecommendations: true,
	}
}

// TimelineDay groups findings discovered on one calendar day (UTC).
type TimelineDay struct {
	// Date is the day in 2006-01-02 form.
	Date string `json:"date"`

	// Findings lists the day's findings, oldest first.
	Findings []*model.Finding `json:"findings"`
}

// Report is the aggregate view of everything known about one target.
// It is assembled at request time; nothing in it is stored state except
// the findings themselves.
type Report struct {
	// Target is the identifier the report covers.
	Target string `json:"target"`

	// GeneratedAt is when the report was assembled.
	GeneratedAt time.Time `json:"generated_at"`

	// FindingCount is the total number of findings.
	FindingCount int `json:"finding_count"`

	// CategoryCounts is the number of findings per category.
	CategoryCounts map[model.FindingCategory]int `json:"category_counts"`

	// Findings lists every finding for the target, newest first.
	Findings []*model.Finding `json:"findings"`

	// Timeline groups findings by discovery day. Nil unless requested.
	Timeline []TimelineDay `json:"timeline,omitempty"`

	// Correlations lists retained cross-category relationships.
	// Nil unless requested.
	Correlations []model.Correlation `json:"correlations,omitempty"`

	// CorrelationSummary aggregates the correlations. Nil unless requested.
	CorrelationSummary *model.CorrelationSummary `json:"correlation_summary,omitempty"`

	// Risk is the weighted exposure assessment. Nil unless requested.
	Risk *model.RiskAssessment `json:"risk,omitempty"`

	// Recommendations is the prioritized action list. Nil unless requested.
	Recommendations []model.Recommendation `json:"recommendations,omitempty"`
}

// Builder assembles reports from the store and the derivation engines.
type Builder struct {
	store    *store.Store
	engine   *correlate.Engine
	assessor *risk.Assessor
}

// NewBuilder creates a Builder. A nil engine or assessor falls back to
// the defaults so callers that never request those sections need not
// construct them.
func NewBuilder(st *store.Store, engine *correlate.Engine, assessor *risk.Assessor) *Builder {
	if engine == nil {
		engine = correlate.NewEngine()
	}
	if assessor == nil {
		assessor = risk.NewAssessor(risk.DefaultWeights())
	}
	return &Builder{
		store:    st,
		engine:   engine,
		assessor: assessor,
	}
}

// Build reads every finding for the target and assembles the report.
// Read and derivation errors propagate to the caller; a failed read never
// degrades into an empty report claiming there were no findings.
func (b *Builder) Build(ctx context.Context, target string, opts Options) (*Report, error) {
	findings, err := b.store.SearchFindings(ctx, store.Filter{Target: target})
	if err != nil {
		return nil, fmt.Errorf("load findings for %q: %w", target, err)
	}

	report := &Report{
		Target:         target,
		GeneratedAt:    time.Now().UTC(),
		FindingCount:   len(findings),
		CategoryCounts: countByCategory(findings),
		Findings:       findings,
	}

	if opts.IncludeTimeline {
		report.Timeline = buildTimeline(findings)
	}

	if opts.IncludeCorrelations {
		correlations := b.engine.Correlate(findings)
		summary := b.engine.Summarize(target, findings, correlations)
		report.Correlations = correlations
		report.CorrelationSummary = &summary
	}

	if opts.IncludeRisk || opts.IncludeRecommendations {
		assessment := b.assessor.Assess(target, findings)
		report.Risk = &assessment
		if opts.IncludeRecommendations {
			report.Recommendations = b.assessor.Recommend(assessment)
		}
	}

	return report, nil
}

// countByCategory tallies findings per category. Categories with no
// findings are omitted from the map.
func countByCategory(findings []*model.Finding) map[model.FindingCategory]int {
	counts := make(map[model.FindingCategory]int)
	for _, f := range findings {
		counts[f.Category]++
	}
	return counts
}

// buildTimeline groups findings by UTC discovery day, oldest day first.
func buildTimeline(findings []*model.Finding) []TimelineDay {
	byDay := make(map[string][]*model.Finding)
	for _, f := range findings {
		day := f.DiscoveredAt.UTC().Format("2006-01-02")
		byDay[day] = append(byDay[day], f)
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	timeline := make([]TimelineDay, 0, len(days))
	for _, day := range days {
		entries := byDay[day]
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].DiscoveredAt.Before(entries[j].DiscoveredAt)
		})
		timeline = append(timeline, TimelineDay{Date: day, Findings: entries})
	}
	return timeline
}
