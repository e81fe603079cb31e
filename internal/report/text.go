package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/foundme/foundme/internal/model"
)

// TextWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// verbose enables additional detail in the output.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *TextWriter) Write(report *Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeCategorySummary(&sb, report)
	w.writeRisk(&sb, report)
	w.writeFindings(&sb, report)
	w.writeCorrelations(&sb, report)
	w.writeRecommendations(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with target information.
func (w *TextWriter) writeHeader(sb *strings.Builder, report *Report) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         FOUNDME REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:      %s\n", report.Target))
	sb.WriteString(fmt.Sprintf("Generated:   %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Findings:    %d\n", report.FindingCount))
	sb.WriteString("\n")
}

// writeCategorySummary writes the per-category count section.
func (w *TextWriter) writeCategorySummary(sb *strings.Builder, report *Report) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CATEGORY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, category := range model.AllFindingCategories() {
		sb.WriteString(fmt.Sprintf("  %-22s %d\n", category.String()+":", report.CategoryCounts[category]))
	}
	sb.WriteString("\n")
}

// writeRisk writes the risk assessment section.
func (w *TextWriter) writeRisk(sb *strings.Builder, report *Report) {
	if report.Risk == nil {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RISK ASSESSMENT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Score: %.2f\n", report.Risk.Score))
	sb.WriteString(fmt.Sprintf("  Level: %s\n", strings.ToUpper(report.Risk.Level.String())))
	sb.WriteString("\n")

	for _, factor := range report.Risk.Factors {
		sb.WriteString(fmt.Sprintf("  * %s\n", factor))
	}
	if len(report.Risk.Factors) > 0 {
		sb.WriteString("\n")
	}
}

// writeFindings writes the findings section grouped by category.
func (w *TextWriter) writeFindings(sb *strings.Builder, report *Report) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Findings) == 0 {
		sb.WriteString("  No findings recorded for this target\n\n")
		return
	}

	for _, category := range model.AllFindingCategories() {
		var findings []*model.Finding
		for _, f := range report.Findings {
			if f.Category == category {
				findings = append(findings, f)
			}
		}
		if len(findings) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(category.String())))
		for _, f := range findings {
			sb.WriteString(fmt.Sprintf("  * %s (%s, confidence %.2f)\n", describeEvidence(f), f.Tool, f.Confidence))
			if w.verbose && f.SourceURL != "" {
				sb.WriteString(fmt.Sprintf("    Source: %s\n", f.SourceURL))
			}
		}
		sb.WriteString("\n")
	}
}

// writeCorrelations writes the correlation section.
func (w *TextWriter) writeCorrelations(sb *strings.Builder, report *Report) {
	if report.CorrelationSummary == nil {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CORRELATIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	summary := report.CorrelationSummary
	sb.WriteString(fmt.Sprintf("  %d correlation(s), overall confidence %.2f\n\n",
		summary.CorrelationCount, summary.OverallConfidence))

	for _, c := range report.Correlations {
		sb.WriteString(fmt.Sprintf("  [%s] %s / %s (%.2f)\n",
			c.Strength, c.FindingA.Category, c.FindingB.Category, c.Confidence))
		for _, note := range c.Evidence {
			sb.WriteString(fmt.Sprintf("    - %s\n", note))
		}
	}
	if len(report.Correlations) > 0 {
		sb.WriteString("\n")
	}
}

// writeRecommendations writes the prioritized action list.
func (w *TextWriter) writeRecommendations(sb *strings.Builder, report *Report) {
	if len(report.Recommendations) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RECOMMENDATIONS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, rec := range report.Recommendations {
		sb.WriteString(fmt.Sprintf("[%s] %s\n", strings.ToUpper(string(rec.Priority)), rec.Title))
		sb.WriteString(fmt.Sprintf("  %s\n", rec.Description))
		for _, action := range rec.Actions {
			sb.WriteString(fmt.Sprintf("  - %s\n", action))
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by FoundMe\n")
	sb.WriteString("https://github.com/foundme/foundme\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// describeEvidence renders a finding's evidence branch as one short line.
func describeEvidence(f *model.Finding) string {
	switch f.Category {
	case model.FindingAccountPresence:
		if a := f.Evidence.Account; a != nil {
			return fmt.Sprintf("account %q on %s", a.Username, a.Platform)
		}
	case model.FindingCredentialExposure:
		if b := f.Evidence.Breach; b != nil {
			if b.PasswordExposed {
				return fmt.Sprintf("credentials exposed in %s (password included)", b.BreachName)
			}
			return fmt.Sprintf("credentials exposed in %s", b.BreachName)
		}
	case model.FindingDocumentMetadata:
		if d := f.Evidence.Document; d != nil {
			parts := make([]string, 0, 3)
			if d.Author != "" {
				parts = append(parts, "author "+d.Author)
			}
			if d.Location != "" {
				parts = append(parts, "location "+d.Location)
			}
			if d.Software != "" {
				parts = append(parts, "software "+d.Software)
			}
			if len(parts) == 0 {
				return "document metadata at " + d.DocumentURL
			}
			return "document metadata: " + strings.Join(parts, ", ")
		}
	case model.FindingProfileSummary:
		if p := f.Evidence.Profile; p != nil {
			if p.DisplayName != "" {
				return fmt.Sprintf("profile %q on %s", p.DisplayName, p.Platform)
			}
			return "profile on " + p.Platform
		}
	case model.FindingContactInfo:
		if c := f.Evidence.Contact; c != nil {
			switch {
			case c.Phone != "":
				return fmt.Sprintf("phone %s (%s, %s)", c.Phone, c.Carrier, c.Region)
			case c.Email != "":
				return "email " + c.Email
			case c.Handle != "":
				return "handle " + c.Handle
			}
		}
	}
	return "evidence for " + f.Target
}
