package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/foundme/foundme/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeCategorySummary(md, report)
	w.writeRisk(md, report)
	w.writeFindings(md, report)
	w.writeCorrelations(md, report)
	w.writeTimeline(md, report)
	w.writeRecommendations(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with target information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *Report) {
	md.H1("FoundMe Exposure Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Generated", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Findings", strconv.Itoa(report.FindingCount)},
		},
	})
	md.PlainText("")
}

// writeCategorySummary writes the per-category count table and a pie
// chart of the distribution.
func (w *MarkdownWriter) writeCategorySummary(md *markdown.Markdown, report *Report) {
	md.H2("Findings by Category")
	md.PlainText("")

	rows := make([][]string, 0, len(report.CategoryCounts)+1)
	for _, category := range model.AllFindingCategories() {
		if n := report.CategoryCounts[category]; n > 0 {
			rows = append(rows, []string{category.String(), strconv.Itoa(n)})
		}
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(report.FindingCount) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.FindingCount > 0 {
		w.writePieChart(md, report)
	}
}

// writePieChart writes a mermaid pie chart for the category distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *Report) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Category Distribution"),
		piechart.WithShowData(true),
	)

	for _, category := range model.AllFindingCategories() {
		if n := report.CategoryCounts[category]; n > 0 {
			chart.LabelAndIntValue(category.String(), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeRisk writes the risk assessment section with a level-matched alert.
func (w *MarkdownWriter) writeRisk(md *markdown.Markdown, report *Report) {
	if report.Risk == nil {
		return
	}

	md.H2("Risk Assessment")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Score", fmt.Sprintf("%.2f", report.Risk.Score)},
			{"Level", report.Risk.Level.String()},
		},
	})
	md.PlainText("")

	switch report.Risk.Level {
	case model.RiskCritical:
		md.Cautionf("Critical exposure. Credentials tied to this identity are likely compromised and require immediate action.")
	case model.RiskHigh:
		md.Warningf("High exposure. The combined footprint makes this identity an attractive target.")
	case model.RiskMedium:
		md.Importantf("Medium exposure. The footprint is worth reviewing and trimming.")
	default:
		md.Note("Low exposure observed for this identity.")
	}
	md.PlainText("")

	if len(report.Risk.Factors) > 0 {
		md.BulletList(report.Risk.Factors...)
		md.PlainText("")
	}
}

// writeFindings writes the findings table.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, report *Report) {
	md.H2("Findings")
	md.PlainText("")

	if len(report.Findings) == 0 {
		md.PlainText("No findings recorded for this target.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Findings))
	for i, f := range report.Findings {
		rows[i] = []string{
			f.Category.String(),
			f.Tool,
			truncateString(describeEvidence(f), 60),
			fmt.Sprintf("%.2f", f.Confidence),
			f.DiscoveredAt.Format("2006-01-02"),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Category", "Tool", "Evidence", "Confidence", "Discovered"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeCorrelations writes retained correlations and their summary.
func (w *MarkdownWriter) writeCorrelations(md *markdown.Markdown, report *Report) {
	if report.CorrelationSummary == nil {
		return
	}

	md.H2("Correlations")
	md.PlainText("")

	summary := report.CorrelationSummary
	md.PlainTextf("%d correlation(s) across %d finding(s), overall confidence %.2f.",
		summary.CorrelationCount, summary.FindingCount, summary.OverallConfidence)
	md.PlainText("")

	if len(report.Correlations) == 0 {
		return
	}

	rows := make([][]string, len(report.Correlations))
	for i, c := range report.Correlations {
		rows[i] = []string{
			c.FindingA.Category.String() + " / " + c.FindingB.Category.String(),
			string(c.Strength),
			fmt.Sprintf("%.2f", c.Confidence),
			truncateString(strings.Join(c.Evidence, "; "), 70),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Pair", "Strength", "Confidence", "Evidence"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeTimeline writes findings grouped by discovery day.
func (w *MarkdownWriter) writeTimeline(md *markdown.Markdown, report *Report) {
	if len(report.Timeline) == 0 {
		return
	}

	md.H2("Timeline")
	md.PlainText("")

	for _, day := range report.Timeline {
		items := make([]string, len(day.Findings))
		for i, f := range day.Findings {
			items[i] = fmt.Sprintf("%s via %s: %s", f.Category, f.Tool, describeEvidence(f))
		}

		md.PlainText("### " + day.Date)
		md.PlainText("")
		md.BulletList(items...)
		md.PlainText("")
	}
}

// writeRecommendations writes the prioritized action list.
func (w *MarkdownWriter) writeRecommendations(md *markdown.Markdown, report *Report) {
	if len(report.Recommendations) == 0 {
		return
	}

	md.H2("Recommendations")
	md.PlainText("")

	for _, rec := range report.Recommendations {
		md.PlainTextf("### [%s] %s", strings.ToUpper(string(rec.Priority)), rec.Title)
		md.PlainText("")
		md.PlainText(rec.Description)
		md.PlainText("")
		md.BulletList(rec.Actions...)
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [FoundMe](https://github.com/foundme/foundme)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
