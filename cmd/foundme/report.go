package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/foundme/foundme/internal/config"
	"github.com/foundme/foundme/internal/report"
	"github.com/foundme/foundme/internal/store"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <identifier>",
		Short: "Render the findings stored for an identifier",
		Long: `Report reads every stored finding for an identifier and renders an
aggregate report. Correlations and risk are recomputed from the current
finding set on every invocation.

Examples:
  # Everything, human-readable
  foundme report jdoe

  # Findings only, as JSON
  foundme report jdoe --findings-only --json

  # Markdown with risk and recommendations to a file
  foundme report jdoe --markdown -o reports/jdoe.md`,
		Args: cobra.ExactArgs(1),
		RunE: runReportCmd,
	}

	cmd.Flags().Bool("correlations", true, "Include cross-category correlations")
	cmd.Flags().Bool("timeline", true, "Include findings grouped by discovery day")
	cmd.Flags().Bool("risk", true, "Include the risk assessment")
	cmd.Flags().Bool("recommendations", true, "Include remediation recommendations")
	cmd.Flags().Bool("findings-only", false, "Shorthand for disabling every derived section")
	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")
	cmd.Flags().String("db-dir", "", "Database directory (default: XDG data directory)")

	return cmd
}

// runReportCmd executes the report command.
func runReportCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOut, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOut && markdownOut {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	opts, err := reportOptions(cmd)
	if err != nil {
		return err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	st, err := store.Open(dbDir, store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	builder := report.NewBuilder(st, nil, nil)
	rep, err := builder.Build(context.Background(), args[0], opts)
	if err != nil {
		return err
	}

	out, err := report.OpenOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var writer report.Writer
	switch {
	case jsonOut:
		writer = report.NewJSONWriter(out, report.WithPrettyPrint())
	case markdownOut:
		writer = report.NewMarkdownWriter(out)
	default:
		writer = report.NewTextWriter(out)
	}

	if _, err := writer.Write(rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// reportOptions assembles report options from the section flags.
func reportOptions(cmd *cobra.Command) (report.Options, error) {
	findingsOnly, err := cmd.Flags().GetBool("findings-only")
	if err != nil {
		return report.Options{}, err
	}
	if findingsOnly {
		return report.Options{}, nil
	}

	var opts report.Options
	for _, section := range []struct {
		flag string
		dst  *bool
	}{
		{"correlations", &opts.IncludeCorrelations},
		{"timeline", &opts.IncludeTimeline},
		{"risk", &opts.IncludeRisk},
		{"recommendations", &opts.IncludeRecommendations},
	} {
		v, err := cmd.Flags().GetBool(section.flag)
		if err != nil {
			return report.Options{}, err
		}
		*section.dst = v
	}
	return opts, nil
}
