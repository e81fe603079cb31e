package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/foundme/foundme/internal/config"
	"github.com/foundme/foundme/internal/model"
	"github.com/foundme/foundme/internal/orchestrator"
	"github.com/foundme/foundme/internal/store"
)

// NewSessionsCmd creates the sessions command.
func NewSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List, cancel, or delete search sessions",
		Long: `Sessions lists stored search sessions with their state and result
counts, most recent first.

Examples:
  # List your sessions
  foundme sessions

  # Cancel a queued or running session
  foundme sessions --cancel 3f2a...

  # Delete a session and its findings
  foundme sessions --delete 3f2a...`,
		Args: cobra.NoArgs,
		RunE: runSessionsCmd,
	}

	cmd.Flags().String("owner", "", "Principal id (default: local OS username)")
	cmd.Flags().Bool("all", false, "List every owner's sessions")
	cmd.Flags().Int("limit", 20, "Maximum sessions to list")
	cmd.Flags().String("cancel", "", "Cancel the session with this id")
	cmd.Flags().String("delete", "", "Delete the session with this id and its findings")
	cmd.Flags().String("db-dir", "", "Database directory (default: XDG data directory)")

	return cmd
}

// runSessionsCmd executes the sessions command.
func runSessionsCmd(cmd *cobra.Command, _ []string) error {
	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	owner, err := cmd.Flags().GetString("owner")
	if err != nil {
		return err
	}
	if owner == "" {
		owner = localOwner()
	}

	all, err := cmd.Flags().GetBool("all")
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

	st, err := store.Open(dbDir, store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	if id, err := cmd.Flags().GetString("cancel"); err != nil {
		return err
	} else if id != "" {
		return cancelSession(ctx, st, owner, id)
	}

	if id, err := cmd.Flags().GetString("delete"); err != nil {
		return err
	} else if id != "" {
		if err := st.DeleteSession(ctx, id); err != nil {
			return err
		}
		fmt.Printf("Deleted session %s\n", id)
		return nil
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	listOwner := owner
	if all {
		listOwner = ""
	}
	sessions, err := st.ListSessions(ctx, listOwner, limit, 0)
	if err != nil {
		return err
	}

	return printSessions(cmd, sessions)
}

// cancelSession cancels one session through the orchestrator so the
// ownership and state checks apply.
func cancelSession(ctx context.Context, st *store.Store, owner, id string) error {
	orch := orchestrator.New(st, nil, &orchestrator.StaticQuota{})
	principal := orchestrator.Principal{ID: owner, Role: orchestrator.RoleUser}

	if err := orch.Cancel(ctx, principal, id); err != nil {
		return err
	}
	fmt.Printf("Cancelled session %s\n", id)
	return nil
}

// printSessions renders sessions as an aligned table.
func printSessions(cmd *cobra.Command, sessions []*model.Session) error {
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions stored.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSTATE\tFINDINGS\tCREATED\tTARGETS")
	for _, s := range sessions {
		targets := make([]string, len(s.Identifiers))
		for i, ident := range s.Identifiers {
			targets[i] = ident.Value
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.Kind, s.State, s.ResultCount,
			s.CreatedAt.Format("2006-01-02 15:04"),
			strings.Join(targets, ","))
	}
	return w.Flush()
}
