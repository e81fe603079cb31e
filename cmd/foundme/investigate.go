package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"os/user"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/foundme/foundme/internal/adapter"
	"github.com/foundme/foundme/internal/config"
	"github.com/foundme/foundme/internal/log"
	"github.com/foundme/foundme/internal/model"
	"github.com/foundme/foundme/internal/orchestrator"
	"github.com/foundme/foundme/internal/store"
)

// NewInvestigateCmd creates the investigate command.
func NewInvestigateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "investigate [identifier...]",
		Short: "Search public sources for traces of an identity",
		Long: `Investigate creates a search session for one or more identifiers and
runs every applicable tool against them. Findings are stored locally and
can be rendered later with the report command.

The search kind selects which tools run:
  username-search  platform account sweeps
  email-search     breach corpora and registration checks
  phone-search     carrier and region lookup
  full-profile     everything applicable per identifier

Examples:
  # Sweep platforms for a username
  foundme investigate jdoe --kind username-search

  # Full profile across mixed identifiers
  foundme investigate jdoe --email jdoe@example.com --phone +15551234567

  # Use a custom configuration file with tool endpoints
  foundme investigate jdoe -c myconfig.yml`,
		Args: cobra.ArbitraryArgs,
		RunE: runInvestigateCmd,
	}

	cmd.Flags().StringP("kind", "k", model.SearchFullProfile.String(),
		"Search kind: username-search, email-search, phone-search, or full-profile")
	cmd.Flags().StringSlice("email", nil,
		"Additional email address targets (repeatable)")
	cmd.Flags().StringSlice("phone", nil,
		"Additional phone number targets (repeatable)")
	cmd.Flags().StringSlice("username", nil,
		"Additional username targets (repeatable)")
	cmd.Flags().StringP("label", "l", "",
		"Human-readable session label")
	cmd.Flags().String("owner", "",
		"Principal id owning the session (default: local OS username)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultToolTimeout,
		"Timeout for each tool invocation")
	cmd.Flags().Int("concurrency", config.DefaultConcurrency,
		"Number of tools invoked in parallel")
	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .foundme.yml in current or home directory)")

	return cmd
}

// runInvestigateCmd executes the investigate command.
func runInvestigateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runInvestigate(ctx, cfg, logger)
}

// runInvestigate creates and executes one search session.
func runInvestigate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := store.Open(cfg.DBDir, store.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()
	logger.Info("database opened", "dir", cfg.DBDir)

	orch := orchestrator.New(st, buildRegistry(cfg), buildQuota(cfg, st),
		orchestrator.WithToolTimeout(cfg.ToolTimeout),
		orchestrator.WithConcurrency(cfg.Concurrency),
		orchestrator.WithLogger(logger),
		orchestrator.WithNotifier(orchestrator.NewNotifier(config.DefaultNotifyBuffer, logger)),
	)

	principal := orchestrator.Principal{ID: cfg.OwnerID, Role: orchestrator.RoleUser}

	session, err := orch.Create(ctx, principal, model.SearchKind(cfg.Kind), cfg.Targets, cfg.Label)
	if err != nil {
		return err
	}

	fmt.Printf("Session %s created (%s, %d identifier(s))\n", session.ID, session.Kind, len(session.Identifiers))
	start := time.Now()

	if err := orch.Execute(ctx, session.ID); err != nil {
		return fmt.Errorf("session execution failed: %w", err)
	}

	final, err := orch.Status(ctx, principal, session.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Session %s in %s: %d finding(s)\n",
		final.State, time.Since(start).Round(time.Millisecond), final.ResultCount)
	if skipped := final.Metadata["skipped_tools"]; skipped != "" {
		fmt.Printf("  skipped tools: %s\n", skipped)
	}
	if failed := final.Metadata["failed_tools"]; failed != "" {
		fmt.Printf("  failed tools:  %s\n", failed)
	}
	if final.LastError != "" {
		fmt.Printf("  error: %s\n", final.LastError)
	}

	fmt.Printf("\nRun `foundme report %s` to see the full picture.\n", cfg.Targets[0])
	return nil
}

// buildConfig creates a Config from cobra command flags. Positional
// arguments and the per-category target flags are merged into one target
// list.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Kind, err = cmd.Flags().GetString("kind")
	if err != nil {
		return nil, err
	}

	cfg.Label, err = cmd.Flags().GetString("label")
	if err != nil {
		return nil, err
	}

	cfg.OwnerID, err = cmd.Flags().GetString("owner")
	if err != nil {
		return nil, err
	}
	if cfg.OwnerID == "" {
		cfg.OwnerID = localOwner()
	}

	cfg.ToolTimeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("concurrency")
	if err != nil {
		return nil, err
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if dbDir != "" {
		cfg.DBDir = dbDir
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadConfigFile(cfg); err != nil {
		return nil, err
	}

	cfg.Targets = args
	for _, flag := range []string{"username", "email", "phone"} {
		extra, err := cmd.Flags().GetStringSlice(flag)
		if err != nil {
			return nil, err
		}
		cfg.Targets = append(cfg.Targets, extra...)
	}

	// Mixed identifier categories force a composite session.
	if mixedCategories(cmd) {
		cfg.Kind = model.SearchFullProfile.String()
	}

	return cfg, nil
}

// loadConfigFile resolves and loads the YAML config file.
// An explicit path that does not exist is an error; an absent default
// file is not.
func loadConfigFile(cfg *config.Config) error {
	explicit := cfg.ConfigFilePath != ""
	path := config.FindConfigFile(cfg.ConfigFilePath)

	if path == "" {
		if explicit {
			return fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
		}
		return nil
	}

	file, err := config.LoadConfigFile(path)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	cfg.File = file
	return nil
}

// mixedCategories reports whether targets from more than one category
// flag were supplied.
func mixedCategories(cmd *cobra.Command) bool {
	var set int
	for _, flag := range []string{"username", "email", "phone"} {
		if extra, err := cmd.Flags().GetStringSlice(flag); err == nil && len(extra) > 0 {
			set++
		}
	}
	return set > 1
}

// localOwner returns the OS username, falling back to "local".
func localOwner() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}

// setupLogger creates a redacting structured logger based on the global
// verbosity and format flags.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, _ = cmd.Root().PersistentFlags().GetBool("verbose")
	}
	jsonLog, err := cmd.Flags().GetBool("json-log")
	if err != nil {
		jsonLog, _ = cmd.Root().PersistentFlags().GetBool("json-log")
	}

	if jsonLog {
		return log.NewJSONLogger(os.Stderr, verbose)
	}
	return log.NewLogger(os.Stderr, verbose)
}

// buildRegistry constructs the adapter registry from the configuration.
// Tools backed by a remote service are registered only when the config
// file names an endpoint for them; the offline tools always run.
func buildRegistry(cfg *config.Config) *adapter.Registry {
	client := &http.Client{Timeout: cfg.ToolTimeout}
	platforms := platformTable(cfg)
	reg := adapter.NewRegistry()

	reg.Register(adapter.NewPresenceAdapter(client,
		budgetFor(cfg, "sherlock", config.DefaultBudgetSherlock), platforms))
	reg.Register(adapter.NewProfileAdapter(client,
		budgetFor(cfg, "maigret", config.DefaultBudgetMaigret), platforms))
	reg.Register(adapter.NewPhoneLookupAdapter(
		budgetFor(cfg, "phoneinfoga", config.DefaultBudgetPhoneinfoga)))

	if ep := endpointFor(cfg, "h8mail"); ep != "" {
		reg.Register(adapter.NewBreachAdapter(client,
			budgetFor(cfg, "h8mail", config.DefaultBudgetH8mail), ep))
	}
	if ep := endpointFor(cfg, "holehe"); ep != "" {
		reg.Register(adapter.NewEmailCheckAdapter(client,
			budgetFor(cfg, "holehe", config.DefaultBudgetHolehe), ep))
	}
	if ep := endpointFor(cfg, "theharvester"); ep != "" {
		reg.Register(adapter.NewHarvestAdapter(client,
			budgetFor(cfg, "theharvester", config.DefaultBudgetTheHarvester), ep))
	}
	if ep := endpointFor(cfg, "docmeta"); ep != "" {
		reg.Register(adapter.NewDocMetaAdapter(client,
			budgetFor(cfg, "docmeta", config.DefaultBudgetDocmeta), ep))
	}

	return reg
}

// platformTable converts configured platform entries, falling back to the
// built-in table when the config file lists none.
func platformTable(cfg *config.Config) []adapter.Platform {
	if cfg.File == nil || len(cfg.File.Platforms) == 0 {
		return nil
	}
	platforms := make([]adapter.Platform, len(cfg.File.Platforms))
	for i, p := range cfg.File.Platforms {
		platforms[i] = adapter.Platform{Name: p.Name, ProfileURL: p.ProfileURL}
	}
	return platforms
}

// budgetFor creates a tool's call budget, honoring config overrides.
// A configured max_calls of -1 lifts the limit entirely.
func budgetFor(cfg *config.Config, tool string, fallback int) *adapter.CallBudget {
	maxCalls := fallback
	if cfg.File != nil {
		if tc, ok := cfg.File.Tools[tool]; ok && tc.MaxCalls != 0 {
			if tc.MaxCalls < 0 {
				maxCalls = 0
			} else {
				maxCalls = tc.MaxCalls
			}
		}
	}
	return adapter.NewCallBudget(maxCalls, config.DefaultBudgetWindow)
}

// endpointFor returns a tool's configured endpoint, trimmed of a trailing
// slash. Empty when the tool is not configured.
func endpointFor(cfg *config.Config, tool string) string {
	if cfg.File == nil {
		return ""
	}
	return strings.TrimSuffix(cfg.File.Tools[tool].Endpoint, "/")
}

// buildQuota creates the session quota checker, counting usage from the
// local store.
func buildQuota(cfg *config.Config, st *store.Store) orchestrator.QuotaChecker {
	return &orchestrator.StaticQuota{
		Daily:   cfg.DailyQuota,
		Monthly: cfg.MonthlyQuota,
		CountSessions: func(ctx context.Context, principalID string) (int, int, error) {
			sessions, err := st.ListSessions(ctx, principalID, 0, 0)
			if err != nil {
				return 0, 0, err
			}

			now := time.Now().UTC()
			var day, month int
			for _, s := range sessions {
				if s.CreatedAt.Year() == now.Year() && s.CreatedAt.Month() == now.Month() {
					month++
					if s.CreatedAt.Day() == now.Day() {
						day++
					}
				}
			}
			return day, month, nil
		},
	}
}
