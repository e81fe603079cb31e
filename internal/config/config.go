package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/foundme/foundme/internal/model"
)

// Default configuration values.
// Budgets follow the upstream tool services' published rate limits; the
// rest are chosen for interactive CLI use.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "foundme"

	// DefaultToolTimeout bounds one adapter invocation. Most lookups
	// answer in seconds; two minutes accommodates the presence sweep,
	// which probes several platforms per call.
	DefaultToolTimeout = 2 * time.Minute

	// DefaultConcurrency is the number of adapters invoked in parallel
	// per session. The adapters are I/O bound, so a small limit keeps
	// memory flat without serializing the run.
	DefaultConcurrency = 4

	// DefaultUserAgent identifies foundme in HTTP requests. A descriptive
	// User-Agent lets service operators identify scanner traffic.
	DefaultUserAgent = "foundme/1.0 (+https://github.com/foundme/foundme)"

	// DefaultNotifyBuffer is the completion-notification channel depth.
	// Notifications are advisory; when the buffer fills, new ones are
	// dropped rather than blocking session completion.
	DefaultNotifyBuffer = 64

	// DefaultDailyQuota and DefaultMonthlyQuota bound sessions per
	// principal. Zero means unlimited; the defaults match the upstream
	// service's free tier.
	DefaultDailyQuota   = 50
	DefaultMonthlyQuota = 1000
)

// Default per-tool call budgets, calls per hour. These mirror the rate
// limits the wrapped tools impose upstream; exceeding them locally only
// moves the failure from our side to theirs.
const (
	DefaultBudgetSherlock     = 50
	DefaultBudgetTheHarvester = 30
	DefaultBudgetHolehe       = 100
	DefaultBudgetH8mail       = 20
	DefaultBudgetMaigret      = 60
	DefaultBudgetPhoneinfoga  = 40
	DefaultBudgetDocmeta      = 30

	// DefaultBudgetWindow is the reset window for every call budget.
	DefaultBudgetWindow = time.Hour
)

// Config holds all configuration options for foundme.
// This struct is populated from CLI flags and the optional config file and
// passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// Targets is the list of identifiers to search. Each is classified as
	// username, email, or phone at session creation.
	Targets []string

	// Kind selects which tool set runs: username-search, email-search,
	// phone-search, or full-profile.
	Kind string

	// Label is an optional human-readable session label.
	Label string

	// OwnerID identifies the principal creating sessions. Defaults to the
	// local OS username when empty.
	OwnerID string

	// ToolTimeout bounds each adapter invocation.
	ToolTimeout time.Duration

	// Concurrency is the number of adapters invoked in parallel.
	Concurrency int

	// DailyQuota and MonthlyQuota bound sessions per principal.
	// Zero means unlimited.
	DailyQuota   int
	MonthlyQuota int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONLog switches log output to JSON for aggregation.
	JSONLog bool

	// JSONReport and MarkdownReport select the report format.
	// Mutually exclusive; when neither is set, plain text is used.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output path for reports. When set, the report is
	// written to this file instead of stdout; parent directories are
	// created as needed.
	ReportFile string

	// DBDir is the directory holding the SQLite database.
	// Defaults to the XDG data directory.
	DBDir string

	// ConfigFilePath is the path to the YAML configuration file.
	// If empty, the tool searches .foundme.yml in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// File holds tool endpoints, budget overrides, and the platform table
	// loaded from the config file. Nil when no config file was found.
	File *File

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero. This also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		ToolTimeout:  DefaultToolTimeout,
		Concurrency:  DefaultConcurrency,
		DailyQuota:   DefaultDailyQuota,
		MonthlyQuota: DefaultMonthlyQuota,
		DBDir:        XDGDataDir(),
		UserAgent:    DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for foundme.
// On Linux: ~/.local/share/foundme
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for foundme.
// On Linux: ~/.config/foundme
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found; fixing one error often makes the
// others irrelevant.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if !model.SearchKind(c.Kind).IsValid() {
		return ErrInvalidKind
	}
	if c.ToolTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.DailyQuota < 0 || c.MonthlyQuota < 0 {
		return ErrInvalidQuota
	}
	return nil
}
