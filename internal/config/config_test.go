package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// validConfig returns a config that passes validation; tests mutate one
// field at a time.
func validConfig() *Config {
	c := NewConfig()
	c.Targets = []string{"alice"}
	c.Kind = "username-search"
	return c
}

func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	if c.ToolTimeout != DefaultToolTimeout {
		t.Errorf("ToolTimeout = %v, want %v", c.ToolTimeout, DefaultToolTimeout)
	}
	if c.Concurrency != DefaultConcurrency {
		t.Errorf("Concurrency = %d, want %d", c.Concurrency, DefaultConcurrency)
	}
	if c.DBDir == "" {
		t.Error("DBDir should default to the XDG data directory")
	}
	if c.UserAgent == "" {
		t.Error("UserAgent should have a default")
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "no targets",
			mutate:  func(c *Config) { c.Targets = nil },
			wantErr: ErrNoTarget,
		},
		{
			name:    "bad kind",
			mutate:  func(c *Config) { c.Kind = "reverse-image-search" },
			wantErr: ErrInvalidKind,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.ToolTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Concurrency = -1 },
			wantErr: ErrInvalidConcurrency,
		},
		{
			name: "both report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "negative quota",
			mutate:  func(c *Config) { c.DailyQuota = -5 },
			wantErr: ErrInvalidQuota,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateTimeout(t *testing.T) {
	t.Parallel()

	c := validConfig()
	c.ToolTimeout = 30 * time.Second
	if err := c.Validate(); err != nil {
		t.Errorf("positive timeout should validate, got %v", err)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads tools and platforms", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `tools:
  h8mail:
    endpoint: https://breach-index.internal
    max_calls: 10
  holehe:
    endpoint: https://probe.internal
platforms:
  - name: github
    profile_url: https://github.com/%s
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}

		h8 := f.Tools["h8mail"]
		if h8.Endpoint != "https://breach-index.internal" || h8.MaxCalls != 10 {
			t.Errorf("h8mail config = %+v", h8)
		}
		if f.Tools["holehe"].MaxCalls != 0 {
			t.Error("unset max_calls should stay zero (keep default)")
		}
		if len(f.Platforms) != 1 || f.Platforms[0].Name != "github" {
			t.Errorf("platforms = %+v", f.Platforms)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("tools: [not a map"), 0o600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("malformed yaml should error")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit path wins", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yml")
		if err := os.WriteFile(path, []byte("tools: {}"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile(%q) = %q", path, got)
		}
	})

	t.Run("explicit path missing returns empty", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "absent.yml")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}
