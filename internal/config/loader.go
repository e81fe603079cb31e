package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".foundme.yml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// ToolConfig overrides one tool's endpoint and call budget.
type ToolConfig struct {
	// Endpoint is the base URL of the tool's backing service. Tools with
	// no endpoint configured are left out of the registry.
	Endpoint string `yaml:"endpoint"`

	// MaxCalls overrides the tool's per-window call budget.
	// Zero keeps the built-in default; -1 means unlimited.
	MaxCalls int `yaml:"max_calls"`
}

// PlatformConfig is one platform entry for the presence and profile sweeps.
type PlatformConfig struct {
	// Name is the platform's display name.
	Name string `yaml:"name"`

	// ProfileURL is a template with one %s placeholder for the username.
	ProfileURL string `yaml:"profile_url"`
}

// File is the YAML configuration file contents.
//
//	tools:
//	  h8mail:
//	    endpoint: https://breach-index.internal
//	    max_calls: 20
//	platforms:
//	  - name: github
//	    profile_url: https://github.com/%s
type File struct {
	// Tools maps tool names to endpoint and budget overrides.
	Tools map[string]ToolConfig `yaml:"tools"`

	// Platforms replaces the built-in platform table when non-empty.
	Platforms []PlatformConfig `yaml:"platforms"`
}

// LoadConfigFile loads tool and platform configuration from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound. Callers decide
// whether that is fatal based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	if f.Tools == nil {
		f.Tools = make(map[string]ToolConfig)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file in order:
// the explicit path, then the current directory, then the home directory.
// Returns the empty string when nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
