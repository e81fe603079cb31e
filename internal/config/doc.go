// Package config holds runtime configuration for the foundme CLI.
//
// Configuration flows in one direction: CLI flags and an optional YAML
// file populate a Config, Validate rejects bad combinations before any
// work starts, and the populated struct is passed down by dependency
// injection. Nothing in this package is global state.
package config
