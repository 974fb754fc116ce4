// Package config loads, normalizes, and validates Shuttle's TOML
// configuration. All consumers receive an explicit *Config; there is no
// process-wide configuration state.
package config
