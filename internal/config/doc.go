// Package config loads and validates the flipfetch TOML configuration.
//
// Configuration lives at ~/.config/flipfetch/config.toml by default. Load
// falls back to built-in defaults when the file is absent, expands ~ in every
// path field, and validates the result so downstream components never see an
// unusable value.
package config
