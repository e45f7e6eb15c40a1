// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"log/slog"
	"path/filepath"
	"testing"

	"flipfetch/internal/config"
	"flipfetch/internal/logging"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.CacheDir = filepath.Join(base, "cache")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Ledger.Path = filepath.Join(base, "history.db")

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithArtifactURL points the decoder at a test server.
func WithArtifactURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Decoder.ArtifactURL = url
	}
}

// WithInProcessDecoder switches decoding off the helper subprocess.
func WithInProcessDecoder() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Decoder.InProcess = true
	}
}

// NewLogger returns a silent logger for tests.
func NewLogger(testing.TB) *slog.Logger {
	return logging.NewNop()
}
