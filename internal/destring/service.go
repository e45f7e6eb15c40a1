package destring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"flipfetch/internal/destring/artifactcache"
	"flipfetch/internal/logging"
)

// Service is the orchestrator-facing entry point: it keeps the artifact
// cached and runs one isolated decode session per manifest.
type Service struct {
	cache       *artifactcache.Cache
	artifactURL string
	run         RunFunc
	logger      *slog.Logger
}

// NewService wires a decode service. run decides the isolation boundary
// (subprocess by default, in-process for debugging and tests).
func NewService(cache *artifactcache.Cache, artifactURL string, run RunFunc, logger *slog.Logger) *Service {
	return &Service{
		cache:       cache,
		artifactURL: strings.TrimSpace(artifactURL),
		run:         run,
		logger:      logging.NewComponentLogger(logger, "destring"),
	}
}

// DecodeManifest decodes one obfuscated page manifest to plaintext. On
// ErrPayloadNotFound or ErrHookNotFound it re-fetches the artifact once, on
// the theory the cached copy is stale, before giving up. Any other failure
// is surfaced directly; decode errors are never retried.
func (s *Service) DecodeManifest(ctx context.Context, ciphertext string) (string, error) {
	if s.artifactURL == "" {
		return "", fmt.Errorf("%w: artifact URL is empty", ErrConfig)
	}
	ciphertext = strings.TrimSpace(ciphertext)
	if ciphertext == "" {
		return "", fmt.Errorf("%w: empty ciphertext", ErrExecution)
	}

	artifactPath, err := s.cache.Ensure(ctx, s.artifactURL)
	if err != nil {
		return "", err
	}

	plaintext, err := s.run(ctx, artifactPath, ciphertext)
	if err == nil {
		return plaintext, nil
	}
	if !errors.Is(err, ErrPayloadNotFound) && !errors.Is(err, ErrHookNotFound) {
		return "", err
	}

	s.logger.Warn("decode failed with vendor-format error; refreshing cached artifact",
		logging.Error(err),
		logging.String(logging.FieldEventType, "artifact_refresh"),
		logging.String(logging.FieldErrorHint, "the vendor may have shipped a new decoder version"))

	artifactPath, refreshErr := s.cache.Refresh(ctx, s.artifactURL)
	if refreshErr != nil {
		return "", fmt.Errorf("refresh after %v: %w", err, refreshErr)
	}
	return s.run(ctx, artifactPath, ciphertext)
}
