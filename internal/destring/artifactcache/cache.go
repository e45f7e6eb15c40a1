// Package artifactcache persists the vendor decoder artifact on disk, keyed
// by its source URL, so each version is fetched at most once.
package artifactcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"flipfetch/internal/logging"
)

// Failure classes for artifact acquisition. A missing or corrupt artifact
// makes decoding impossible, so neither is ever swallowed.
var (
	// ErrFetch indicates the network retrieval failed or returned a
	// non-success status.
	ErrFetch = errors.New("artifact fetch failed")
	// ErrCacheWrite indicates the artifact could not be persisted.
	ErrCacheWrite = errors.New("artifact cache write failed")
)

// Cache stores fetched artifacts under a deterministic per-identity filename.
// No index file exists; the identity maps directly to a name.
type Cache struct {
	dir    string
	client *http.Client
	logger *slog.Logger
}

// New creates a cache rooted at dir. A nil client falls back to
// http.DefaultClient; callers normally supply one with a timeout.
func New(dir string, client *http.Client, logger *slog.Logger) *Cache {
	if client == nil {
		client = http.DefaultClient
	}
	return &Cache{
		dir:    dir,
		client: client,
		logger: logging.NewComponentLogger(logger, "artifactcache"),
	}
}

// Path returns the deterministic cache location for an identity.
func (c *Cache) Path(identity string) string {
	return filepath.Join(c.dir, fileName(identity))
}

// Ensure returns the path of the cached artifact for identity, fetching it
// first if no non-empty cached copy exists. At most one fetch happens per
// identity per cache lifetime.
func (c *Cache) Ensure(ctx context.Context, identity string) (string, error) {
	target := c.Path(identity)
	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		return target, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: stat %s: %v", ErrCacheWrite, target, err)
	}
	return c.fetch(ctx, identity, target)
}

// Refresh discards any cached copy and fetches the artifact again. Callers
// use it when a decode failure suggests the cached artifact is stale.
func (c *Cache) Refresh(ctx context.Context, identity string) (string, error) {
	target := c.Path(identity)
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: remove %s: %v", ErrCacheWrite, target, err)
	}
	return c.fetch(ctx, identity, target)
}

// Clear removes every cached artifact.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) fetch(ctx context.Context, identity, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, identity, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request for %s: %v", ErrFetch, identity, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s returned status %d", ErrFetch, identity, resp.StatusCode)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create cache dir: %v", ErrCacheWrite, err)
	}

	// Write-then-rename so a crash mid-write never leaves a corrupt cached
	// artifact. Concurrent first-fetches are safe: last rename wins and the
	// content is identical.
	tmp, err := os.CreateTemp(c.dir, fileName(identity)+".tmp*")
	if err != nil {
		return "", fmt.Errorf("%w: create temp file: %v", ErrCacheWrite, err)
	}
	tmpPath := tmp.Name()
	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: close temp file: %v", ErrCacheWrite, err)
	}
	if written == 0 {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %s returned an empty body", ErrFetch, identity)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}

	c.logger.Info("decoder artifact cached",
		logging.String("url", identity),
		logging.String("path", target),
		logging.Int64("bytes", written))
	return target, nil
}

// fileName derives a readable, collision-safe cache filename from identity.
func fileName(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	prefix := hex.EncodeToString(sum[:])[:12]

	base := "artifact"
	if parsed, err := url.Parse(identity); err == nil {
		if name := path.Base(parsed.Path); name != "" && name != "." && name != "/" {
			base = name
		}
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	return prefix + "_" + base
}
