package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for values no component could work with.
func (c *Config) Validate() error {
	if c.Download.Workers < 1 || c.Download.Workers > 64 {
		return fmt.Errorf("download workers must be between 1 and 64, got %d", c.Download.Workers)
	}

	switch c.Download.PageSize {
	case "large", "small", "thumb":
	default:
		return fmt.Errorf("page_size must be one of large, small, thumb; got %q", c.Download.PageSize)
	}

	if c.Decoder.ArtifactURL == "" {
		return fmt.Errorf("decoder artifact_url must not be empty")
	}
	parsed, err := url.Parse(c.Decoder.ArtifactURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("decoder artifact_url %q is not an absolute URL", c.Decoder.ArtifactURL)
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level must be debug, info, warn, or error; got %q", c.Logging.Level)
	}

	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return fmt.Errorf("cache_dir must not be empty")
	}
	return nil
}
