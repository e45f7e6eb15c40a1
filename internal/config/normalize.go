package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDownload()
	c.normalizeDecoder()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"output_dir", &c.Paths.OutputDir},
		{"cache_dir", &c.Paths.CacheDir},
		{"log_dir", &c.Paths.LogDir},
	}
	for _, field := range fields {
		expanded, err := ExpandPath(*field.value)
		if err != nil {
			return fmt.Errorf("expand %s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeDownload() {
	if c.Download.Workers <= 0 {
		c.Download.Workers = defaultWorkers
	}
	if strings.TrimSpace(c.Download.PageSize) == "" {
		c.Download.PageSize = defaultPageSize
	}
	if c.Download.RequestTimeout <= 0 {
		c.Download.RequestTimeout = defaultRequestTimeout
	}
	if strings.TrimSpace(c.Download.UserAgent) == "" {
		c.Download.UserAgent = defaultUserAgent
	}
}

func (c *Config) normalizeDecoder() {
	c.Decoder.ArtifactURL = strings.TrimSpace(c.Decoder.ArtifactURL)
	c.Decoder.HelperPath = strings.TrimSpace(c.Decoder.HelperPath)
	if c.Decoder.TimeoutSeconds <= 0 {
		c.Decoder.TimeoutSeconds = defaultDecodeWait
	}
}

func (c *Config) normalizeLedger() error {
	if strings.TrimSpace(c.Ledger.Path) == "" {
		c.Ledger.Path = defaultLedgerPath
	}
	expanded, err := ExpandPath(c.Ledger.Path)
	if err != nil {
		return fmt.Errorf("expand ledger path: %w", err)
	}
	c.Ledger.Path = expanded
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
