package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// configPrefix is the assignment wrapper config.js uses around its JSON body.
const configPrefix = "var htmlConfig = "

// pagesKey is the config field carrying the page list.
const pagesKey = "fliphtml5_pages"

// ErrNoPages indicates the config has no usable page list.
var ErrNoPages = errors.New("fliphtml5_pages not found or could not be decoded")

// Config is the parsed config.js document. Raw preserves the full JSON for
// --save-config; Pages is the fliphtml5_pages value before resolution.
type Config struct {
	Raw   json.RawMessage
	Pages json.RawMessage
}

// ParseConfig strips the var-assignment wrapper and trailing semicolon from
// config.js text and parses the JSON body.
func ParseConfig(text string) (*Config, error) {
	body := strings.TrimSpace(text)
	body = strings.TrimPrefix(body, configPrefix)
	body = strings.TrimSuffix(body, ";")

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("config is not a JSON object: %w", err)
	}
	return &Config{
		Raw:   json.RawMessage(body),
		Pages: fields[pagesKey],
	}, nil
}

// Encrypted reports whether the page list needs decoding before use. A plain
// JSON array is usable directly; anything else (typically an obfuscated
// string) must go through the manifest decoder.
func (c *Config) Encrypted() bool {
	trimmed := bytesTrimSpace(c.Pages)
	return len(trimmed) == 0 || trimmed[0] != '['
}

func bytesTrimSpace(b []byte) []byte {
	return []byte(strings.TrimSpace(string(b)))
}
