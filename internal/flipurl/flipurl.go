// Package flipurl normalizes FlipHTML5 share links into reader base URLs.
package flipurl

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

const readerHost = "online.fliphtml5.com"

// ErrInvalidShareURL indicates the URL does not name a publisher and book.
var ErrInvalidShareURL = errors.New("share URL must contain /<publisher>/<book>/")

// Normalize converts a share URL into the FlipHTML5 reader base URL
// (https://online.fliphtml5.com/<publisher>/<book>/). Scheme-less input is
// accepted and treated as https.
func Normalize(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidShareURL
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse share URL: %w", err)
	}

	var segments []string
	for _, part := range strings.Split(parsed.Path, "/") {
		if part != "" {
			segments = append(segments, part)
		}
	}
	if len(segments) < 2 {
		return "", ErrInvalidShareURL
	}

	publisher, book := segments[0], segments[1]
	return fmt.Sprintf("https://%s/%s/%s/", readerHost, publisher, book), nil
}

// BookID returns a stable "<publisher>/<book>" identity for a normalized
// reader base URL. It is used as the ledger key.
func BookID(baseURL string) string {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return strings.TrimSuffix(baseURL, "/")
	}
	return strings.Trim(parsed.Path, "/")
}
