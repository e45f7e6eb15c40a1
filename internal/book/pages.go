package book

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Page is one entry of a resolved page list. Filename is empty when the
// config entry names no file; downloads treat those as failures rather than
// silently shortening the book.
type Page struct {
	Index    int
	Filename string
}

// OutputName is the on-disk name for the page image, ordered by a
// zero-padded sequence prefix.
func (p Page) OutputName() string {
	if p.Filename == "" {
		return ""
	}
	return fmt.Sprintf("%03d_%s", p.Index+1, p.Filename)
}

// ManifestDecoder recovers plaintext page manifests from their obfuscated
// form. *destring.Service satisfies it.
type ManifestDecoder interface {
	DecodeManifest(ctx context.Context, ciphertext string) (string, error)
}

// ResolvePages turns the config's fliphtml5_pages value into page entries.
// A JSON array is used directly. A string is parsed as JSON when it looks
// like JSON, otherwise decoded through the manifest decoder first.
func ResolvePages(ctx context.Context, raw json.RawMessage, decoder ManifestDecoder) ([]Page, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, ErrNoPages
	}

	if trimmed[0] == '[' {
		return pagesFromJSON(trimmed)
	}

	var text string
	if err := json.Unmarshal([]byte(trimmed), &text); err != nil {
		return nil, fmt.Errorf("%w: unsupported fliphtml5_pages value", ErrNoPages)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoPages
	}
	if strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
		return pagesFromJSON(text)
	}

	if decoder == nil {
		return nil, fmt.Errorf("%w: page list is obfuscated and no decoder is configured", ErrNoPages)
	}
	plaintext, err := decoder.DecodeManifest(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("decode page manifest: %w", err)
	}
	return pagesFromJSON(plaintext)
}

// pagesFromJSON parses a page array, tolerating prefix/suffix noise around
// the brackets. Decoded manifests sometimes carry trailing runtime output.
func pagesFromJSON(text string) ([]Page, error) {
	raw := strings.TrimSpace(text)

	var entries []any
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		start := strings.Index(raw, "[")
		end := strings.LastIndex(raw, "]")
		if start == -1 || end == -1 || end <= start {
			return nil, fmt.Errorf("%w: no JSON array found", ErrNoPages)
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &entries); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoPages, err)
		}
	}
	if len(entries) == 0 {
		return nil, ErrNoPages
	}

	pages := make([]Page, 0, len(entries))
	for idx, entry := range entries {
		pages = append(pages, Page{Index: idx, Filename: entryFilename(entry)})
	}
	return pages, nil
}

// entryFilename extracts the image filename from one page entry: a bare
// string, or an object whose "n" field is a string or a list of strings.
func entryFilename(entry any) string {
	switch value := entry.(type) {
	case string:
		return value
	case map[string]any:
		switch n := value["n"].(type) {
		case string:
			return n
		case []any:
			if len(n) > 0 {
				if first, ok := n[0].(string); ok {
					return first
				}
			}
		}
	}
	return ""
}

// BuildPageURL resolves a page filename against the reader base URL.
// Absolute URLs pass through; leading "./" and "/" are stripped; paths
// already under files/ keep their size directory, anything else is assumed
// to live under files/<size>/.
func BuildPageURL(baseURL, filename, size string) string {
	if strings.HasPrefix(filename, "http://") || strings.HasPrefix(filename, "https://") {
		return filename
	}
	path := strings.TrimPrefix(filename, "./")
	path = strings.TrimPrefix(path, "/")
	if !strings.HasPrefix(path, "files/") {
		path = "files/" + size + "/" + path
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return baseURL + path
	}
	ref, err := url.Parse(path)
	if err != nil {
		return baseURL + path
	}
	return base.ResolveReference(ref).String()
}
