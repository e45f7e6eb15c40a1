package book

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"flipfetch/internal/flipurl"
	"flipfetch/internal/logging"
)

// Book is a fully resolved FlipHTML5 book: identity, display metadata, the
// page list, and the raw config for callers that persist it.
type Book struct {
	BaseURL     string
	ID          string
	Title       string
	Description string
	Encrypted   bool
	Pages       []Page
	ConfigJSON  json.RawMessage
}

// PageURL builds the download URL for one of the book's pages.
func (b *Book) PageURL(page Page, size string) string {
	return BuildPageURL(b.BaseURL, page.Filename, size)
}

// Loader resolves share URLs into books.
type Loader struct {
	client  *Client
	decoder ManifestDecoder
	logger  *slog.Logger
}

// NewLoader wires a loader. decoder may be nil; obfuscated page lists then
// fail with ErrNoPages instead of decoding.
func NewLoader(client *Client, decoder ManifestDecoder, logger *slog.Logger) *Loader {
	return &Loader{
		client:  client,
		decoder: decoder,
		logger:  logging.NewComponentLogger(logger, "book"),
	}
}

// Load fetches and resolves the book behind a share URL: normalize the URL,
// fetch the reader HTML, locate and parse config.js, and resolve the page
// list (decoding the manifest when the config carries it obfuscated).
func (l *Loader) Load(ctx context.Context, shareURL string) (*Book, error) {
	baseURL, err := flipurl.Normalize(shareURL)
	if err != nil {
		return nil, err
	}
	return l.Resolve(ctx, baseURL)
}

// Resolve loads a book from an already-normalized reader base URL.
func (l *Loader) Resolve(ctx context.Context, baseURL string) (*Book, error) {
	id := flipurl.BookID(baseURL)

	htmlText, err := l.client.FetchHTML(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	meta := ExtractMetadata(htmlText)

	configURL := FindConfigURL(htmlText, baseURL)
	if configURL == "" {
		configURL = baseURL + "javascript/config.js"
	}
	cfg, err := l.client.FetchConfig(ctx, configURL)
	if err != nil {
		return nil, err
	}

	encrypted := cfg.Encrypted()
	if encrypted {
		l.logger.Info("page list is obfuscated; decoding manifest",
			logging.String(logging.FieldBook, id))
	}
	pages, err := ResolvePages(ctx, cfg.Pages, l.decoder)
	if err != nil {
		return nil, fmt.Errorf("resolve pages for %s: %w", id, err)
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = FallbackTitle(id)
	}

	l.logger.Info("book resolved",
		logging.String(logging.FieldBook, id),
		logging.String("title", title),
		logging.Int("pages", len(pages)),
		logging.Bool("encrypted", encrypted))

	return &Book{
		BaseURL:     baseURL,
		ID:          id,
		Title:       title,
		Description: meta.Description,
		Encrypted:   encrypted,
		Pages:       pages,
		ConfigJSON:  cfg.Raw,
	}, nil
}
