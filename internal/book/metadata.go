package book

import (
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Metadata is what the reader HTML reveals about a book. Raw keeps every
// <meta> name/property pair for callers that want more than the two picks.
type Metadata struct {
	Title       string
	Description string
	Raw         map[string]string
}

// ExtractMetadata parses reader HTML and picks a title and description with
// social-card fallbacks (og: first, then twitter:, then the plain tags).
// Malformed markup is tolerated; missing fields stay empty.
func ExtractMetadata(htmlText string) Metadata {
	raw := map[string]string{}

	root, err := html.Parse(strings.NewReader(htmlText))
	if err == nil {
		walk(root, func(node *html.Node) {
			switch node.Data {
			case "title":
				if node.FirstChild != nil && node.FirstChild.Type == html.TextNode {
					if text := strings.TrimSpace(node.FirstChild.Data); text != "" {
						raw["title"] = text
					}
				}
			case "meta":
				name, prop, content := attr(node, "name"), attr(node, "property"), attr(node, "content")
				if content == "" {
					return
				}
				if name != "" {
					raw[strings.ToLower(name)] = content
				}
				if prop != "" {
					raw[strings.ToLower(prop)] = content
				}
			}
		})
	}

	title := firstNonEmpty(raw["og:title"], raw["twitter:title"], raw["title"], raw["description"])
	description := firstNonEmpty(raw["og:description"], raw["description"], raw["twitter:description"])
	return Metadata{Title: title, Description: description, Raw: raw}
}

// FindConfigURL scans reader HTML for the config.js script tag and resolves
// its src against the base URL. Empty when no such tag exists; the caller
// falls back to the conventional javascript/config.js path.
func FindConfigURL(htmlText, baseURL string) string {
	var src string
	root, err := html.Parse(strings.NewReader(htmlText))
	if err != nil {
		return ""
	}
	walk(root, func(node *html.Node) {
		if src != "" || node.Data != "script" {
			return
		}
		if value := attr(node, "src"); strings.Contains(value, "javascript/config.js") {
			src = value
		}
	})
	if src == "" {
		return ""
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// FallbackTitle derives a presentable title from a "<publisher>/<book>"
// identity when the reader HTML carries none.
func FallbackTitle(bookID string) string {
	parts := strings.Split(bookID, "/")
	base := parts[len(parts)-1]

	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	title := strings.TrimSpace(cleaned.String())
	if title == "" {
		return "Untitled Book"
	}
	return cases.Title(language.Und).String(title)
}

func walk(node *html.Node, visit func(*html.Node)) {
	if node.Type == html.ElementNode {
		visit(node)
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

func attr(node *html.Node, key string) string {
	for _, a := range node.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
