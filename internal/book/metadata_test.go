package book

import "testing"

const sampleHTML = `<!DOCTYPE html>
<html><head>
<title>  Plain Title </title>
<meta property="og:title" content="OG Title">
<meta property="og:description" content="OG description.">
<meta name="twitter:title" content="Twitter Title">
<script src="javascript/config.js?v=9"></script>
</head><body></body></html>`

func TestExtractMetadataPrefersOpenGraph(t *testing.T) {
	meta := ExtractMetadata(sampleHTML)
	if meta.Title != "OG Title" {
		t.Errorf("title = %q, want OG Title", meta.Title)
	}
	if meta.Description != "OG description." {
		t.Errorf("description = %q", meta.Description)
	}
	if meta.Raw["title"] != "Plain Title" {
		t.Errorf("raw title = %q, want trimmed Plain Title", meta.Raw["title"])
	}
}

func TestExtractMetadataFallsBackToTitleTag(t *testing.T) {
	meta := ExtractMetadata(`<html><head><title>Only Title</title></head></html>`)
	if meta.Title != "Only Title" {
		t.Errorf("title = %q, want Only Title", meta.Title)
	}
	if meta.Description != "" {
		t.Errorf("description = %q, want empty", meta.Description)
	}
}

func TestFindConfigURL(t *testing.T) {
	got := FindConfigURL(sampleHTML, "https://online.fliphtml5.com/pub/book/")
	want := "https://online.fliphtml5.com/pub/book/javascript/config.js?v=9"
	if got != want {
		t.Errorf("FindConfigURL = %q, want %q", got, want)
	}
	if got := FindConfigURL("<html></html>", "https://example.com/"); got != "" {
		t.Errorf("FindConfigURL without script = %q, want empty", got)
	}
}

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"pub/annual-report_2024", "Annual Report 2024"},
		{"pub/book", "Book"},
		{"pub/---", "Untitled Book"},
	}
	for _, tt := range tests {
		if got := FallbackTitle(tt.id); got != tt.want {
			t.Errorf("FallbackTitle(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}
