package book

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeDecoder struct {
	plaintext string
	err       error
	calls     int
}

func (d *fakeDecoder) DecodeManifest(context.Context, string) (string, error) {
	d.calls++
	return d.plaintext, d.err
}

func TestResolvePagesPlainList(t *testing.T) {
	raw := json.RawMessage(`["p1.jpg", {"n": "p2.jpg"}, {"n": ["p3.jpg", "p3-alt.jpg"]}, {"n": []}]`)
	pages, err := ResolvePages(context.Background(), raw, nil)
	if err != nil {
		t.Fatalf("ResolvePages failed: %v", err)
	}
	want := []string{"p1.jpg", "p2.jpg", "p3.jpg", ""}
	if len(pages) != len(want) {
		t.Fatalf("got %d pages, want %d", len(pages), len(want))
	}
	for i, name := range want {
		if pages[i].Filename != name {
			t.Errorf("page %d filename = %q, want %q", i, pages[i].Filename, name)
		}
		if pages[i].Index != i {
			t.Errorf("page %d index = %d", i, pages[i].Index)
		}
	}
}

func TestResolvePagesJSONString(t *testing.T) {
	raw := json.RawMessage(`"[\"a.jpg\", \"b.jpg\"]"`)
	decoder := &fakeDecoder{}
	pages, err := ResolvePages(context.Background(), raw, decoder)
	if err != nil {
		t.Fatalf("ResolvePages failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if decoder.calls != 0 {
		t.Errorf("decoder calls = %d, want 0 for JSON-looking strings", decoder.calls)
	}
}

func TestResolvePagesObfuscated(t *testing.T) {
	raw := json.RawMessage(`"aGVsbG8tY2lwaGVy"`)
	decoder := &fakeDecoder{plaintext: `["x.jpg", "y.jpg"]`}
	pages, err := ResolvePages(context.Background(), raw, decoder)
	if err != nil {
		t.Fatalf("ResolvePages failed: %v", err)
	}
	if len(pages) != 2 || pages[1].Filename != "y.jpg" {
		t.Fatalf("unexpected pages: %+v", pages)
	}
	if decoder.calls != 1 {
		t.Errorf("decoder calls = %d, want 1", decoder.calls)
	}
}

func TestResolvePagesObfuscatedWithoutDecoder(t *testing.T) {
	if _, err := ResolvePages(context.Background(), json.RawMessage(`"cipher"`), nil); !errors.Is(err, ErrNoPages) {
		t.Fatalf("error = %v, want ErrNoPages", err)
	}
}

func TestResolvePagesDecodeFailure(t *testing.T) {
	decoder := &fakeDecoder{err: errors.New("decode exploded")}
	if _, err := ResolvePages(context.Background(), json.RawMessage(`"cipher"`), decoder); err == nil {
		t.Fatal("expected decode error to surface")
	}
}

func TestResolvePagesMissing(t *testing.T) {
	for _, raw := range []string{"", "null", "42"} {
		if _, err := ResolvePages(context.Background(), json.RawMessage(raw), nil); !errors.Is(err, ErrNoPages) {
			t.Errorf("ResolvePages(%q) error = %v, want ErrNoPages", raw, err)
		}
	}
}

func TestPagesFromJSONSalvagesNoise(t *testing.T) {
	pages, err := pagesFromJSON("runtime noise [\"a.jpg\"] trailing output")
	if err != nil {
		t.Fatalf("pagesFromJSON failed: %v", err)
	}
	if len(pages) != 1 || pages[0].Filename != "a.jpg" {
		t.Fatalf("unexpected pages: %+v", pages)
	}

	if _, err := pagesFromJSON("no array here"); !errors.Is(err, ErrNoPages) {
		t.Errorf("error = %v, want ErrNoPages", err)
	}
}

func TestBuildPageURL(t *testing.T) {
	const base = "https://online.fliphtml5.com/pub/book/"
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"bare name", "page1.jpg", base + "files/large/page1.jpg"},
		{"dot slash", "./page1.jpg", base + "files/large/page1.jpg"},
		{"leading slash", "/page1.jpg", base + "files/large/page1.jpg"},
		{"already under files", "files/small/page1.jpg", base + "files/small/page1.jpg"},
		{"absolute", "https://cdn.example.com/p.jpg", "https://cdn.example.com/p.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildPageURL(base, tt.filename, "large"); got != tt.want {
				t.Errorf("BuildPageURL(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestPageOutputName(t *testing.T) {
	if got := (Page{Index: 4, Filename: "x.jpg"}).OutputName(); got != "005_x.jpg" {
		t.Errorf("OutputName = %q, want 005_x.jpg", got)
	}
	if got := (Page{Index: 0}).OutputName(); got != "" {
		t.Errorf("OutputName for empty filename = %q, want empty", got)
	}
}
