package download

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"flipfetch/internal/book"
	"flipfetch/internal/logging"
)

func newDownloader(t *testing.T, server *httptest.Server, overwrite bool) *Downloader {
	t.Helper()
	d := New(Options{
		Workers:   3,
		Overwrite: overwrite,
		Timeout:   5 * time.Second,
		Logger:    logging.NewNop(),
	})
	d.SetHTTPClient(server.Client())
	return d
}

func TestRunDownloadsAllPages(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		fmt.Fprintf(w, "image-bytes:%s", r.URL.Path)
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	tasks := []Task{
		{Page: book.Page{Index: 0, Filename: "p1.jpg"}, URL: server.URL + "/p1.jpg"},
		{Page: book.Page{Index: 1, Filename: "p2.jpg"}, URL: server.URL + "/p2.jpg"},
		{Page: book.Page{Index: 2, Filename: "p3.jpg"}, URL: server.URL + "/p3.jpg"},
	}

	summary, results, err := newDownloader(t, server, false).Run(context.Background(), tasks, dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.OK != 3 || summary.Failed != 0 || summary.Skipped != 0 {
		t.Fatalf("summary = %+v, want 3 ok", summary)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, result := range results {
		if result.Page.Index != i {
			t.Errorf("results not ordered by page index: %d at %d", result.Page.Index, i)
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "001_p1.jpg"))
	if err != nil {
		t.Fatalf("page file missing: %v", err)
	}
	if string(data) != "image-bytes:/p1.jpg" {
		t.Errorf("page content = %q", data)
	}
	if atomic.LoadInt64(&hits) != 3 {
		t.Errorf("server hits = %d, want 3", hits)
	}
}

func TestRunSkipsExistingUnlessOverwrite(t *testing.T) {
	var hits int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		fmt.Fprint(w, "fresh")
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	existing := filepath.Join(dir, "001_p1.jpg")
	if err := os.WriteFile(existing, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	tasks := []Task{{Page: book.Page{Index: 0, Filename: "p1.jpg"}, URL: server.URL + "/p1.jpg"}}

	summary, _, err := newDownloader(t, server, false).Run(context.Background(), tasks, dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Skipped != 1 || atomic.LoadInt64(&hits) != 0 {
		t.Fatalf("summary = %+v hits = %d, want skip without fetch", summary, hits)
	}

	summary, _, err = newDownloader(t, server, true).Run(context.Background(), tasks, dir)
	if err != nil {
		t.Fatalf("Run with overwrite failed: %v", err)
	}
	if summary.OK != 1 {
		t.Fatalf("summary = %+v, want 1 ok with overwrite", summary)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "fresh" {
		t.Errorf("overwrite left content %q", data)
	}
}

func TestRunCountsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	t.Cleanup(server.Close)

	tasks := []Task{
		{Page: book.Page{Index: 0, Filename: "p1.jpg"}, URL: server.URL + "/p1.jpg"},
		{Page: book.Page{Index: 1, Filename: "missing.jpg"}, URL: server.URL + "/missing.jpg"},
		{Page: book.Page{Index: 2}},
	}
	summary, results, err := newDownloader(t, server, false).Run(context.Background(), tasks, t.TempDir())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.OK != 1 || summary.Failed != 2 {
		t.Fatalf("summary = %+v, want 1 ok 2 failed", summary)
	}
	if results[1].Err == nil || results[2].Err == nil {
		t.Error("failed results should carry errors")
	}
}

func TestTasksBuildsURLs(t *testing.T) {
	b := &book.Book{
		BaseURL: "https://online.fliphtml5.com/pub/book/",
		Pages: []book.Page{
			{Index: 0, Filename: "p1.jpg"},
			{Index: 1},
		},
	}
	tasks := Tasks(b, "large")
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if want := b.BaseURL + "files/large/p1.jpg"; tasks[0].URL != want {
		t.Errorf("task URL = %q, want %q", tasks[0].URL, want)
	}
	if tasks[1].URL != "" {
		t.Errorf("filename-less page should produce empty URL, got %q", tasks[1].URL)
	}
}
