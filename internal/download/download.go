package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"flipfetch/internal/book"
	"flipfetch/internal/logging"
	"flipfetch/internal/textutil"
)

// Status classifies one page download outcome.
type Status int

const (
	StatusOK Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Task names one page image to fetch.
type Task struct {
	Page book.Page
	URL  string
}

// Tasks builds the download list for a book at the given page size. Pages
// without a filename become tasks with an empty URL and fail at download
// time; the book must not silently shrink.
func Tasks(b *book.Book, size string) []Task {
	tasks := make([]Task, 0, len(b.Pages))
	for _, page := range b.Pages {
		task := Task{Page: page}
		if page.Filename != "" {
			task.URL = b.PageURL(page, size)
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// PageResult is the outcome of one task, recorded in the ledger.
type PageResult struct {
	Page   book.Page
	Status Status
	Path   string
	Err    error
}

// Summary aggregates per-page outcomes.
type Summary struct {
	OK      int
	Skipped int
	Failed  int
}

// Total returns the number of pages accounted for.
func (s Summary) Total() int { return s.OK + s.Skipped + s.Failed }

// Options configures a Downloader.
type Options struct {
	Workers   int
	Overwrite bool
	UserAgent string
	Timeout   time.Duration
	Progress  bool
	Logger    *slog.Logger
}

// Downloader fetches page images concurrently.
type Downloader struct {
	client    *http.Client
	userAgent string
	workers   int
	overwrite bool
	progress  bool
	logger    *slog.Logger
}

// New builds a downloader. Worker count defaults to 6, timeout to 30s.
func New(opts Options) *Downloader {
	if opts.Workers <= 0 {
		opts.Workers = 6
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = book.DefaultUserAgent
	}
	return &Downloader{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		workers:   opts.Workers,
		overwrite: opts.Overwrite,
		progress:  opts.Progress,
		logger:    logging.NewComponentLogger(opts.Logger, "download"),
	}
}

// SetHTTPClient replaces the underlying HTTP client, for tests.
func (d *Downloader) SetHTTPClient(client *http.Client) {
	if client != nil {
		d.client = client
	}
}

// Run downloads every task into destDir. All tasks are attempted even when
// some fail; the caller decides what a non-zero failure count means. Results
// come back ordered by page index.
func (d *Downloader) Run(ctx context.Context, tasks []Task, destDir string) (Summary, []PageResult, error) {
	if len(tasks) == 0 {
		return Summary{}, nil, nil
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return Summary{}, nil, fmt.Errorf("create pages directory: %w", err)
	}

	bar := d.newBar(len(tasks))
	jobs := make(chan Task)
	resultCh := make(chan PageResult)

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range jobs {
				resultCh <- d.runOne(ctx, task, destDir)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, task := range tasks {
			select {
			case jobs <- task:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var summary Summary
	results := make([]PageResult, 0, len(tasks))
	for result := range resultCh {
		switch result.Status {
		case StatusOK:
			summary.OK++
		case StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
		results = append(results, result)
		if bar != nil {
			bar.Describe(textutil.ShortLabel(result.Page.OutputName(), 28))
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Page.Index < results[j].Page.Index })

	if err := ctx.Err(); err != nil {
		return summary, results, fmt.Errorf("download interrupted: %w", err)
	}

	d.logger.Info("download complete",
		logging.Int("ok", summary.OK),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed))
	return summary, results, nil
}

func (d *Downloader) runOne(ctx context.Context, task Task, destDir string) PageResult {
	result := PageResult{Page: task.Page}
	if task.URL == "" {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("page %d has no filename", task.Page.Index+1)
		return result
	}

	outPath := filepath.Join(destDir, task.Page.OutputName())
	result.Path = outPath
	if !d.overwrite {
		if info, err := os.Stat(outPath); err == nil && info.Size() > 0 {
			result.Status = StatusSkipped
			return result
		}
	}

	if err := d.fetch(ctx, task.URL, outPath); err != nil {
		d.logger.Warn("page download failed",
			logging.Int(logging.FieldPage, task.Page.Index+1),
			logging.String("url", task.URL),
			logging.Error(err))
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	result.Status = StatusOK
	return result
}

func (d *Downloader) fetch(ctx context.Context, url, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), filepath.Base(outPath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write page: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close page file: %w", err)
	}
	if err := os.Rename(tmpName, outPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("finalize page file: %w", err)
	}
	return nil
}

func (d *Downloader) newBar(total int) *progressbar.ProgressBar {
	if !d.progress {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("download"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
}
