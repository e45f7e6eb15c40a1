package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"flipfetch/internal/book"
	"flipfetch/internal/download"
	"flipfetch/internal/logging"
	"flipfetch/internal/pdfbuild"
	"flipfetch/internal/textutil"
)

type downloadFlags struct {
	output     string
	pdfPath    string
	workers    int
	size       string
	overwrite  bool
	keepPages  bool
	saveConfig bool
	noProgress bool
}

func newDownloadCommand(cmdCtx *commandContext) *cobra.Command {
	var flags downloadFlags

	cmd := &cobra.Command{
		Use:   "download <share-url>",
		Short: "Download a book's pages and assemble a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, cmdCtx, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory (default: <output_dir>/<book title>)")
	cmd.Flags().StringVar(&flags.pdfPath, "pdf", "", "PDF output path (default: <output>/<book title>.pdf)")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Concurrent page downloads")
	cmd.Flags().StringVar(&flags.size, "size", "", "Page image size (large, small, thumb)")
	cmd.Flags().BoolVar(&flags.overwrite, "overwrite", false, "Re-download pages that already exist")
	cmd.Flags().BoolVar(&flags.keepPages, "keep-pages", false, "Keep page images after the PDF is built")
	cmd.Flags().BoolVar(&flags.saveConfig, "save-config", false, "Save the book's raw config.js JSON alongside the output")
	cmd.Flags().BoolVar(&flags.noProgress, "no-progress", false, "Disable progress bars")
	return cmd
}

func runDownload(cmd *cobra.Command, cmdCtx *commandContext, shareURL string, flags downloadFlags) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	if flags.workers > 0 {
		cfg.Download.Workers = flags.workers
	}
	if flags.size != "" {
		cfg.Download.PageSize = flags.size
	}
	if flags.overwrite {
		cfg.Download.Overwrite = true
	}
	if flags.keepPages {
		cfg.Download.KeepPages = true
	}

	logger, _, err := cmdCtx.newLogger(newRunID())
	if err != nil {
		return err
	}
	logger = logger.With(logging.String(logging.FieldSession, uuid.NewString()))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// One download run per workspace at a time; concurrent runs would race
	// on the page directory and the artifact cache.
	runLock := flock.New(filepath.Join(cfg.Paths.LogDir, "flipfetch.lock"))
	locked, err := runLock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another flipfetch download is already running")
	}
	defer func() { _ = runLock.Unlock() }()

	decoder, cleanup, err := newDecodeService(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	loader := newBookLoader(cfg, decoder, logger)
	b, err := loader.Load(ctx, shareURL)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printBookInfo(out, b)

	outputDir := flags.output
	if outputDir == "" {
		outputDir = filepath.Join(cfg.Paths.OutputDir, textutil.SanitizeFileName(b.Title))
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if flags.saveConfig {
		if err := saveBookConfig(b, outputDir); err != nil {
			return err
		}
	}

	store, sessionID := beginLedgerSession(ctx, cfg.Ledger, b, logger)
	if store != nil {
		defer store.Close()
	}

	downloader := download.New(download.Options{
		Workers:   cfg.Download.Workers,
		Overwrite: cfg.Download.Overwrite,
		UserAgent: cfg.Download.UserAgent,
		Timeout:   requestTimeout(cfg.Download.RequestTimeout),
		Progress:  !flags.noProgress,
		Logger:    logger,
	})

	pagesDir := filepath.Join(outputDir, "_pages")
	fmt.Fprintln(out, "Downloading pages...")
	summary, results, err := downloader.Run(ctx, download.Tasks(b, cfg.Download.PageSize), pagesDir)
	recordPageResults(ctx, store, sessionID, results, logger)
	if err != nil {
		finishLedgerSession(ctx, store, sessionID, summary, "", logger)
		return err
	}
	if summary.Failed > 0 {
		finishLedgerSession(ctx, store, sessionID, summary, "", logger)
		return fmt.Errorf("%d of %d pages failed to download; PDF not created", summary.Failed, summary.Total())
	}

	pdfPath := flags.pdfPath
	if pdfPath == "" {
		pdfPath = filepath.Join(outputDir, textutil.SanitizeFileName(b.Title)+".pdf")
	}
	imagePaths := make([]string, 0, len(results))
	for _, result := range results {
		if result.Path != "" {
			imagePaths = append(imagePaths, result.Path)
		}
	}

	fmt.Fprintln(out, "Creating PDF...")
	err = pdfbuild.Build(imagePaths, pdfPath, pdfbuild.Options{
		Title:    b.Title,
		Subject:  b.Description,
		Progress: !flags.noProgress,
		Logger:   logger,
	})
	if err != nil {
		finishLedgerSession(ctx, store, sessionID, summary, "", logger)
		return err
	}

	if !cfg.Download.KeepPages {
		if err := os.RemoveAll(pagesDir); err != nil {
			logger.Warn("could not remove page directory", logging.Error(err))
		}
	}

	finishLedgerSession(ctx, store, sessionID, summary, pdfPath, logger)
	fmt.Fprintf(out, "PDF: %s\n", pdfPath)
	return nil
}

func printBookInfo(out io.Writer, b *book.Book) {
	fmt.Fprintln(out, "Book")
	fmt.Fprintf(out, "  Title: %s\n", b.Title)
	if desc := textutil.CleanDescription(b.Description, 300); desc != "" {
		fmt.Fprintf(out, "  Description: %s\n", desc)
	}
	fmt.Fprintf(out, "  Pages: %d\n", len(b.Pages))
	if b.Encrypted {
		fmt.Fprintln(out, "  Source: encrypted")
	}
}

func saveBookConfig(b *book.Book, outputDir string) error {
	var pretty json.RawMessage = b.ConfigJSON
	indented, err := json.MarshalIndent(json.RawMessage(b.ConfigJSON), "", "  ")
	if err == nil {
		pretty = indented
	}
	target := filepath.Join(outputDir, "config.json")
	if err := os.WriteFile(target, pretty, 0o644); err != nil {
		return fmt.Errorf("save config.json: %w", err)
	}
	return nil
}

func requestTimeout(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}
