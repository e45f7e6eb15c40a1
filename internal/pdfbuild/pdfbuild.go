// Package pdfbuild assembles downloaded page images into a single PDF.
package pdfbuild

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-pdf/fpdf"
	"github.com/schollz/progressbar/v3"

	"flipfetch/internal/logging"
)

// ErrNoImages indicates there is nothing to assemble.
var ErrNoImages = errors.New("no page images to build PDF from")

// Options configures PDF assembly.
type Options struct {
	Title    string
	Subject  string
	Progress bool
	Logger   *slog.Logger
}

// Build writes the images, in order, into a PDF at outPath. Each page is
// sized to its image so nothing is scaled or cropped. Title and Subject land
// in the document metadata.
func Build(imagePaths []string, outPath string, opts Options) error {
	if len(imagePaths) == 0 {
		return ErrNoImages
	}
	logger := logging.NewComponentLogger(opts.Logger, "pdfbuild")

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Subject != "" {
		pdf.SetSubject(opts.Subject, true)
	}

	var bar *progressbar.ProgressBar
	if opts.Progress {
		bar = progressbar.NewOptions(len(imagePaths),
			progressbar.OptionSetDescription("pdf"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionClearOnFinish(),
		)
	}

	for _, path := range imagePaths {
		width, height, kind, err := imageSize(path)
		if err != nil {
			return fmt.Errorf("read image %s: %w", path, err)
		}
		pdf.AddPageFormat("P", fpdf.SizeType{Wd: width, Ht: height})
		pdf.ImageOptions(path, 0, 0, width, height, false,
			fpdf.ImageOptions{ImageType: kind, ReadDpi: false}, 0, "")
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("assemble PDF: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write PDF: %w", err)
	}

	logger.Info("PDF written",
		logging.String("path", outPath),
		logging.Int("pages", len(imagePaths)))
	return nil
}

// imageSize decodes just the image header for page dimensions and format.
func imageSize(path string) (width, height float64, kind string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, "", err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, "", fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, "", fmt.Errorf("image has invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return float64(cfg.Width), float64(cfg.Height), strings.ToUpper(format), nil
}
