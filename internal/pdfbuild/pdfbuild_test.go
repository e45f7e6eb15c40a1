package pdfbuild

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"flipfetch/internal/logging"
)

func writePNG(t *testing.T, dir, name string, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuildCreatesPDF(t *testing.T) {
	dir := t.TempDir()
	images := []string{
		writePNG(t, dir, "001_a.png", 40, 60),
		writePNG(t, dir, "002_b.png", 60, 40),
	}
	outPath := filepath.Join(dir, "out", "book.pdf")

	err := Build(images, outPath, Options{
		Title:   "Test Book",
		Subject: "A description.",
		Logger:  logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("PDF missing: %v", err)
	}
	if len(data) < 4 || string(data[:4]) != "%PDF" {
		t.Errorf("output does not look like a PDF (%d bytes)", len(data))
	}
}

func TestBuildRejectsEmptyInput(t *testing.T) {
	if err := Build(nil, filepath.Join(t.TempDir(), "out.pdf"), Options{}); !errors.Is(err, ErrNoImages) {
		t.Fatalf("error = %v, want ErrNoImages", err)
	}
}

func TestBuildSurfacesBadImage(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "001_bad.png")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Build([]string{bad}, filepath.Join(dir, "out.pdf"), Options{}); err == nil {
		t.Fatal("expected error for undecodable image")
	}
}

func TestImageSize(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "p.png", 123, 45)
	width, height, kind, err := imageSize(path)
	if err != nil {
		t.Fatalf("imageSize failed: %v", err)
	}
	if width != 123 || height != 45 {
		t.Errorf("size = %gx%g, want 123x45", width, height)
	}
	if kind != "PNG" {
		t.Errorf("kind = %q, want PNG", kind)
	}
}
