package image

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, color.NRGBA{R: 199, G: 215, B: 201, A: 255})

	img, format, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Errorf("bounds = %v, want 2x2", img.Bounds())
	}

	if _, _, err := Decode(nil); err == nil {
		t.Error("expected error for empty data")
	}
	if _, _, err := Decode([]byte("not an image")); err == nil {
		t.Error("expected error for garbage data")
	}
}

func TestDecodeLimited(t *testing.T) {
	data := encodePNG(t, color.NRGBA{B: 255, A: 255})

	tests := []struct {
		name      string
		maxPixels int
		tooLarge  bool
	}{
		{"under limit", 5, false},
		{"at limit", 4, false},
		{"over limit", 3, true},
		{"disabled", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeLimited(data, tt.maxPixels)
			if tt.tooLarge != errors.Is(err, ErrTooLarge) {
				t.Errorf("DecodeLimited(max=%d) error = %v, want too large: %v", tt.maxPixels, err, tt.tooLarge)
			}
			if !tt.tooLarge && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestFileLoader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "strip.png")
	if err := os.WriteFile(path, encodePNG(t, color.NRGBA{R: 1, A: 255}), 0o600); err != nil {
		t.Fatal(err)
	}

	loader := NewFileLoader()
	ctx := context.Background()

	if _, err := loader.Load(ctx, path); err != nil {
		t.Errorf("Load() error = %v", err)
	}
	if _, err := loader.Load(ctx, ""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := loader.Load(ctx, filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := loader.Load(ctx, dir); err == nil {
		t.Error("expected error for directory")
	}

	small := &FileLoader{MaxPixels: 3}
	if _, err := small.Load(ctx, path); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Load() over the pixel limit error = %v, want ErrTooLarge", err)
	}
}

func TestSmartLoaderURL(t *testing.T) {
	data := encodePNG(t, color.NRGBA{G: 255, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	loader := NewSmartLoader(0, 0)
	img, err := loader.Load(context.Background(), srv.URL+"/strip.png")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if img.Bounds().Dx() != 2 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}

	if _, err := NewSmartLoader(0, 0).WithMaxPixels(1).Load(context.Background(), srv.URL+"/strip.png"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Load() over the pixel limit error = %v, want ErrTooLarge", err)
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"strip.jpg":  true,
		"STRIP.JPEG": true,
		"strip.png":  true,
		"strip.webp": true,
		"strip.gif":  true,
		"strip.bmp":  false,
		"strip":      false,
	}
	for name, want := range tests {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", name, got, want)
		}
	}
}
