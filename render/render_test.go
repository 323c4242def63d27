package main

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.SetRGBA(1, 1, color.RGBA{255, 0, 0, 255})
	dir := t.TempDir()

	tests := []struct {
		name   string
		decode func(*os.File) (image.Image, error)
	}{
		{"out.png", func(f *os.File) (image.Image, error) { return png.Decode(f) }},
		{"out.jpg", func(f *os.File) (image.Image, error) { return jpeg.Decode(f) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			if err := writeImage(path, img); err != nil {
				t.Fatalf("writeImage() failed: %v", err)
			}
			f, err := os.Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			got, err := tc.decode(f)
			if err != nil {
				t.Fatalf("decoding %s: %v", tc.name, err)
			}
			if got.Bounds() != img.Bounds() {
				t.Errorf("bounds = %v, want %v", got.Bounds(), img.Bounds())
			}
		})
	}

	if err := writeImage(filepath.Join(dir, "out.gif"), img); err == nil {
		t.Errorf("writeImage() of a .gif succeeded")
	}
}
