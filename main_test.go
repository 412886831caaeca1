package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

func TestSavePNG(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")

	pixels := make([]vmath.Vec4, 4*4)
	for i := range pixels {
		pixels[i] = vmath.Vec4{X: 0.5, Y: 0.25, Z: 1, W: 1}
	}
	if err := savePNG(path, pixels, 4, 4); err != nil {
		t.Fatalf("savePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not a valid png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 4 || bounds.Dy() != 4 {
		t.Errorf("output size incorrect: %v", bounds)
	}
}

func TestSavePNGBadPath(t *testing.T) {
	if err := savePNG("/nonexistent-dir/out.png", make([]vmath.Vec4, 1), 1, 1); err == nil {
		t.Error("expected an error for an unwritable path")
	}
}
