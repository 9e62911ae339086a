package visualtest

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func saveTestImage(t *testing.T, img image.Image, path string) {
	t.Helper()
	if err := SavePNG(img, path); err != nil {
		t.Fatalf("failed to save image: %v", err)
	}
}

func TestCompareImages(t *testing.T) {
	gray := color.RGBA{100, 100, 100, 255}
	tests := []struct {
		name      string
		expected  color.RGBA
		tolerance int
		wantMatch bool
		wantDiff  int
	}{
		{"identical", gray, 0, true, 0},
		{"within tolerance", color.RGBA{102, 102, 102, 255}, 2, true, 0},
		{"outside tolerance", color.RGBA{102, 102, 102, 255}, 0, false, 100},
		{"different", color.RGBA{0, 0, 255, 255}, 2, false, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Tolerance = tt.tolerance
			result, err := CompareImages(solidImage(10, 10, gray), solidImage(10, 10, tt.expected), opts)
			if err != nil {
				t.Fatalf("comparison failed: %v", err)
			}
			if result.Match != tt.wantMatch {
				t.Errorf("match = %v, want %v", result.Match, tt.wantMatch)
			}
			if result.DifferentPixels != tt.wantDiff {
				t.Errorf("different pixels = %d, want %d", result.DifferentPixels, tt.wantDiff)
			}
		})
	}
}

func TestCompareImages_FuzzyAndPercent(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	black := color.RGBA{0, 0, 0, 255}
	actual := solidImage(10, 10, white)
	actual.Set(5, 5, black)
	expected := solidImage(10, 10, white)
	expected.Set(6, 5, black)

	result, err := CompareImages(actual, expected, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if result.Match {
		t.Fatalf("shifted pixel matched without fuzz")
	}

	opts := DefaultOptions()
	opts.FuzzyRadius = 1
	if result, _ = CompareImages(actual, expected, opts); !result.Match {
		t.Errorf("shifted pixel did not match with radius 1")
	}

	opts = DefaultOptions()
	opts.MaxDifferentPercent = 2
	if result, _ = CompareImages(actual, expected, opts); !result.Match {
		t.Errorf("2 of 100 pixels different should pass at 2%%, got %d different", result.DifferentPixels)
	}
}

func TestCompareImages_DifferentDimensions(t *testing.T) {
	result, err := CompareImages(image.NewRGBA(image.Rect(0, 0, 10, 10)), image.NewRGBA(image.Rect(0, 0, 20, 20)), DefaultOptions())
	if err == nil {
		t.Errorf("expected error for different dimensions")
	}
	if result != nil && result.Match {
		t.Errorf("expected images with different dimensions to not match")
	}
}

func TestCompareFilesWritesDiff(t *testing.T) {
	tmpDir := t.TempDir()
	path1 := filepath.Join(tmpDir, "img1.png")
	path2 := filepath.Join(tmpDir, "img2.png")
	saveTestImage(t, solidImage(10, 10, color.RGBA{255, 0, 0, 255}), path1)
	saveTestImage(t, solidImage(10, 10, color.RGBA{0, 0, 255, 255}), path2)

	diffPath := filepath.Join(tmpDir, "diff.png")
	result, err := CompareFiles(path1, path2, diffPath, DefaultOptions())
	if err != nil {
		t.Fatalf("comparison failed: %v", err)
	}
	if result.Match {
		t.Errorf("expected images to not match")
	}
	if _, err := os.Stat(diffPath); err != nil {
		t.Errorf("diff image was not created: %v", err)
	}

	if _, err := CompareFiles(filepath.Join(tmpDir, "missing.png"), path2, "", DefaultOptions()); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}
