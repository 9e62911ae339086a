// Package visualtest compares rasters of layer trees, either in memory or
// against PNG files on disk.
package visualtest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// CompareResult contains the results of an image comparison
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // largest per-channel difference found
	Diff            *image.RGBA
}

// CompareOptions configures the image comparison
type CompareOptions struct {
	// Maximum allowed difference per color channel (0-255).
	Tolerance int

	// If > 0, a pixel matches when any expected pixel within this radius
	// matches it.
	FuzzyRadius int

	// If > 0, pass when the percentage of different pixels is at most this.
	MaxDifferentPercent float64

	// Keep a diff image in the result, different pixels in red.
	WantDiff bool
}

func DefaultOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// CompareImages compares two images pixel by pixel.
func CompareImages(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return &CompareResult{}, fmt.Errorf("image dimensions differ: actual=%v, expected=%v", bounds, expected.Bounds())
	}

	result := &CompareResult{
		Match:       true,
		TotalPixels: bounds.Dx() * bounds.Dy(),
	}
	if opts.WantDiff {
		result.Diff = image.NewRGBA(bounds)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			diff := pixelDiff(actual.At(x, y), expected.At(x, y))
			result.MaxDifference = max(result.MaxDifference, diff)

			if diff <= opts.Tolerance || (opts.FuzzyRadius > 0 && fuzzyMatch(actual, expected, x, y, opts, bounds)) {
				if result.Diff != nil {
					g := color.GrayModel.Convert(actual.At(x, y)).(color.Gray)
					result.Diff.Set(x, y, color.RGBA{g.Y, g.Y, g.Y, 255})
				}
				continue
			}
			result.Match = false
			result.DifferentPixels++
			if result.Diff != nil {
				result.Diff.Set(x, y, color.RGBA{255, 0, 0, 255})
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		result.Match = pct <= opts.MaxDifferentPercent
	}
	return result, nil
}

// CompareFiles decodes two PNG files and compares them. When diffPath is
// set and the images differ, a diff image is written there.
func CompareFiles(actualPath, expectedPath, diffPath string, opts CompareOptions) (*CompareResult, error) {
	actual, err := LoadPNG(actualPath)
	if err != nil {
		return nil, err
	}
	expected, err := LoadPNG(expectedPath)
	if err != nil {
		return nil, err
	}
	opts.WantDiff = opts.WantDiff || diffPath != ""
	result, err := CompareImages(actual, expected, opts)
	if err != nil {
		return result, err
	}
	if diffPath != "" && !result.Match {
		if err := SavePNG(result.Diff, diffPath); err != nil {
			return result, fmt.Errorf("save diff image: %w", err)
		}
	}
	return result, nil
}

// fuzzyMatch checks if the actual pixel at (x, y) matches any expected
// pixel within the radius.
func fuzzyMatch(actual, expected image.Image, x, y int, opts CompareOptions, bounds image.Rectangle) bool {
	a := actual.At(x, y)
	for dy := -opts.FuzzyRadius; dy <= opts.FuzzyRadius; dy++ {
		for dx := -opts.FuzzyRadius; dx <= opts.FuzzyRadius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(bounds) {
				continue
			}
			if pixelDiff(a, expected.At(p.X, p.Y)) <= opts.Tolerance {
				return true
			}
		}
	}
	return false
}

// pixelDiff is the largest 8-bit channel difference.
func pixelDiff(a, b color.Color) int {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return max(
		absInt(int(ar>>8)-int(br>>8)),
		absInt(int(ag>>8)-int(bg>>8)),
		absInt(int(ab>>8)-int(bb>>8)),
		absInt(int(aa>>8)-int(ba>>8)),
	)
}

func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
