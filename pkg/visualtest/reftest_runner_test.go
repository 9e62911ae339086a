package visualtest

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"layercomp/pkg/config"
	"layercomp/pkg/render"
)

const reftestWidth, reftestHeight = 400, 300

// reftestHeader is read from the leading // comments of a scene:
//
//	// match: other-ref.js
//	// fuzzy: 0.5
type reftestHeader struct {
	match string
	fuzzy float64
}

func readReftestHeader(t *testing.T, path string) reftestHeader {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var h reftestHeader
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "//") {
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "//")), ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "match":
			h.match = value
		case "fuzzy":
			if h.fuzzy, err = strconv.ParseFloat(value, 64); err != nil {
				t.Fatalf("%s: bad fuzzy value %q", path, value)
			}
		}
	}
	return h
}

// TestSceneReftests renders each scene and the reference named in its
// header and compares the rasters. Labels are off so that only layer
// geometry is compared.
func TestSceneReftests(t *testing.T) {
	testDir := filepath.Join("testdata", "reftests")
	scenes, err := filepath.Glob(filepath.Join(testDir, "*.js"))
	if err != nil {
		t.Fatal(err)
	}
	if len(scenes) == 0 {
		t.Skip("no reftest scenes found")
	}

	settings := config.DefaultSettings()
	opts := render.Options{}
	for _, path := range scenes {
		if strings.HasSuffix(path, "-ref.js") {
			continue
		}
		h := readReftestHeader(t, path)
		if h.match == "" {
			continue
		}
		t.Run(filepath.Base(path), func(t *testing.T) {
			actual, err := RenderScene(path, settings, reftestWidth, reftestHeight, opts)
			if err != nil {
				t.Fatalf("render test: %v", err)
			}
			expected, err := RenderScene(filepath.Join(testDir, h.match), settings, reftestWidth, reftestHeight, opts)
			if err != nil {
				t.Fatalf("render reference: %v", err)
			}
			cmp := DefaultOptions()
			cmp.MaxDifferentPercent = h.fuzzy
			result, err := CompareImages(actual, expected, cmp)
			if err != nil {
				t.Fatal(err)
			}
			if !result.Match {
				t.Errorf("%d/%d pixels differ (max channel difference %d)", result.DifferentPixels, result.TotalPixels, result.MaxDifference)
			}
		})
	}
}
