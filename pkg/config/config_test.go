package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseKeepsDefaults(t *testing.T) {
	s, err := Parse([]byte(`
squashing = false
sparsity_tolerance = 4

[triggers]
video = false

[metrics]
device_scale = 2
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if s.Squashing {
		t.Error("squashing should be off")
	}
	if s.SparsityTolerance != 4 {
		t.Errorf("sparsity_tolerance = %g, want 4", s.SparsityTolerance)
	}
	if s.Triggers.Video {
		t.Error("video trigger should be off")
	}
	if !s.Triggers.ThreeDTransform {
		t.Error("unset trigger should keep its default")
	}
	if s.Metrics.ScrollbarThickness != 15 {
		t.Errorf("scrollbar_thickness = %g, want default 15", s.Metrics.ScrollbarThickness)
	}
	if s.Metrics.DeviceScale != 2 {
		t.Errorf("device_scale = %g, want 2", s.Metrics.DeviceScale)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name, input, want string
	}{
		{"syntax", "squashing = ", "failed to parse"},
		{"sparsity", "sparsity_tolerance = 0.5", "sparsity_tolerance"},
		{"scale", "[metrics]\ndevice_scale = 0", "device_scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s != DefaultSettings() {
		t.Error("missing file should yield defaults")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layercomp.toml")
	want := DefaultSettings()
	want.PreferCompositingToLCDText = true
	want.Triggers.Canvas = false
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "prefer_compositing_to_lcd_text = true") {
		t.Errorf("saved file missing key:\n%s", data)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}
