// Package config loads the compositor settings file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Settings mirrors layercomp.toml.
type Settings struct {
	AcceleratedCompositing bool `toml:"accelerated_compositing"`
	// Merge overlapping layers into a shared backing instead of giving each
	// its own.
	Squashing bool `toml:"squashing"`
	// A squash is rejected when the merged bounding box exceeds this
	// multiple of the summed layer areas.
	SparsityTolerance float64 `toml:"sparsity_tolerance"`

	CompositedOverflowScroll     bool `toml:"composited_overflow_scroll"`
	PreferCompositingToLCDText   bool `toml:"prefer_compositing_to_lcd_text"`
	CompositedScrollingForFrames bool `toml:"composited_scrolling_for_frames"`
	TouchEnabled                 bool `toml:"touch_enabled"`

	Triggers Triggers `toml:"triggers"`
	Metrics  Metrics  `toml:"metrics"`

	LogLevel string `toml:"log_level"`
}

// Triggers switches individual compositing reasons on or off.
type Triggers struct {
	ThreeDTransform      bool `toml:"three_d_transform"`
	Video                bool `toml:"video"`
	Plugin               bool `toml:"plugin"`
	Canvas               bool `toml:"canvas"`
	Animation            bool `toml:"animation"`
	Filters              bool `toml:"filters"`
	ScrollableInnerFrame bool `toml:"scrollable_inner_frame"`
	OverflowScroll       bool `toml:"overflow_scroll"`
	ViewportConstrained  bool `toml:"viewport_constrained"`
}

type Metrics struct {
	ScrollbarThickness float64 `toml:"scrollbar_thickness"`
	DeviceScale        float64 `toml:"device_scale"`
}

// DefaultSettings matches a desktop configuration with every trigger on.
func DefaultSettings() Settings {
	return Settings{
		AcceleratedCompositing: true,
		Squashing:              true,
		SparsityTolerance:      6,
		TouchEnabled:           true,
		Triggers: Triggers{
			ThreeDTransform:      true,
			Video:                true,
			Plugin:               true,
			Canvas:               true,
			Animation:            true,
			Filters:              true,
			ScrollableInnerFrame: true,
			OverflowScroll:       true,
			ViewportConstrained:  true,
		},
		Metrics: Metrics{
			ScrollbarThickness: 15,
			DeviceScale:        1,
		},
		LogLevel: "info",
	}
}

// Parse decodes TOML on top of the defaults. Keys that are absent keep
// their default values.
func Parse(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := toml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (s Settings) Validate() error {
	if s.SparsityTolerance < 1 {
		return fmt.Errorf("sparsity_tolerance must be at least 1, got %g", s.SparsityTolerance)
	}
	if s.Metrics.DeviceScale <= 0 {
		return fmt.Errorf("metrics.device_scale must be positive, got %g", s.Metrics.DeviceScale)
	}
	if s.Metrics.ScrollbarThickness < 0 {
		return fmt.Errorf("metrics.scrollbar_thickness must not be negative, got %g", s.Metrics.ScrollbarThickness)
	}
	return nil
}
