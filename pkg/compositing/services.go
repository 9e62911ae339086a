// Package compositing decides which layers get their own backing, builds
// the graphics layer tree that backs them and keeps it in sync with the
// layer tree.
package compositing

import (
	"layercomp/pkg/config"
	"layercomp/pkg/graphics"
)

// Services is the platform context a compositing update runs against.
// Nothing in this package reaches for globals; everything it needs from
// the embedder comes through here.
type Services struct {
	Settings config.Settings
	Factory  graphics.Factory
}

// NewServices fills in a never-failing factory when none is given.
func NewServices(settings config.Settings, factory graphics.Factory) *Services {
	if factory == nil {
		factory = graphics.DefaultFactory{}
	}
	return &Services{Settings: settings, Factory: factory}
}

func (s *Services) scrollbarThickness() float64 {
	return s.Settings.Metrics.ScrollbarThickness
}

func (s *Services) squashingEnabled() bool {
	return s.Settings.Squashing
}

func (s *Services) sparsityTolerance() float64 {
	if s.Settings.SparsityTolerance <= 0 {
		return config.DefaultSettings().SparsityTolerance
	}
	return s.Settings.SparsityTolerance
}
