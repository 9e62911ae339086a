// Package scene runs JavaScript scene scripts against a page of layer
// trees. A script builds frames and layers, mutates them and asks for
// compositing updates and dumps:
//
//	var box = page.main.add(page.main.root, "box", {
//		x: 10, y: 10, w: 100, h: 100,
//		style: "transform: translateZ(0)",
//	});
//	page.update();
//	console.log(page.layerTreeAsText("names", "reasons"));
package scene

import (
	"fmt"
	"io"
	"os"

	"layercomp/pkg/compositing"
	"layercomp/pkg/frame"
	"layercomp/pkg/geom"
	"layercomp/pkg/layer"
	"layercomp/pkg/logging"
	"layercomp/pkg/scrolling"

	"github.com/dop251/goja"
)

// Scene owns one page and the goja runtime that scripts it.
type Scene struct {
	page        *frame.Page
	coordinator *scrolling.Coordinator
	vm          *goja.Runtime
	out         io.Writer

	layers map[*layer.Layer]goja.Value
	frames map[*frame.Frame]goja.Value
}

// New creates a scene whose main frame has the given viewport. console.log
// output goes to out.
func New(services *compositing.Services, viewport geom.Size, out io.Writer) *Scene {
	if out == nil {
		out = io.Discard
	}
	page := frame.NewPage(services, viewport)
	s := &Scene{
		page:        page,
		coordinator: scrolling.NewCoordinator(page),
		vm:          goja.New(),
		out:         out,
		layers:      make(map[*layer.Layer]goja.Value),
		frames:      make(map[*frame.Frame]goja.Value),
	}
	c := &consoleAPI{out: out}
	c.register(s.vm)
	s.vm.Set("page", s.pageObject())
	return s
}

func (s *Scene) Page() *frame.Page                   { return s.page }
func (s *Scene) Coordinator() *scrolling.Coordinator { return s.coordinator }

// Run executes src. Script exceptions and broken layer tree invariants are
// both returned as errors.
func (s *Scene) Run(name, src string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", name, r)
		}
	}()
	if _, err := s.vm.RunScript(name, src); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// RunFile reads and runs the script at path.
func (s *Scene) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read scene: %w", err)
	}
	return s.Run(path, string(src))
}

// Update brings compositing and scrolling state up to date for every
// frame.
func (s *Scene) Update() {
	s.page.UpdateCompositing()
	s.coordinator.UpdateAfterCompositingChangeIfNeeded()
	stats := s.page.MainFrame().Compositor().LastUpdate()
	logging.Logger().Debug("scene updated", "type", stats.Type, "composited", stats.Composited, "squashed", stats.Squashed)
}
