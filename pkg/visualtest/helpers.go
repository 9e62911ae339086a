package visualtest

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"layercomp/pkg/compositing"
	"layercomp/pkg/config"
	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"
	"layercomp/pkg/render"
	"layercomp/pkg/scene"
)

// RenderScene runs the scene script at path, updates compositing and
// rasterizes the main frame's graphics layer tree.
func RenderScene(path string, settings config.Settings, width, height int, opts render.Options) (image.Image, error) {
	s := scene.New(compositing.NewServices(settings, graphics.DefaultFactory{}), geom.Size{W: float64(width), H: float64(height)}, io.Discard)
	if err := s.RunFile(path); err != nil {
		return nil, err
	}
	s.Update()

	r := render.NewRenderer(width, height, opts)
	r.Render(s.Page().MainFrame().Compositor().RootGraphicsLayer())
	return r.Image(), nil
}

// RenderSceneToFile renders the scene at scriptPath into a PNG file.
func RenderSceneToFile(scriptPath, outputPath string, settings config.Settings, width, height int, opts render.Options) error {
	img, err := RenderScene(scriptPath, settings, width, height, opts)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := SavePNG(img, outputPath); err != nil {
		return fmt.Errorf("save error: %w", err)
	}
	return nil
}

// UpdateReferenceImage regenerates a reference raster. Use it after an
// intentional change to how layer trees are drawn.
func UpdateReferenceImage(scriptPath, referencePath string, width, height int) error {
	return RenderSceneToFile(scriptPath, referencePath, config.DefaultSettings(), width, height, render.Options{Regions: true})
}
