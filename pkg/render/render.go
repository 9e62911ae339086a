// Package render rasterizes a graphics layer tree for debugging. Each
// layer is drawn as a tinted box with its name, and the scrolling regions
// attached to layers are overlaid on top.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// Options selects what is drawn besides the layer boxes.
type Options struct {
	Labels  bool
	Regions bool
}

var (
	background    = color.RGBA{255, 255, 255, 255}
	outline       = color.RGBA{40, 40, 40, 255}
	labelColor    = color.RGBA{0, 0, 0, 255}
	touchColor    = color.NRGBA{0, 160, 0, 96}
	nonFastColor  = color.NRGBA{220, 0, 0, 96}
	fixedOutline  = color.RGBA{0, 0, 200, 255}
	scrollOutline = color.RGBA{200, 120, 0, 255}
)

// Fill colors by depth in the layer tree.
var palette = []color.RGBA{
	{230, 240, 255, 255},
	{200, 225, 250, 255},
	{210, 245, 210, 255},
	{250, 235, 200, 255},
	{240, 210, 240, 255},
	{220, 220, 220, 255},
}

type Renderer struct {
	context *gg.Context
	opts    Options
}

func NewRenderer(width, height int, opts Options) *Renderer {
	return &Renderer{context: gg.NewContext(width, height), opts: opts}
}

// Render clears the canvas and draws the tree rooted at root in paint
// order: a layer first, then its children.
func (r *Renderer) Render(root *graphics.Layer) {
	r.context.SetColor(background)
	r.context.Clear()
	if root == nil {
		return
	}
	r.drawLayer(root, 0)
	if r.opts.Regions {
		root.Walk(r.drawRegions)
	}
}

func (r *Renderer) drawLayer(l *graphics.Layer, depth int) {
	dc := r.context
	bounds := geom.NewRect(l.AbsolutePosition(), l.Size)

	if l.DrawsContent && !bounds.IsEmpty() {
		dc.SetColor(palette[depth%len(palette)])
		dc.DrawRectangle(bounds.X, bounds.Y, bounds.W, bounds.H)
		dc.Fill()

		dc.SetColor(outline)
		switch {
		case l.Constraint.Fixed:
			dc.SetColor(fixedOutline)
		case l.Scrollable:
			dc.SetColor(scrollOutline)
		}
		dc.SetLineWidth(1)
		dc.DrawRectangle(bounds.X+0.5, bounds.Y+0.5, bounds.W-1, bounds.H-1)
		dc.Stroke()

		if r.opts.Labels && l.Name != "" {
			dc.SetFontFace(basicfont.Face7x13)
			dc.SetColor(labelColor)
			dc.DrawString(l.Name, bounds.X+3, bounds.Y+12)
		}
	}

	if l.MasksToBounds {
		dc.Push()
		defer dc.Pop()
		dc.DrawRectangle(bounds.X, bounds.Y, bounds.W, bounds.H)
		dc.Clip()
	}
	for _, c := range l.Children() {
		r.drawLayer(c, depth+1)
	}
}

// drawRegions overlays the layer's regions. They are stored in the
// layer's own space.
func (r *Renderer) drawRegions(l *graphics.Layer) {
	origin := l.AbsolutePosition()
	r.fillRegion(l.TouchEventHandlerRegion, origin, touchColor)
	r.fillRegion(l.NonFastScrollableRegion, origin, nonFastColor)
}

func (r *Renderer) fillRegion(region geom.Region, origin geom.Point, c color.Color) {
	dc := r.context
	dc.SetColor(c)
	for _, rc := range region.Rects() {
		rc = rc.Move(origin)
		dc.DrawRectangle(rc.X, rc.Y, rc.W, rc.H)
		dc.Fill()
	}
}

func (r *Renderer) Image() image.Image { return r.context.Image() }

// EncodePNG writes the canvas as PNG to w.
func (r *Renderer) EncodePNG(w io.Writer) error {
	if err := r.context.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func (r *Renderer) SavePNG(filename string) error {
	if err := r.context.SavePNG(filename); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	return nil
}
