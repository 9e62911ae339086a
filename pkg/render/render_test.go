package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"
)

func newGraphicsLayer(name string, r geom.Rect, drawsContent bool) *graphics.Layer {
	l := graphics.DefaultFactory{}.NewLayer(name)
	l.Position = r.Location()
	l.Size = r.Size()
	l.DrawsContent = drawsContent
	return l
}

func rgba(t *testing.T, r *Renderer, x, y int) color.RGBA {
	t.Helper()
	return color.RGBAModel.Convert(r.Image().At(x, y)).(color.RGBA)
}

// blend composites src over an opaque dst.
func blend(dst color.RGBA, src color.NRGBA) color.RGBA {
	a := float64(src.A) / 255
	mix := func(d, s uint8) uint8 { return uint8(float64(s)*a + float64(d)*(1-a) + 0.5) }
	return color.RGBA{mix(dst.R, src.R), mix(dst.G, src.G), mix(dst.B, src.B), 255}
}

func near(a, b color.RGBA, tolerance int) bool {
	d := func(x, y uint8) bool { return int(x)-int(y) <= tolerance && int(y)-int(x) <= tolerance }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestRenderPaintsLayersByDepth(t *testing.T) {
	root := newGraphicsLayer("root", geom.Rect{W: 100, H: 100}, true)
	child := newGraphicsLayer("child", geom.Rect{X: 10, Y: 10, W: 20, H: 20}, true)
	root.AddChild(child)
	clip := newGraphicsLayer("clip", geom.Rect{X: 60, Y: 60, W: 30, H: 30}, false)
	clip.MasksToBounds = true
	root.AddChild(clip)
	clipped := newGraphicsLayer("clipped", geom.Rect{X: 20, Y: 20, W: 40, H: 40}, true)
	clip.AddChild(clipped)

	r := NewRenderer(100, 100, Options{})
	r.Render(root)

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{"root", 50, 50, palette[0]},
		{"child", 20, 20, palette[1]},
		{"clipped inside", 85, 85, palette[2]},
		{"clipped outside the mask", 95, 95, palette[0]},
	}
	for _, tt := range tests {
		if got := rgba(t, r, tt.x, tt.y); got != tt.want {
			t.Errorf("%s: pixel (%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderRegions(t *testing.T) {
	root := newGraphicsLayer("root", geom.Rect{W: 100, H: 100}, true)
	child := newGraphicsLayer("child", geom.Rect{X: 50, Y: 0, W: 50, H: 50}, false)
	root.AddChild(child)
	child.TouchEventHandlerRegion.Unite(geom.Rect{X: 10, Y: 10, W: 20, H: 20})
	root.NonFastScrollableRegion.Unite(geom.Rect{X: 0, Y: 60, W: 30, H: 30})

	tests := []struct {
		name    string
		regions bool
	}{
		{"without regions", false},
		{"with regions", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRenderer(100, 100, Options{Regions: tt.regions})
			r.Render(root)

			// The touch region is in the child's space.
			touch := rgba(t, r, 70, 20)
			nonFast := rgba(t, r, 10, 70)
			if !tt.regions {
				if touch != palette[0] || nonFast != palette[0] {
					t.Errorf("regions drawn while disabled: %v %v", touch, nonFast)
				}
				return
			}
			if touch.G <= touch.R {
				t.Errorf("touch region pixel %v is not green-tinted", touch)
			}
			if nonFast.R <= nonFast.G {
				t.Errorf("non-fast region pixel %v is not red-tinted", nonFast)
			}
			// Overlays are translucent: the layer fill shows through.
			if want := blend(palette[0], touchColor); !near(touch, want, 3) {
				t.Errorf("touch region pixel = %v, want about %v", touch, want)
			}
			if want := blend(palette[0], nonFastColor); !near(nonFast, want, 3) {
				t.Errorf("non-fast region pixel = %v, want about %v", nonFast, want)
			}
		})
	}
}

func TestRenderNilRootClears(t *testing.T) {
	r := NewRenderer(10, 10, Options{Labels: true})
	r.Render(nil)
	if got := rgba(t, r, 5, 5); got != background {
		t.Errorf("pixel = %v, want background", got)
	}
}

func TestEncodePNG(t *testing.T) {
	r := NewRenderer(40, 30, Options{Labels: true})
	r.Render(newGraphicsLayer("root", geom.Rect{W: 40, H: 30}, true))

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 40 || got.Y != 30 {
		t.Errorf("size = %v, want 40x30", got)
	}
}
