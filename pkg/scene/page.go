package scene

import (
	"strconv"

	"layercomp/pkg/frame"
	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"

	"github.com/dop251/goja"
)

var textFlagNames = map[string]graphics.TextFlags{
	"names":         graphics.TextIncludeNames,
	"regions":       graphics.TextIncludeRegions,
	"scrollParents": graphics.TextIncludeScrollParents,
	"reasons":       graphics.TextIncludeCompositingReasons,
}

// pageObject builds the global `page`.
func (s *Scene) pageObject() *goja.Object {
	vm := s.vm
	obj := vm.NewObject()
	obj.Set("main", s.frameProxy(s.page.MainFrame()))
	obj.Set("update", func(goja.FunctionCall) goja.Value {
		s.Update()
		return goja.Undefined()
	})
	obj.Set("frames", func(goja.FunctionCall) goja.Value {
		frames := s.page.Frames()
		vals := make([]goja.Value, len(frames))
		for i, f := range frames {
			vals[i] = s.frameProxy(f)
		}
		return s.array(vals)
	})
	obj.Set("layerTreeAsText", func(call goja.FunctionCall) goja.Value {
		return vm.ToValue(s.page.MainFrame().Compositor().LayerTreeAsText(parseTextFlags(call)))
	})
	obj.Set("mainThreadScrollingReasons", func(goja.FunctionCall) goja.Value {
		return vm.ToValue(s.coordinator.MainThreadScrollingReasonsAsText())
	})
	obj.Set("nonFastScrollableRegion", func(goja.FunctionCall) goja.Value {
		return s.regionArray(s.coordinator.NonFastScrollableRegion())
	})
	obj.Set("lastUpdate", func(goja.FunctionCall) goja.Value {
		st := s.page.MainFrame().Compositor().LastUpdate()
		o := vm.NewObject()
		o.Set("type", st.Type.String())
		o.Set("composited", st.Composited)
		o.Set("squashed", st.Squashed)
		o.Set("layersChanged", st.LayersChanged)
		o.Set("rebuiltTree", st.RebuiltTree)
		return o
	})
	return obj
}

// parseTextFlags reads dump options passed as strings. With none given,
// names are included.
func parseTextFlags(call goja.FunctionCall) graphics.TextFlags {
	if len(call.Arguments) == 0 {
		return graphics.TextIncludeNames
	}
	var flags graphics.TextFlags
	for _, a := range call.Arguments {
		flags |= textFlagNames[a.String()]
	}
	return flags
}

func (s *Scene) array(vals []goja.Value) goja.Value {
	arr := s.vm.NewArray()
	for i, v := range vals {
		arr.Set(strconv.Itoa(i), v)
	}
	arr.Set("length", len(vals))
	return arr
}

func (s *Scene) rectObject(r geom.Rect) goja.Value {
	o := s.vm.NewObject()
	o.Set("x", r.X)
	o.Set("y", r.Y)
	o.Set("w", r.W)
	o.Set("h", r.H)
	return o
}

func (s *Scene) regionArray(r geom.Region) goja.Value {
	rects := r.Rects()
	vals := make([]goja.Value, len(rects))
	for i, rc := range rects {
		vals[i] = s.rectObject(rc)
	}
	return s.array(vals)
}

// unwrapFrame finds the frame behind a proxy created by frameProxy.
func (s *Scene) unwrapFrame(val goja.Value) *frame.Frame {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj := val.ToObject(s.vm)
	for f, cached := range s.frames {
		if cached.SameAs(obj) {
			return f
		}
	}
	return nil
}

func argFloat(call goja.FunctionCall, i int) float64 {
	if i >= len(call.Arguments) {
		return 0
	}
	return call.Argument(i).ToFloat()
}

func argString(call goja.FunctionCall, i int) string {
	if i >= len(call.Arguments) || goja.IsUndefined(call.Argument(i)) {
		return ""
	}
	return call.Argument(i).String()
}
