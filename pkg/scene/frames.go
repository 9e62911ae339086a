package scene

import (
	"layercomp/pkg/frame"
	"layercomp/pkg/geom"
	"layercomp/pkg/layer"
	"layercomp/pkg/style"

	"github.com/dop251/goja"
)

// frameProxy creates (or retrieves from cache) the JS object for f.
func (s *Scene) frameProxy(f *frame.Frame) goja.Value {
	if v, ok := s.frames[f]; ok {
		return v
	}
	v := s.vm.NewDynamicObject(&frameAccessor{s: s, f: f})
	s.frames[f] = v
	return v
}

type frameAccessor struct {
	s *Scene
	f *frame.Frame
}

var frameKeys = []string{
	"name", "root", "isMain", "add", "addFrame", "removeFrame", "find",
	"setContentSize", "scrollTo", "dump", "layerTreeAsText", "inCompositingMode",
}

func (a *frameAccessor) Get(key string) goja.Value {
	s, f, vm := a.s, a.f, a.s.vm
	switch key {
	case "name":
		return vm.ToValue(f.Name)
	case "root":
		return s.layerProxy(f.Tree().Root())
	case "isMain":
		return vm.ToValue(f.IsMainFrame())
	case "inCompositingMode":
		return vm.ToValue(f.Compositor().InCompositingMode())
	case "add":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			parent := s.unwrapLayer(call.Argument(0))
			if parent == nil || parent.Tree() != f.Tree() {
				panic(vm.NewTypeError("add: parent must be a layer of frame %q", f.Name))
			}
			return s.layerProxy(s.addLayer(f, parent, argString(call, 1), call.Argument(2)))
		})
	case "addFrame":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			owner := s.unwrapLayer(call.Argument(0))
			if owner == nil || owner.Kind != layer.KindIFrame || owner.Tree() != f.Tree() {
				panic(vm.NewTypeError("addFrame: owner must be an iframe layer of frame %q", f.Name))
			}
			viewport := geom.Size{W: argFloat(call, 2), H: argFloat(call, 3)}
			if viewport.IsEmpty() {
				viewport = owner.Size()
			}
			return s.frameProxy(f.AddChildFrame(owner, argString(call, 1), viewport))
		})
	case "removeFrame":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if child := s.unwrapFrame(call.Argument(0)); child != nil {
				f.RemoveChildFrame(child)
				s.coordinator.ScrollableAreasDidChange()
			}
			return goja.Undefined()
		})
	case "find":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if l := f.Tree().FindByName(argString(call, 0)); l != nil {
				return s.layerProxy(l)
			}
			return goja.Null()
		})
	case "setContentSize":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			f.Tree().Root().SetContentSize(geom.Size{W: argFloat(call, 0), H: argFloat(call, 1)})
			return goja.Undefined()
		})
	case "scrollTo":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			f.Tree().Root().ScrollTo(geom.Point{X: argFloat(call, 0), Y: argFloat(call, 1)})
			return goja.Undefined()
		})
	case "dump":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			return vm.ToValue(f.Tree().DumpTree())
		})
	case "layerTreeAsText":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return vm.ToValue(f.Compositor().LayerTreeAsText(parseTextFlags(call)))
		})
	}
	return goja.Undefined()
}

func (a *frameAccessor) Set(string, goja.Value) bool { return false }
func (a *frameAccessor) Delete(string) bool          { return false }
func (a *frameAccessor) Keys() []string              { return frameKeys }

func (a *frameAccessor) Has(key string) bool {
	for _, k := range frameKeys {
		if k == key {
			return true
		}
	}
	return false
}

// addLayer creates a layer from a JS options object:
//
//	{kind, x, y, w, h, contentW, contentH, style, content, touch, wheel}
//
// kind defaults to "block" and content to true.
func (s *Scene) addLayer(f *frame.Frame, parent *layer.Layer, name string, optsVal goja.Value) *layer.Layer {
	vm := s.vm
	var opts *goja.Object
	if optsVal != nil && !goja.IsUndefined(optsVal) && !goja.IsNull(optsVal) {
		opts = optsVal.ToObject(vm)
	}
	num := func(key string) float64 {
		if opts == nil {
			return 0
		}
		if v := opts.Get(key); v != nil && !goja.IsUndefined(v) {
			return v.ToFloat()
		}
		return 0
	}
	str := func(key string) string {
		if opts == nil {
			return ""
		}
		if v := opts.Get(key); v != nil && !goja.IsUndefined(v) {
			return v.String()
		}
		return ""
	}
	flag := func(key string, def bool) bool {
		if opts == nil {
			return def
		}
		if v := opts.Get(key); v != nil && !goja.IsUndefined(v) {
			return v.ToBoolean()
		}
		return def
	}

	kind := layer.KindBlock
	if k := str("kind"); k != "" {
		var ok bool
		if kind, ok = layer.ParseKind(k); !ok || kind == layer.KindView || kind == layer.KindReflection {
			panic(vm.NewTypeError("add: unsupported layer kind %q", k))
		}
	}
	l := f.Tree().Add(parent, name, kind, style.ParseInlineStyle(str("style")))
	l.HasContent = flag("content", true)
	l.HasTouchHandler = flag("touch", false)
	l.WantsWheelEvents = flag("wheel", false)
	l.SetGeometry(geom.Point{X: num("x"), Y: num("y")}, geom.Size{W: num("w"), H: num("h")})
	if cw, ch := num("contentW"), num("contentH"); cw > 0 || ch > 0 {
		l.SetContentSize(geom.Size{W: cw, H: ch})
	}
	s.coordinator.ScrollableAreasDidChange()
	if l.HasTouchHandler {
		s.coordinator.TouchEventHandlersDidChange()
	}
	if l.Style().HasFixedBackground() {
		s.coordinator.SlowRepaintObjectsDidChange()
	}
	return l
}
