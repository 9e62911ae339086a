package scene

import (
	"layercomp/pkg/frame"
	"layercomp/pkg/geom"
	"layercomp/pkg/layer"
	"layercomp/pkg/style"

	"github.com/dop251/goja"
)

// layerProxy creates (or retrieves from cache) the JS object for l. The
// same layer always maps to the same object so === works in scripts.
func (s *Scene) layerProxy(l *layer.Layer) goja.Value {
	if v, ok := s.layers[l]; ok {
		return v
	}
	v := s.vm.NewDynamicObject(&layerAccessor{s: s, l: l})
	s.layers[l] = v
	return v
}

// unwrapLayer extracts the *layer.Layer behind a proxy.
func (s *Scene) unwrapLayer(val goja.Value) *layer.Layer {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj := val.ToObject(s.vm)
	for l, cached := range s.layers {
		if cached.SameAs(obj) {
			return l
		}
	}
	return nil
}

type layerAccessor struct {
	s *Scene
	l *layer.Layer
}

var layerKeys = []string{
	"name", "kind", "parent", "children", "compositingState", "reasons",
	"reasonDescriptions", "hasReason", "notCompositedReason",
	"squashingDisallowedReasons", "touch", "wheel",
	"setStyle", "setGeometry", "setContentSize", "scrollTo", "remove",
	"addReflection", "addToTopLayer", "removeFromTopLayer", "graphicsLayers",
}

func (a *layerAccessor) Get(key string) goja.Value {
	s, l, vm := a.s, a.l, a.s.vm
	switch key {
	case "name":
		return vm.ToValue(l.Name)
	case "kind":
		return vm.ToValue(l.Kind.String())
	case "parent":
		if p := l.Parent(); p != nil {
			return s.layerProxy(p)
		}
		return goja.Null()
	case "children":
		children := l.Children()
		vals := make([]goja.Value, len(children))
		for i, c := range children {
			vals[i] = s.layerProxy(c)
		}
		return s.array(vals)
	case "compositingState":
		return vm.ToValue(l.CompositingState().String())
	case "reasons":
		return vm.ToValue(l.CompositingReasons().String())
	case "reasonDescriptions":
		descs := l.CompositingReasons().Descriptions()
		vals := make([]goja.Value, len(descs))
		for i, d := range descs {
			vals[i] = vm.ToValue(d)
		}
		return s.array(vals)
	case "hasReason":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			name := argString(call, 0)
			r, ok := layer.ReasonByName(name)
			if !ok {
				panic(vm.NewTypeError("hasReason: unknown compositing reason %q", name))
			}
			return vm.ToValue(l.CompositingReasons()&r != 0)
		})
	case "notCompositedReason":
		return vm.ToValue(l.NotCompositedReason().String())
	case "squashingDisallowedReasons":
		return vm.ToValue(l.SquashingDisallowedReasons().String())
	case "touch":
		return vm.ToValue(l.HasTouchHandler)
	case "wheel":
		return vm.ToValue(l.WantsWheelEvents)
	case "setStyle":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			hadFixedBackground := l.Style().HasFixedBackground()
			l.SetStyle(style.ParseInlineStyle(argString(call, 0)))
			s.coordinator.ScrollableAreasDidChange()
			if hadFixedBackground != l.Style().HasFixedBackground() {
				s.coordinator.SlowRepaintObjectsDidChange()
			}
			return goja.Undefined()
		})
	case "setGeometry":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			l.SetGeometry(
				geom.Point{X: argFloat(call, 0), Y: argFloat(call, 1)},
				geom.Size{W: argFloat(call, 2), H: argFloat(call, 3)},
			)
			s.coordinator.ScrollableAreasDidChange()
			s.coordinator.TouchEventHandlersDidChange()
			return goja.Undefined()
		})
	case "setContentSize":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			l.SetContentSize(geom.Size{W: argFloat(call, 0), H: argFloat(call, 1)})
			s.coordinator.ScrollableAreasDidChange()
			return goja.Undefined()
		})
	case "scrollTo":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			l.ScrollTo(geom.Point{X: argFloat(call, 0), Y: argFloat(call, 1)})
			s.coordinator.ScrollableAreasDidChange()
			s.coordinator.TouchEventHandlersDidChange()
			return goja.Undefined()
		})
	case "remove":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			s.removeLayer(l)
			return goja.Undefined()
		})
	case "addReflection":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			return s.layerProxy(l.Tree().AddReflection(l))
		})
	case "addToTopLayer":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			l.Tree().AddToTopLayer(l)
			return goja.Undefined()
		})
	case "removeFromTopLayer":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			l.Tree().RemoveFromTopLayer(l)
			return goja.Undefined()
		})
	case "graphicsLayers":
		return vm.ToValue(func(goja.FunctionCall) goja.Value {
			var names []goja.Value
			if m := l.CompositedLayerMapping(); m != nil {
				names = append(names, vm.ToValue(m.MainGraphicsLayer().Name))
				if sq := m.SquashingLayer(); sq != nil {
					names = append(names, vm.ToValue(sq.Name))
				}
				if sc := m.ScrollingContentsLayer(); sc != nil {
					names = append(names, vm.ToValue(sc.Name))
				}
			}
			return s.array(names)
		})
	}
	return goja.Undefined()
}

// Set handles the plain boolean properties. Everything else is read-only.
func (a *layerAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "touch":
		a.l.HasTouchHandler = val.ToBoolean()
		a.s.coordinator.TouchEventHandlersDidChange()
		return true
	case "wheel":
		a.l.WantsWheelEvents = val.ToBoolean()
		a.s.coordinator.ScrollableAreasDidChange()
		return true
	}
	return false
}

func (a *layerAccessor) Delete(string) bool { return false }
func (a *layerAccessor) Keys() []string     { return layerKeys }

func (a *layerAccessor) Has(key string) bool {
	for _, k := range layerKeys {
		if k == key {
			return true
		}
	}
	return false
}

// removeLayer detaches l and its subtree, tearing down any frames hosted
// below it first.
func (s *Scene) removeLayer(l *layer.Layer) {
	if l.IsRoot() {
		panic(s.vm.NewTypeError("remove: the root layer cannot be removed"))
	}
	var hosted []*frame.Frame
	for _, f := range s.page.Frames() {
		if owner := f.Owner(); owner != nil && owner.Tree() == l.Tree() && isInclusiveAncestor(l, owner) {
			hosted = append(hosted, f)
		}
	}
	for _, f := range hosted {
		if p := f.Parent(); p != nil {
			p.RemoveChildFrame(f)
		}
		delete(s.frames, f)
	}
	var removed []*layer.Layer
	l.Tree().Walk(func(d *layer.Layer) bool {
		if isInclusiveAncestor(l, d) {
			removed = append(removed, d)
		}
		return true
	})
	l.Tree().Remove(l)
	for _, d := range removed {
		delete(s.layers, d)
	}
	s.coordinator.ScrollableAreasDidChange()
	s.coordinator.TouchEventHandlersDidChange()
	s.coordinator.SlowRepaintObjectsDidChange()
}

func isInclusiveAncestor(ancestor, l *layer.Layer) bool {
	for cur := l; cur != nil; cur = cur.Parent() {
		if cur == ancestor {
			return true
		}
	}
	return false
}
