package compositing

import (
	"layercomp/pkg/graphics"
	"layercomp/pkg/layer"
)

// treeBuilder reattaches every mapping's graphics layers under the
// mapping of its compositing ancestor, in paint order.
type treeBuilder struct {
	// frameContentLayer returns the root graphics layer of the document
	// hosted by an iframe layer, or nil when that document is not
	// composited.
	frameContentLayer func(*layer.Layer) *graphics.Layer
}

// rebuild appends the graphics layers that l's subtree contributes to
// the child list of the enclosing mapping.
func (b *treeBuilder) rebuild(l *layer.Layer, childLayersOfEnclosing *[]*graphics.Layer) {
	m := l.CompositedLayerMapping()

	var layerChildren []*graphics.Layer
	target := childLayersOfEnclosing
	if m != nil {
		target = &layerChildren
		if r := l.Reflection(); r != nil {
			if rm := r.CompositedLayerMapping(); rm != nil {
				layerChildren = append(layerChildren, rm.ChildForSuperlayers())
			}
		}
	}

	if l.IsStackingContext() {
		for _, c := range l.NegZOrderList() {
			b.rebuild(c, target)
		}
		// Negative z children paint between the background in the main
		// layer and the foreground.
		if m != nil && m.ForegroundLayer() != nil {
			layerChildren = append(layerChildren, m.ForegroundLayer())
		}
	}
	for _, c := range l.PaintOrderChildren(layer.NormalFlowChildren | layer.PositiveZOrderChildren) {
		b.rebuild(c, target)
	}

	if m == nil {
		return
	}
	parented := false
	if l.Kind == layer.KindIFrame && b.frameContentLayer != nil {
		if content := b.frameContentLayer(l); content != nil {
			m.SetSublayers([]*graphics.Layer{content})
			parented = true
		}
	}
	if !parented {
		m.SetSublayers(layerChildren)
	}
	if childLayersOfEnclosing != nil {
		*childLayersOfEnclosing = append(*childLayersOfEnclosing, m.ChildForSuperlayers())
	}
}
