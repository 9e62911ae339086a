package layer

import (
	"testing"

	"layercomp/pkg/geom"
	"layercomp/pkg/style"
)

func newTestTree(t *testing.T, w, h float64) *Tree {
	t.Helper()
	return NewTree(geom.Size{W: w, H: h})
}

func addLayer(t *testing.T, tree *Tree, parent *Layer, name, css string, r geom.Rect) *Layer {
	t.Helper()
	l := tree.Add(parent, name, KindBlock, style.ParseInlineStyle(css))
	l.SetGeometry(r.Location(), r.Size())
	l.HasContent = true
	return l
}

func names(layers []*Layer) []string {
	out := make([]string, len(layers))
	for i, l := range layers {
		out[i] = l.Name
	}
	return out
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
