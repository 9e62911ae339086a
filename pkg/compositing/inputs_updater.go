package compositing

import "layercomp/pkg/layer"

// updateCompositingInputs refreshes the ancestor-dependent inputs of every
// dirty layer under root. A dirty layer forces its whole subtree, since
// descendants derive their inputs from it.
func updateCompositingInputs(root *layer.Layer) {
	updateInputsRecursive(root, root, false, nil)
}

func updateInputsRecursive(root, l *layer.Layer, force bool, enclosingComposited *layer.Layer) {
	if !force && !l.NeedsCompositingInputsUpdate() && !l.ChildNeedsCompositingInputsUpdate() {
		return
	}
	if l.CompositedLayerMapping() != nil {
		enclosingComposited = l
	}
	if l.NeedsCompositingInputsUpdate() {
		if enclosingComposited != nil {
			enclosingComposited.CompositedLayerMapping().SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
		}
		force = true
	}
	if force {
		l.SetCompositingInputs(computeCompositingInputs(root, l))
	}
	for _, c := range l.Children() {
		updateInputsRecursive(root, c, force, enclosingComposited)
	}
	l.ClearChildNeedsCompositingInputsUpdate()
}

func computeCompositingInputs(root, l *layer.Layer) layer.CompositingInputs {
	var in layer.CompositingInputs
	in.AbsoluteBoundingBox = l.AbsoluteBoundingBox()
	parent := l.Parent()
	if parent == nil {
		in.ClippedAbsoluteBoundingBox = in.AbsoluteBoundingBox
		return in
	}

	clipped := in.AbsoluteBoundingBox
	if clipped.IsEmpty() {
		// Empty layers still take part in overlap testing.
		clipped.W, clipped.H = 1, 1
	}
	in.ClippedAbsoluteBoundingBox = clipped.Intersect(l.BackgroundClipRect(layer.NewClipRectsContext(root, layer.PaintingClipRects)))

	pin := parent.CompositingInputs()
	pst := parent.Style()
	in.OpacityAncestor = pick(pst.HasOpacity(), parent, pin.OpacityAncestor)
	in.TransformAncestor = pick(pst.HasTransform(), parent, pin.TransformAncestor)
	in.FilterAncestor = pick(pst.HasFilter(), parent, pin.FilterAncestor)

	if cb := l.Container(); cb != nil {
		cin := cb.CompositingInputs()
		in.ClippingContainer = pick(cb.HasOverflowClip() || cb.HasCSSClip(), cb, cin.ClippingContainer)
		sa := cb.ScrollableArea()
		in.AncestorScrollingLayer = pick(sa != nil && sa.IsScrollable(), cb, cin.AncestorScrollingLayer)
	}

	tree := l.Tree()
	if scroller := tree.Layer(in.AncestorScrollingLayer); scroller != nil && !l.IsNormalFlowOnly() &&
		!onCompositingContainerChain(l, scroller) {
		in.ScrollParent = scroller.ID()
	}

	if l.Style().IsOutOfFlowPositioned() {
		clippingLayer := tree.Layer(in.ClippingContainer)
		if clippingLayer == nil {
			clippingLayer = root
		}
		if hasClippedStackingAncestor(l, clippingLayer) {
			in.ClipParent = clippingLayer.ID()
		}
		in.IsUnclippedDescendant = escapesAncestorClip(l)
	}
	return in
}

func pick(cond bool, l *layer.Layer, otherwise layer.ID) layer.ID {
	if cond {
		return l.ID()
	}
	return otherwise
}

func onCompositingContainerChain(l, ancestor *layer.Layer) bool {
	for c := l.CompositingContainer(); c != nil; c = c.CompositingContainer() {
		if c == ancestor {
			return true
		}
	}
	return false
}

// hasClippedStackingAncestor reports a clip between l and clippingLayer
// on the compositing container chain that does not apply to l in paint
// terms, so l's graphics layer must be parented for clipping elsewhere.
func hasClippedStackingAncestor(l, clippingLayer *layer.Layer) bool {
	if l == clippingLayer {
		return false
	}
	found := false
	for cur := l.CompositingContainer(); cur != nil; cur = cur.CompositingContainer() {
		if cur == clippingLayer {
			return found
		}
		if (cur.HasOverflowClip() || cur.HasCSSClip()) && !clippingLayer.IsDescendantOf(cur) {
			found = true
		}
	}
	return false
}

// escapesAncestorClip reports an out-of-flow layer sitting inside an
// overflow clip that is not on its containing block chain.
func escapesAncestorClip(l *layer.Layer) bool {
	cb := l.Container()
	for p := l.Parent(); p != nil && p != cb; p = p.Parent() {
		if p.HasOverflowClip() {
			return true
		}
	}
	return false
}
