package compositing

import (
	"fmt"

	"layercomp/pkg/config"
	"layercomp/pkg/graphics"
	"layercomp/pkg/layer"
	"layercomp/pkg/logging"
	"layercomp/pkg/style"
)

// CompositingUpdateType orders how much of the pipeline the next update
// has to run. Requests only ever raise the pending type.
type CompositingUpdateType int

const (
	CompositingUpdateNone CompositingUpdateType = iota
	CompositingUpdateAfterGeometryChange
	CompositingUpdateAfterCompositingInputChange
	CompositingUpdateRebuildTree
)

func (t CompositingUpdateType) String() string {
	switch t {
	case CompositingUpdateAfterGeometryChange:
		return "AfterGeometryChange"
	case CompositingUpdateAfterCompositingInputChange:
		return "AfterCompositingInputChange"
	case CompositingUpdateRebuildTree:
		return "RebuildTree"
	}
	return "None"
}

// ScrollingObserver is told when a compositing update changed something
// the scrolling coordinator derives state from.
type ScrollingObserver interface {
	FrameViewRootLayerDidChange(tree *layer.Tree)
	FrameViewFixedObjectsDidChange(tree *layer.Tree)
	ScrollableAreaScrollLayerDidChange(area *layer.ScrollableArea)
	TouchEventTargetRectsDidChange(tree *layer.Tree)
}

// UpdateStats summarises the last update for logging and tests.
type UpdateStats struct {
	Type           CompositingUpdateType
	Composited     int
	Squashed       int
	LayersChanged  bool
	RebuiltTree    bool
	MappingUpdates int
}

// Compositor owns compositing for one document. Child documents hosted by
// iframes have their own Compositor, linked through AddChildCompositor.
type Compositor struct {
	tree     *layer.Tree
	services *Services
	finder   *ReasonFinder

	parent       *Compositor
	children     map[*layer.Layer]*Compositor
	observer     ScrollingObserver
	childRemoved func(owner *layer.Layer)

	compositing       bool
	pendingUpdateType CompositingUpdateType
	rootLayerChanged  bool

	// Root layer hierarchy, present only in compositing mode:
	// overflowControlsHost > container > scroll > rootContent.
	overflowControlsHost *graphics.Layer
	containerLayer       *graphics.Layer
	scrollLayer          *graphics.Layer
	rootContentLayer     *graphics.Layer

	layerForHorizontalScrollbar *graphics.Layer
	layerForVerticalScrollbar   *graphics.Layer
	layerForScrollCorner        *graphics.Layer

	lastUpdate UpdateStats
}

// NewCompositor attaches a compositor to tree. Style reasons of layers
// already in the tree are cached immediately.
func NewCompositor(tree *layer.Tree, services *Services) *Compositor {
	if services == nil {
		services = NewServices(config.DefaultSettings(), nil)
	}
	c := &Compositor{
		tree:              tree,
		services:          services,
		children:          make(map[*layer.Layer]*Compositor),
		pendingUpdateType: CompositingUpdateAfterCompositingInputChange,
	}
	c.finder = NewReasonFinder(services.Settings, c.frameComposited)
	tree.SetClient(c)
	tree.Walk(func(l *layer.Layer) bool {
		l.SetStyleDeterminedReasons(c.finder.PotentialReasonsFromStyle(l))
		return true
	})
	return c
}

// AddChildCompositor hosts child's document in the iframe layer owner.
func (c *Compositor) AddChildCompositor(owner *layer.Layer, child *Compositor) {
	layer.Assert(owner.Tree() == c.tree, "iframe owner must belong to this document")
	layer.Assert(owner.Kind == layer.KindIFrame, "only iframe layers host documents")
	child.tree.Owner = owner
	child.parent = c
	owner.ContentTree = child.tree
	c.children[owner] = child
	owner.SetNeedsCompositingInputsUpdate()
	c.SetNeedsCompositingUpdate(CompositingUpdateRebuildTree)
}

// RemoveChildCompositor detaches the document hosted by owner.
func (c *Compositor) RemoveChildCompositor(owner *layer.Layer) {
	child, ok := c.children[owner]
	if !ok {
		return
	}
	delete(c.children, owner)
	child.detachRootLayer()
	child.parent = nil
	child.tree.Owner = nil
	owner.ContentTree = nil
	c.SetNeedsCompositingUpdate(CompositingUpdateRebuildTree)
	if c.childRemoved != nil {
		c.childRemoved(owner)
	}
}

// SetChildRemovedHandler registers fn to run after a hosted document is
// detached, including when its iframe layer leaves the tree.
func (c *Compositor) SetChildRemovedHandler(fn func(owner *layer.Layer)) { c.childRemoved = fn }

func (c *Compositor) Tree() *layer.Tree                        { return c.tree }
func (c *Compositor) Services() *Services                      { return c.services }
func (c *Compositor) ReasonFinder() *ReasonFinder              { return c.finder }
func (c *Compositor) SetScrollingObserver(o ScrollingObserver) { c.observer = o }

// ChildCompositor returns the compositor of the document hosted by owner.
func (c *Compositor) ChildCompositor(owner *layer.Layer) *Compositor { return c.children[owner] }

func (c *Compositor) InCompositingMode() bool { return c.compositing }

// StaleInCompositingMode is the mode as of the last update, which is what
// the assigner must use while the current update is deciding the new one.
func (c *Compositor) staleInCompositingMode() bool { return c.compositing }

func (c *Compositor) PendingUpdateType() CompositingUpdateType { return c.pendingUpdateType }
func (c *Compositor) LastUpdate() UpdateStats                  { return c.lastUpdate }

// SetNeedsCompositingUpdate raises the pending update type.
func (c *Compositor) SetNeedsCompositingUpdate(t CompositingUpdateType) {
	if t > c.pendingUpdateType {
		c.pendingUpdateType = t
	}
}

// RootGraphicsLayer is the top of this document's graphics layer tree, or
// nil outside compositing mode.
func (c *Compositor) RootGraphicsLayer() *graphics.Layer {
	if c.overflowControlsHost != nil {
		return c.overflowControlsHost
	}
	return c.rootContentLayer
}

func (c *Compositor) ScrollLayer() *graphics.Layer                 { return c.scrollLayer }
func (c *Compositor) ContainerLayer() *graphics.Layer              { return c.containerLayer }
func (c *Compositor) RootContentLayer() *graphics.Layer            { return c.rootContentLayer }
func (c *Compositor) LayerForHorizontalScrollbar() *graphics.Layer { return c.layerForHorizontalScrollbar }
func (c *Compositor) LayerForVerticalScrollbar() *graphics.Layer   { return c.layerForVerticalScrollbar }
func (c *Compositor) LayerForScrollCorner() *graphics.Layer        { return c.layerForScrollCorner }

// LayerTreeAsText dumps the graphics layer tree. It is empty outside
// compositing mode.
func (c *Compositor) LayerTreeAsText(flags graphics.TextFlags) string {
	root := c.RootGraphicsLayer()
	if root == nil {
		return ""
	}
	return root.AsText(flags)
}

func (c *Compositor) canBeComposited(l *layer.Layer) bool {
	return c.services.Settings.AcceleratedCompositing && (l.IsSelfPainting() || l.IsRoot()) && !l.IsReflection()
}

// CanBeComposited reports whether l may ever get a backing of its own.
func (c *Compositor) CanBeComposited(l *layer.Layer) bool { return c.canBeComposited(l) }

// RootShouldAlwaysComposite keeps the root composited even when nothing
// else is: the main document always composites, and an inner document does
// when it scrolls on the compositor.
func (c *Compositor) RootShouldAlwaysComposite() bool {
	if !c.services.Settings.AcceleratedCompositing {
		return false
	}
	return c.tree.Owner == nil || c.finder.RequiresCompositingForScrollableFrame(c.tree)
}

func (c *Compositor) frameComposited(l *layer.Layer) bool {
	child := c.children[l]
	return child != nil && child.InCompositingMode()
}

// frameContentLayer is the root graphics layer of the document hosted by
// l, when that document composites.
func (c *Compositor) frameContentLayer(l *layer.Layer) *graphics.Layer {
	child := c.children[l]
	if child == nil || !child.InCompositingMode() {
		return nil
	}
	return child.RootGraphicsLayer()
}

// allocateOrClearCompositedLayerMapping applies an assignment decision. It
// returns true when l's backing changed.
func (c *Compositor) allocateOrClearCompositedLayerMapping(l *layer.Layer, update CompositingStateTransition) bool {
	changed := false
	switch update {
	case AllocateOwnCompositedLayerMapping:
		layer.Assert(l.CompositedLayerMapping() == nil, "layer already has a backing")
		c.setCompositingModeEnabled(true)
		// A layer leaving a squashing layer for its own backing.
		if gm := l.GroupedMapping(); gm != nil {
			gm.RemoveLayerFromSquashingGraphicsLayer(l)
			gm.SetNeedsGraphicsLayerUpdate(layer.UpdateSubtree)
			l.SetGroupedMapping(nil)
		}
		l.SetLostGroupedMapping(false)
		if !l.EnsureCompositedLayerMapping(c.services.Factory) {
			return false
		}
		changed = true
		if l.IsRoot() {
			c.rootLayerChanged = true
		}
	case RemoveOwnCompositedLayerMapping, PutInSquashingLayer:
		// A layer moving into a squashing layer first loses its own backing.
		if l.CompositedLayerMapping() != nil {
			l.ClearCompositedLayerMapping()
			changed = true
			if l.IsRoot() {
				c.rootLayerChanged = true
			}
		}
	}

	if changed {
		l.ClearClipRectsIncludingDescendantsOfType(layer.PaintingClipRects)
		if c.observer != nil {
			if l.Style().GetPosition() == style.PositionFixed {
				c.observer.FrameViewFixedObjectsDidChange(c.tree)
			}
			if a := l.ScrollableArea(); a != nil {
				c.observer.ScrollableAreaScrollLayerDidChange(a)
			}
		}
	}
	return changed
}

// setCompositingModeEnabled builds or tears down the root layer hierarchy.
func (c *Compositor) setCompositingModeEnabled(enable bool) {
	if enable == c.compositing {
		return
	}
	if enable {
		if !c.ensureRootLayer() {
			logging.Logger().Warn("root graphics layers could not be allocated, staying out of compositing mode",
				"document", c.documentName())
			return
		}
	} else {
		c.destroyRootLayer()
	}
	c.compositing = enable
	logging.Logger().Info("compositing mode changed", "document", c.documentName(), "enabled", enable)

	// The hosting document composites the iframe differently now.
	if c.parent != nil && c.tree.Owner != nil {
		c.tree.Owner.SetNeedsCompositingInputsUpdate()
		c.parent.SetNeedsCompositingUpdate(CompositingUpdateRebuildTree)
	}
	if c.observer != nil {
		c.observer.FrameViewRootLayerDidChange(c.tree)
	}
}

func (c *Compositor) documentName() string {
	if c.tree.Owner != nil {
		return fmt.Sprintf("frame:%s", c.tree.Owner.Name)
	}
	return "main"
}

// ensureRootLayer allocates the four-layer root hierarchy.
func (c *Compositor) ensureRootLayer() bool {
	if c.rootContentLayer != nil {
		return true
	}
	f := c.services.Factory
	host := f.NewLayer("frame overflow controls host")
	container := f.NewLayer("frame clipping")
	scroll := f.NewLayer("frame scroll")
	content := f.NewLayer("root content")
	if host == nil || container == nil || scroll == nil || content == nil {
		return false
	}
	container.MasksToBounds = true
	scroll.Scrollable = true
	host.AddChild(container)
	container.AddChild(scroll)
	scroll.AddChild(content)
	c.overflowControlsHost, c.containerLayer, c.scrollLayer, c.rootContentLayer = host, container, scroll, content
	c.rootLayerChanged = true
	return true
}

func (c *Compositor) destroyRootLayer() {
	if c.rootContentLayer == nil {
		return
	}
	c.destroyFrameScrollbarLayers()
	c.detachRootLayer()
	for _, g := range []*graphics.Layer{c.rootContentLayer, c.scrollLayer, c.containerLayer, c.overflowControlsHost} {
		g.RemoveAllChildren()
		g.RemoveFromParent()
	}
	c.overflowControlsHost, c.containerLayer, c.scrollLayer, c.rootContentLayer = nil, nil, nil, nil
	c.rootLayerChanged = true
}

func (c *Compositor) detachRootLayer() {
	if root := c.RootGraphicsLayer(); root != nil {
		root.RemoveFromParent()
	}
}
