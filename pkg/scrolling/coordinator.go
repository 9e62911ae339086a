package scrolling

import (
	"layercomp/pkg/compositing"
	"layercomp/pkg/frame"
	"layercomp/pkg/geom"
	"layercomp/pkg/graphics"
	"layercomp/pkg/layer"
	"layercomp/pkg/logging"
)

// Coordinator keeps the main frame's scroll layer informed about what the
// compositor cannot scroll by itself. Every piece of derived state has a
// dirty bit and is only recomputed when something invalidated it.
type Coordinator struct {
	page *frame.Page

	scrollGestureRegionIsDirty     bool
	touchEventTargetRectsAreDirty  bool
	shouldScrollOnMainThreadDirty  bool
	wasFrameScrollable             bool
	lastMainThreadScrollingReasons MainThreadScrollingReasons

	nonFastScrollableRegion geom.Region
	touchRects              map[*graphics.Layer][]geom.Rect
}

var _ compositing.ScrollingObserver = (*Coordinator)(nil)

// NewCoordinator attaches a coordinator to every frame of page. All state
// starts dirty.
func NewCoordinator(page *frame.Page) *Coordinator {
	c := &Coordinator{
		page:                          page,
		scrollGestureRegionIsDirty:    true,
		touchEventTargetRectsAreDirty: true,
		shouldScrollOnMainThreadDirty: true,
	}
	page.SetScrollingObserver(c)
	return c
}

func (c *Coordinator) FrameViewRootLayerDidChange(*layer.Tree) {
	c.scrollGestureRegionIsDirty = true
	c.touchEventTargetRectsAreDirty = true
	c.shouldScrollOnMainThreadDirty = true
}

func (c *Coordinator) FrameViewFixedObjectsDidChange(*layer.Tree) {
	c.shouldScrollOnMainThreadDirty = true
}

func (c *Coordinator) ScrollableAreaScrollLayerDidChange(*layer.ScrollableArea) {
	c.scrollGestureRegionIsDirty = true
	c.touchEventTargetRectsAreDirty = true
}

func (c *Coordinator) TouchEventTargetRectsDidChange(*layer.Tree) {
	c.touchEventTargetRectsAreDirty = true
}

// ScrollableAreasDidChange is called when layers start or stop being
// scrollable, or gain or lose a resizer or a wheel-consuming plugin.
func (c *Coordinator) ScrollableAreasDidChange() {
	c.scrollGestureRegionIsDirty = true
}

// TouchEventHandlersDidChange is called when a touch handler is added or
// removed anywhere in the page.
func (c *Coordinator) TouchEventHandlersDidChange() {
	c.touchEventTargetRectsAreDirty = true
}

// SlowRepaintObjectsDidChange is called when fixed backgrounds come or go.
func (c *Coordinator) SlowRepaintObjectsDidChange() {
	c.shouldScrollOnMainThreadDirty = true
}

// UpdateAfterCompositingChangeIfNeeded recomputes the dirty parts of the
// scrolling state and pushes them to the main frame's scroll layer. It
// runs after the compositing update.
func (c *Coordinator) UpdateAfterCompositingChangeIfNeeded() {
	main := c.page.MainFrame()
	frameIsScrollable := main.IsScrollable()
	if c.wasFrameScrollable != frameIsScrollable {
		c.scrollGestureRegionIsDirty = true
	}
	c.wasFrameScrollable = frameIsScrollable

	// Regions the compositor must hand back to the main thread
	if c.scrollGestureRegionIsDirty {
		c.nonFastScrollableRegion = c.ComputeShouldHandleScrollGestureOnMainThreadRegion(main, geom.Point{})
		if scroll := main.Compositor().ScrollLayer(); scroll != nil {
			scroll.NonFastScrollableRegion = c.nonFastScrollableRegion
		}
		c.scrollGestureRegionIsDirty = false
	}

	// Touch handler rects, projected into the backings they paint into
	if c.touchEventTargetRectsAreDirty {
		c.updateTouchEventTargetRects()
		c.touchEventTargetRectsAreDirty = false
	}

	// Reasons the whole frame scrolls on the main thread
	if c.shouldScrollOnMainThreadDirty {
		reasons := c.MainThreadScrollingReasons()
		if reasons != c.lastMainThreadScrollingReasons {
			logging.Logger().Debug("main thread scrolling reasons changed", "reasons", reasons.AsText())
		}
		c.lastMainThreadScrollingReasons = reasons
		if scroll := main.Compositor().ScrollLayer(); scroll != nil {
			scroll.MainThreadScrollingReasons = uint32(reasons)
		}
		c.shouldScrollOnMainThreadDirty = false
	}
}

// NonFastScrollableRegion is the region published by the last update.
func (c *Coordinator) NonFastScrollableRegion() geom.Region { return c.nonFastScrollableRegion }

// LastMainThreadScrollingReasons are the reasons published by the last
// update.
func (c *Coordinator) LastMainThreadScrollingReasons() MainThreadScrollingReasons {
	return c.lastMainThreadScrollingReasons
}

func (c *Coordinator) MainThreadScrollingReasonsAsText() string {
	return c.lastMainThreadScrollingReasons.AsText()
}

// ComputeShouldHandleScrollGestureOnMainThreadRegion unions, in the main
// document's coordinates, everything under which a scroll gesture must go
// to the main thread: scrollers the compositor does not scroll, resizer
// corners, plugins that want wheel events and scrollable child frames.
// Child frames are included recursively. offset maps f's document
// coordinates into the main document.
func (c *Coordinator) ComputeShouldHandleScrollGestureOnMainThreadRegion(f *frame.Frame, offset geom.Point) geom.Region {
	var region geom.Region
	for _, a := range f.ScrollableAreas() {
		if a.UsesCompositedScrolling() {
			continue
		}
		region.Unite(a.ScrollableAreaBoundingBox().Move(offset))
	}

	thickness := c.page.Services().Settings.Metrics.ScrollbarThickness
	for _, a := range f.ResizerAreas() {
		// Resizing is driven by scroll gestures handled on the main thread.
		region.Unite(a.ResizerCornerRect(thickness, true).Move(offset))
	}

	for _, p := range f.WheelEventPlugins() {
		region.Unite(p.AbsoluteBorderBox().Move(offset))
	}

	for _, child := range f.Children() {
		if child.IsScrollable() && !child.UsesCompositedScrolling() {
			region.Unite(child.FrameRect().Move(offset))
		}
		region.UniteRegion(c.ComputeShouldHandleScrollGestureOnMainThreadRegion(child, offset.Add(child.ContentOffsetInParent())))
	}
	return region
}

// MainThreadScrollingReasons computes the reasons from the current state
// of the main frame. It has no side effects.
func (c *Coordinator) MainThreadScrollingReasons() MainThreadScrollingReasons {
	main := c.page.MainFrame()
	settings := c.page.Services().Settings
	var reasons MainThreadScrollingReasons

	if main.Compositor().ScrollLayer() == nil {
		reasons |= ThreadedScrollingDisabled
	}
	if main.HasSlowRepaintObjects() {
		reasons |= HasSlowRepaintObjects
	}
	fixed := main.ViewportConstrainedObjects()
	if !settings.Triggers.ViewportConstrained && len(fixed) > 0 {
		reasons |= HasViewportConstrainedObjectsWithoutSupportingFixedLayers
	}
	if c.hasVisibleSlowRepaintViewportConstrainedObjects(main, fixed) {
		reasons |= HasNonLayerViewportConstrainedObjects
	}
	return reasons
}

// hasVisibleSlowRepaintViewportConstrainedObjects reports a fixed object
// the compositor cannot move: one that cannot have a backing at all, or
// one whose promotion failed for a reason other than being invisible.
func (c *Coordinator) hasVisibleSlowRepaintViewportConstrainedObjects(f *frame.Frame, fixed []*layer.Layer) bool {
	for _, l := range fixed {
		if !f.Compositor().CanBeComposited(l) {
			return true
		}
		if l.CompositingState() == layer.PaintsIntoOwnBacking {
			continue
		}
		switch l.NotCompositedReason() {
		case layer.NotCompositedForBoundsOutOfView, layer.NotCompositedForNoVisibleContent:
			continue
		}
		return true
	}
	return false
}
