// Package scrolling decides which parts of a page the compositor can
// scroll on its own and publishes the regions and reasons that send
// scrolling back to the main thread.
package scrolling

import "strings"

// MainThreadScrollingReasons explains why the main frame cannot be
// scrolled by the compositor alone.
type MainThreadScrollingReasons uint32

const (
	ForcedOnMainThread MainThreadScrollingReasons = 1 << iota
	HasSlowRepaintObjects
	HasViewportConstrainedObjectsWithoutSupportingFixedLayers
	HasNonLayerViewportConstrainedObjects
	ThreadedScrollingDisabled
)

var reasonTexts = []struct {
	reason MainThreadScrollingReasons
	text   string
}{
	{ForcedOnMainThread, "Forced on main thread"},
	{HasSlowRepaintObjects, "Has slow repaint objects"},
	{HasViewportConstrainedObjectsWithoutSupportingFixedLayers, "Has viewport constrained objects without supporting fixed layers"},
	{HasNonLayerViewportConstrainedObjects, "Has non-layer viewport-constrained objects"},
	{ThreadedScrollingDisabled, "Threaded scrolling is disabled"},
}

// AsText lists the set reasons, comma separated, for debug output.
func (r MainThreadScrollingReasons) AsText() string {
	var parts []string
	for _, rt := range reasonTexts {
		if r&rt.reason != 0 {
			parts = append(parts, rt.text)
		}
	}
	return strings.Join(parts, ", ")
}

func (r MainThreadScrollingReasons) String() string { return r.AsText() }
