package layer

import (
	"fmt"
	"strings"
)

// DumpTree renders the layer tree with compositing state, one layer per
// line, for debugging.
func (t *Tree) DumpTree() string {
	var sb strings.Builder
	var dump func(l *Layer, depth int)
	dump = func(l *Layer, depth int) {
		sb.WriteString(strings.Repeat("  ", depth))
		fmt.Fprintf(&sb, "%s [%s] at %v size %gx%g", l, l.Kind, l.AbsolutePosition(), l.size.W, l.size.H)
		if l.IsStackingContext() {
			sb.WriteString(" sc")
		}
		if z, ok := l.style.GetZIndex(); ok {
			fmt.Fprintf(&sb, " z=%d", z)
		}
		if st := l.CompositingState(); st != NotComposited {
			fmt.Fprintf(&sb, " composited=%s", st)
		}
		if l.reasons != ReasonNone {
			fmt.Fprintf(&sb, " reasons=%s", l.reasons)
		}
		if l.squashingDisallowed != ReasonNone {
			fmt.Fprintf(&sb, " squashing-disallowed=%s", l.squashingDisallowed)
		}
		if l.notCompositedReason != NoNotCompositedReason {
			fmt.Fprintf(&sb, " not-composited=%s", l.notCompositedReason)
		}
		sb.WriteString("\n")
		for _, c := range l.Children() {
			dump(c, depth+1)
		}
	}
	dump(t.Root(), 0)
	return sb.String()
}
