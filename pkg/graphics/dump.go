package graphics

import (
	"fmt"
	"strings"
)

// TextFlags selects optional fields in the layer tree dump.
type TextFlags uint

const (
	TextIncludeNames TextFlags = 1 << iota
	TextIncludeRegions
	TextIncludeScrollParents
	TextIncludeCompositingReasons
)

// AsText dumps the tree rooted at l in the s-expression form used by layer
// tree expectations.
func (l *Layer) AsText(flags TextFlags) string {
	var sb strings.Builder
	l.dump(&sb, 0, flags)
	sb.WriteString("\n")
	return sb.String()
}

func writeIndent(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat("  ", indent))
}

func (l *Layer) dump(sb *strings.Builder, indent int, flags TextFlags) {
	writeIndent(sb, indent)
	sb.WriteString("(GraphicsLayer\n")
	field := func(format string, args ...any) {
		writeIndent(sb, indent+1)
		fmt.Fprintf(sb, format, args...)
		sb.WriteString("\n")
	}

	if flags&TextIncludeNames != 0 {
		field("(name %q)", l.Name)
	}
	if l.Position.X != 0 || l.Position.Y != 0 {
		field("(position %.2f %.2f)", l.Position.X, l.Position.Y)
	}
	if l.Size.W != 0 || l.Size.H != 0 {
		field("(bounds %.2f %.2f)", l.Size.W, l.Size.H)
	}
	if l.ContentsOpaque {
		field("(contentsOpaque 1)")
	}
	if l.DrawsContent {
		field("(drawsContent 1)")
	}
	if l.MasksToBounds {
		field("(masksToBounds 1)")
	}
	if l.Constraint.Fixed {
		field("(positionConstraint fixed right=%t bottom=%t)", l.Constraint.Right, l.Constraint.Bottom)
	}
	if l.Scrollable && (l.ScrollPosition.X != 0 || l.ScrollPosition.Y != 0) {
		field("(scrollPosition %.2f %.2f)", l.ScrollPosition.X, l.ScrollPosition.Y)
	}
	if flags&TextIncludeScrollParents != 0 {
		if l.ScrollParent != nil {
			field("(scrollParent %q)", l.ScrollParent.Name)
		}
		if l.ClipParent != nil {
			field("(clipParent %q)", l.ClipParent.Name)
		}
	}
	if flags&TextIncludeCompositingReasons != 0 && len(l.DebugReasons) > 0 {
		field("(compositingReasons %s)", strings.Join(l.DebugReasons, " "))
	}
	if flags&TextIncludeRegions != 0 {
		if !l.NonFastScrollableRegion.IsEmpty() {
			field("(nonFastScrollableRegion %s)", rectList(l.NonFastScrollableRegion.Rects()))
		}
		if !l.TouchEventHandlerRegion.IsEmpty() {
			field("(touchEventHandlerRegion %s)", rectList(l.TouchEventHandlerRegion.Rects()))
		}
		if l.MainThreadScrollingReasons != 0 {
			field("(mainThreadScrollingReasons %d)", l.MainThreadScrollingReasons)
		}
	}

	if len(l.children) > 0 {
		field("(children %d", len(l.children))
		for _, c := range l.children {
			c.dump(sb, indent+2, flags)
			sb.WriteString("\n")
		}
		writeIndent(sb, indent+1)
		sb.WriteString(")\n")
	}
	writeIndent(sb, indent)
	sb.WriteString(")")
}

func rectList[R fmt.Stringer](rects []R) string {
	parts := make([]string, len(rects))
	for i, r := range rects {
		parts[i] = "[" + r.String() + "]"
	}
	return strings.Join(parts, " ")
}
