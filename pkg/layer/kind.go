package layer

// Kind is the closed set of paint objects that can own a layer.
type Kind int

const (
	KindView Kind = iota
	KindBlock
	KindInline
	KindVideo
	KindCanvas
	KindPlugin
	KindIFrame
	KindReflection
)

var kindNames = [...]string{"view", "block", "inline", "video", "canvas", "plugin", "iframe", "reflection"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind accepts the names printed by Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return KindBlock, false
}

// IsReplaced reports kinds whose content comes from outside the paint tree.
func (k Kind) IsReplaced() bool {
	switch k {
	case KindVideo, KindCanvas, KindPlugin, KindIFrame:
		return true
	}
	return false
}

// CanBeBox reports whether the kind has a border box that can clip.
func (k Kind) CanBeBox() bool {
	return k != KindInline && k != KindReflection
}
