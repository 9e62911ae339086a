package graphics

import "sync/atomic"

// Factory allocates layers on the platform compositor. NewLayer returns nil
// when the platform cannot provide another surface; callers fall back to
// painting into an ancestor.
type Factory interface {
	NewLayer(name string) *Layer
}

var nextHandle atomic.Uint64

func newLayer(name string) *Layer {
	return &Layer{Name: name, handle: Handle(nextHandle.Add(1))}
}

// DefaultFactory never fails.
type DefaultFactory struct{}

func (DefaultFactory) NewLayer(name string) *Layer {
	return newLayer(name)
}

// BudgetFactory hands out at most Remaining layers. Used to exercise the
// allocation-failure paths.
type BudgetFactory struct {
	Remaining int
	Denied    int
}

func (f *BudgetFactory) NewLayer(name string) *Layer {
	if f.Remaining <= 0 {
		f.Denied++
		return nil
	}
	f.Remaining--
	return newLayer(name)
}
