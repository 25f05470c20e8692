package adapter

import (
	"fmt"

	"github.com/zwade/scenic/pkg/scene"
)

// Funcs is an Adapter assembled from optional function fields, for quick
// construction in tests and prototypes. Nil fields are no-ops, except
// CreateFunc which is required.
type Funcs struct {
	CreateFunc      func(initial scene.Props) (Handle, error)
	ApplyPropsFunc  func(h Handle, prev, next scene.Props) error
	AttachChildFunc func(parent, child, before Handle) error
	DetachChildFunc func(parent, child Handle) error
	DisposeFunc     func(h Handle) error
}

func (f *Funcs) Create(initial scene.Props) (Handle, error) {
	if f.CreateFunc == nil {
		return nil, fmt.Errorf("adapter: Funcs.CreateFunc is nil")
	}
	return f.CreateFunc(initial)
}

func (f *Funcs) ApplyProps(h Handle, prev, next scene.Props) error {
	if f.ApplyPropsFunc == nil {
		return nil
	}
	return f.ApplyPropsFunc(h, prev, next)
}

func (f *Funcs) AttachChild(parent, child, before Handle) error {
	if f.AttachChildFunc == nil {
		return nil
	}
	return f.AttachChildFunc(parent, child, before)
}

func (f *Funcs) DetachChild(parent, child Handle) error {
	if f.DetachChildFunc == nil {
		return nil
	}
	return f.DetachChildFunc(parent, child)
}

func (f *Funcs) Dispose(h Handle) error {
	if f.DisposeFunc == nil {
		return nil
	}
	return f.DisposeFunc(h)
}
