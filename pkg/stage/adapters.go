package stage

import (
	stderrors "errors"
	"fmt"

	"github.com/zwade/scenic/pkg/adapter"
	"github.com/zwade/scenic/pkg/errors"
	"github.com/zwade/scenic/pkg/scene"
)

// nodeAdapter drives one node kind through the host contract. Setters
// and defaults are shared, immutable tables.
type nodeAdapter struct {
	kind     string
	typ      NodeType
	setters  map[string]propSetter
	defaults map[string]any
}

// Adapters returns a table with the built-in kinds registered:
// container, sprite and text.
func Adapters() *adapter.Table {
	t := adapter.NewTable()
	t.MustRegister("container", &nodeAdapter{
		kind: "container", typ: NodeContainer,
		setters: commonSetters, defaults: commonDefaults,
	})
	t.MustRegister("sprite", &nodeAdapter{
		kind: "sprite", typ: NodeSprite,
		setters: spriteSetters, defaults: spriteDefaults,
	})
	t.MustRegister("text", &nodeAdapter{
		kind: "text", typ: NodeText,
		setters: textSetters, defaults: textDefaults,
	})
	return t
}

func (a *nodeAdapter) Create(initial scene.Props) (adapter.Handle, error) {
	n := newNode(a.typ)
	if err := a.apply(n, initial); err != nil {
		if !errors.NonFatal(err) {
			return nil, err
		}
		errors.Report(err)
	}
	return n, nil
}

// apply writes every prop in props onto n. Unknown names accumulate as
// UnknownPropertyError; a setter failure is fatal and makes the joined
// error fatal as a whole.
func (a *nodeAdapter) apply(n *Node, props scene.Props) error {
	var errs []error
	for name, v := range props {
		set, ok := a.setters[name]
		if !ok {
			errs = append(errs, &errors.UnknownPropertyError{Kind: a.kind, Prop: name})
			continue
		}
		if err := set(n, v); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (a *nodeAdapter) ApplyProps(h adapter.Handle, prev, next scene.Props) error {
	n := h.(*Node)
	changed, removed := adapter.DiffProps(prev, next)

	var errs []error
	if err := a.apply(n, changed); err != nil {
		errs = append(errs, err)
	}
	for _, name := range removed {
		def, ok := a.defaults[name]
		if !ok {
			// Unknown props were never applied, nothing to reset.
			continue
		}
		if err := a.setters[name](n, def); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

func (a *nodeAdapter) AttachChild(parent, child, before adapter.Handle) error {
	p := parent.(*Node)
	c := child.(*Node)
	if c.isAncestorOf(p) {
		return fmt.Errorf("stage: attach would create a cycle")
	}
	if c.parent != nil {
		return fmt.Errorf("stage: node already attached")
	}
	index := len(p.children)
	if before != nil {
		index = p.indexOf(before.(*Node))
		if index < 0 {
			return fmt.Errorf("stage: anchor is not a child of the parent")
		}
	}
	p.insertChild(c, index)
	return nil
}

func (a *nodeAdapter) DetachChild(parent, child adapter.Handle) error {
	p := parent.(*Node)
	if !p.removeChild(child.(*Node)) {
		return fmt.Errorf("stage: node is not a child of the parent")
	}
	return nil
}

func (a *nodeAdapter) Dispose(h adapter.Handle) error {
	h.(*Node).Dispose()
	return nil
}
