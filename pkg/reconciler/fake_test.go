package reconciler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zwade/scenic/pkg/adapter"
	"github.com/zwade/scenic/pkg/scene"
	scerr "github.com/zwade/scenic/pkg/errors"
)

// fakeNode is a native node of the fake host engine used by the tests in
// this package. Property keys starting with "!" are treated as unknown
// by the fake adapter; a "failCreate" / "failApply" prop makes the
// corresponding call fail.
type fakeNode struct {
	kind     string
	id       string
	props    scene.Props
	children []*fakeNode
	disposed int
}

// dump renders the native structure, e.g. "container#1(sprite#2 text#3)".
func (n *fakeNode) dump() string {
	var b strings.Builder
	b.WriteString(n.id)
	if len(n.children) > 0 {
		b.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(c.dump())
		}
		b.WriteByte(')')
	}
	return b.String()
}

type fakeEnv struct {
	seq   int
	calls []string
}

func (e *fakeEnv) log(format string, args ...any) {
	e.calls = append(e.calls, fmt.Sprintf(format, args...))
}

func (e *fakeEnv) reset() {
	e.calls = nil
}

// callsNamed returns the calls whose first word is op.
func (e *fakeEnv) callsNamed(op string) []string {
	var out []string
	for _, c := range e.calls {
		if strings.HasPrefix(c, op+" ") {
			out = append(out, c)
		}
	}
	return out
}

type fakeAdapter struct {
	env  *fakeEnv
	kind string
}

func (a *fakeAdapter) newNode(props scene.Props) *fakeNode {
	a.env.seq++
	n := &fakeNode{kind: a.kind, id: fmt.Sprintf("%s#%d", a.kind, a.env.seq), props: scene.Props{}}
	for k, v := range props {
		if !strings.HasPrefix(k, "!") {
			n.props[k] = v
		}
	}
	return n
}

func (a *fakeAdapter) Create(initial scene.Props) (adapter.Handle, error) {
	if v, ok := initial["failCreate"]; ok && v == true {
		return nil, fmt.Errorf("induced create failure")
	}
	n := a.newNode(initial)
	a.env.log("create %s", n.id)
	return n, nil
}

func (a *fakeAdapter) ApplyProps(h adapter.Handle, prev, next scene.Props) error {
	n := h.(*fakeNode)
	if v, ok := next["failApply"]; ok && v == true {
		return fmt.Errorf("induced apply failure")
	}
	a.env.log("apply %s", n.id)
	changed, removed := adapter.DiffProps(prev, next)
	var errs []error
	for k, v := range changed {
		if strings.HasPrefix(k, "!") {
			errs = append(errs, &scerr.UnknownPropertyError{Kind: a.kind, Prop: k})
			continue
		}
		n.props[k] = v
	}
	for _, k := range removed {
		delete(n.props, k)
	}
	return errors.Join(errs...)
}

func (a *fakeAdapter) AttachChild(parent, child, before adapter.Handle) error {
	p, c := parent.(*fakeNode), child.(*fakeNode)
	if before == nil {
		p.children = append(p.children, c)
		a.env.log("attach %s < %s @end", p.id, c.id)
		return nil
	}
	b := before.(*fakeNode)
	for i, existing := range p.children {
		if existing == b {
			p.children = append(p.children, nil)
			copy(p.children[i+1:], p.children[i:])
			p.children[i] = c
			a.env.log("attach %s < %s before %s", p.id, c.id, b.id)
			return nil
		}
	}
	return fmt.Errorf("before handle %s not found under %s", b.id, p.id)
}

func (a *fakeAdapter) DetachChild(parent, child adapter.Handle) error {
	p, c := parent.(*fakeNode), child.(*fakeNode)
	for i, existing := range p.children {
		if existing == c {
			p.children = append(p.children[:i], p.children[i+1:]...)
			a.env.log("detach %s < %s", p.id, c.id)
			return nil
		}
	}
	return fmt.Errorf("child %s not found under %s", c.id, p.id)
}

func (a *fakeAdapter) Dispose(h adapter.Handle) error {
	n := h.(*fakeNode)
	if n.disposed > 0 {
		return nil
	}
	n.disposed++
	a.env.log("dispose %s", n.id)
	return nil
}

// newFakeEnv builds a fake host with adapters for the given kinds plus
// "container", and a pre-created container node.
func newFakeEnv(kinds ...string) (*fakeEnv, *adapter.Table, *fakeNode) {
	env := &fakeEnv{}
	table := adapter.NewTable()
	all := append([]string{"container"}, kinds...)
	for _, k := range all {
		table.MustRegister(k, &fakeAdapter{env: env, kind: k})
	}
	container := &fakeNode{kind: "container", id: "root"}
	return env, table, container
}
