// Package scenetest provides test tooling for the reconciler and for
// adapter authors: a recording host engine, a pump-style harness, and
// stable tree snapshots.
package scenetest

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zwade/scenic/pkg/adapter"
	"github.com/zwade/scenic/pkg/errors"
	"github.com/zwade/scenic/pkg/scene"
)

// RecordedNode is a native node of the recording host engine.
type RecordedNode struct {
	Kind     string
	ID       string
	Props    scene.Props
	Children []*RecordedNode
	Disposed int
}

// Op is one recorded adapter call.
type Op struct {
	// Call is "create", "applyProps", "attachChild", "detachChild", or
	// "dispose".
	Call string
	// Node is the subject node's ID.
	Node string
	// Parent is set for attachChild/detachChild.
	Parent string
	// Before is the attach anchor's ID, or "" for append.
	Before string
	// Set and Unset are the sorted changed/removed keys of an
	// applyProps call.
	Set   []string
	Unset []string
}

func (o Op) String() string {
	var b strings.Builder
	b.WriteString(o.Call)
	switch o.Call {
	case "attachChild":
		fmt.Fprintf(&b, " %s < %s", o.Parent, o.Node)
		if o.Before != "" {
			fmt.Fprintf(&b, " before=%s", o.Before)
		}
	case "detachChild":
		fmt.Fprintf(&b, " %s < %s", o.Parent, o.Node)
	case "applyProps":
		fmt.Fprintf(&b, " %s", o.Node)
		if len(o.Set) > 0 {
			fmt.Fprintf(&b, " set=%s", strings.Join(o.Set, ","))
		}
		if len(o.Unset) > 0 {
			fmt.Fprintf(&b, " unset=%s", strings.Join(o.Unset, ","))
		}
	default:
		fmt.Fprintf(&b, " %s", o.Node)
	}
	return b.String()
}

// Recorder is a fake host engine whose adapters record every call. It
// backs reconciler tests that must assert on exact operation sequences,
// and the scenic CLI's dry-run mode.
type Recorder struct {
	mu       sync.Mutex
	seq      int
	ops      []Op
	table    *adapter.Table
	rejected map[string]map[string]bool
	failing  map[string]error
}

// NewRecorder returns a recorder with adapters registered for the given
// kinds plus "container".
func NewRecorder(kinds ...string) *Recorder {
	r := &Recorder{
		table:    adapter.NewTable(),
		rejected: make(map[string]map[string]bool),
		failing:  make(map[string]error),
	}
	r.table.MustRegister("container", &recAdapter{rec: r, kind: "container"})
	for _, k := range kinds {
		if k == "container" {
			continue
		}
		r.table.MustRegister(k, &recAdapter{rec: r, kind: k})
	}
	return r
}

// Table returns the adapter table to mount roots with.
func (r *Recorder) Table() *adapter.Table { return r.table }

// NewContainer returns a fresh native container to bind a root to.
func (r *Recorder) NewContainer() *RecordedNode {
	return &RecordedNode{Kind: "container", ID: "root"}
}

// RejectProps marks property names as unknown for a kind, so applying
// them yields *errors.UnknownPropertyError.
func (r *Recorder) RejectProps(kind string, props ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.rejected[kind]
	if set == nil {
		set = make(map[string]bool)
		r.rejected[kind] = set
	}
	for _, p := range props {
		set[p] = true
	}
}

// FailNextCreate makes the next Create of kind fail with err, once.
func (r *Recorder) FailNextCreate(kind string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing[kind] = err
}

// Ops returns a copy of the recorded operations.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// OpStrings returns the recorded operations rendered one per line.
func (r *Recorder) OpStrings() []string {
	ops := r.Ops()
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.String()
	}
	return out
}

// Reset clears the operation log. Nodes keep existing.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *Recorder) isRejected(kind, prop string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rejected[kind][prop]
}

func (r *Recorder) takeFailure(kind string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.failing[kind]
	delete(r.failing, kind)
	return err
}

func (r *Recorder) nextID(kind string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("%s#%d", kind, r.seq)
}

// recAdapter realizes one kind against the recorder.
type recAdapter struct {
	rec  *Recorder
	kind string
}

func (a *recAdapter) Create(initial scene.Props) (adapter.Handle, error) {
	if err := a.rec.takeFailure(a.kind); err != nil {
		return nil, err
	}
	n := &RecordedNode{Kind: a.kind, ID: a.rec.nextID(a.kind), Props: scene.Props{}}
	for k, v := range initial {
		if a.rec.isRejected(a.kind, k) {
			errors.Report(&errors.UnknownPropertyError{Kind: a.kind, Prop: k})
			continue
		}
		n.Props[k] = v
	}
	a.rec.record(Op{Call: "create", Node: n.ID})
	return n, nil
}

func (a *recAdapter) ApplyProps(h adapter.Handle, prev, next scene.Props) error {
	n := h.(*RecordedNode)
	changed, removed := adapter.DiffProps(prev, next)
	op := Op{Call: "applyProps", Node: n.ID}
	for k := range changed {
		op.Set = append(op.Set, k)
	}
	sort.Strings(op.Set)
	op.Unset = append(op.Unset, removed...)
	sort.Strings(op.Unset)
	a.rec.record(op)

	var unknown []error
	for k, v := range changed {
		if a.rec.isRejected(a.kind, k) {
			unknown = append(unknown, &errors.UnknownPropertyError{Kind: a.kind, Prop: k})
			continue
		}
		n.Props[k] = v
	}
	// A removed key resets to the kind default; the recorder's default
	// for every prop is absence.
	for _, k := range removed {
		delete(n.Props, k)
	}
	return stderrors.Join(unknown...)
}

func (a *recAdapter) AttachChild(parent, child, before adapter.Handle) error {
	p, c := parent.(*RecordedNode), child.(*RecordedNode)
	op := Op{Call: "attachChild", Parent: p.ID, Node: c.ID}
	if before == nil {
		p.Children = append(p.Children, c)
		a.rec.record(op)
		return nil
	}
	b := before.(*RecordedNode)
	for i, existing := range p.Children {
		if existing == b {
			p.Children = append(p.Children, nil)
			copy(p.Children[i+1:], p.Children[i:])
			p.Children[i] = c
			op.Before = b.ID
			a.rec.record(op)
			return nil
		}
	}
	return fmt.Errorf("scenetest: anchor %s is not a child of %s", b.ID, p.ID)
}

func (a *recAdapter) DetachChild(parent, child adapter.Handle) error {
	p, c := parent.(*RecordedNode), child.(*RecordedNode)
	for i, existing := range p.Children {
		if existing == c {
			copy(p.Children[i:], p.Children[i+1:])
			p.Children[len(p.Children)-1] = nil
			p.Children = p.Children[:len(p.Children)-1]
			a.rec.record(Op{Call: "detachChild", Parent: p.ID, Node: c.ID})
			return nil
		}
	}
	return fmt.Errorf("scenetest: %s is not a child of %s", c.ID, p.ID)
}

func (a *recAdapter) Dispose(h adapter.Handle) error {
	n := h.(*RecordedNode)
	if n.Disposed > 0 {
		return nil
	}
	n.Disposed++
	a.rec.record(Op{Call: "dispose", Node: n.ID})
	return nil
}
