package reconciler

import (
	"fmt"

	"github.com/zwade/scenic/pkg/adapter"
	"github.com/zwade/scenic/pkg/errors"
	"github.com/zwade/scenic/pkg/scene"
)

// commit carries the state of one commit pass: the adapter table and the
// errors collected so far. Errors never abort the pass; they abort at
// most the subtree they occurred in.
type commit struct {
	table *adapter.Table
	errs  []error
}

func (c *commit) record(op, kind, path string, err error) {
	c.errs = append(c.errs, &errors.NodeError{Op: op, Kind: kind, Path: path, Err: err})
}

// result returns the aggregated commit error, or nil.
func (c *commit) result() error {
	if len(c.errs) == 0 {
		return nil
	}
	return &errors.CommitError{Errors: c.errs}
}

func childPath(parentPath, kind string, index int) string {
	return fmt.Sprintf("%s/%s[%d]", parentPath, kind, index)
}

// createInstance builds the instance subtree for el, detached from any
// parent. A failed child leaves a hole; a failure at el itself disposes
// whatever was built and returns nil.
func (c *commit) createInstance(el *scene.Element, path string) *Instance {
	a, ok := c.table.Lookup(el.Kind)
	if !ok {
		c.record("create", el.Kind, path, &errors.UnknownKindError{Kind: el.Kind})
		return nil
	}
	h, err := a.Create(el.Props)
	if err != nil {
		c.record("create", el.Kind, path, err)
		return nil
	}
	inst := &Instance{kind: el.Kind, key: el.Key, adapter: a, handle: h, props: el.Props}
	for i, childEl := range el.Children {
		child := c.createInstance(childEl, childPath(path, childEl.Kind, i))
		if child == nil {
			continue
		}
		if err := a.AttachChild(h, child.handle, nil); err != nil {
			c.record("attach", childEl.Kind, childPath(path, childEl.Kind, i), err)
			c.disposeInstance(child)
			continue
		}
		child.parent = inst
		inst.children = append(inst.children, child)
	}
	return inst
}

// disposeInstance releases the subtree depth-first, children before the
// node itself: a child handle may become invalid once its parent's
// engine-level teardown begins. Disposal failures are collected and
// reported; teardown continues best-effort.
func (c *commit) disposeInstance(in *Instance) {
	if in.disposed {
		return
	}
	for _, child := range in.children {
		child.parent = nil
		c.disposeInstance(child)
	}
	if err := in.adapter.Dispose(in.handle); err != nil {
		derr := &errors.DisposalError{Kind: in.kind, Err: err}
		errors.Report(derr)
		c.errs = append(c.errs, derr)
	}
	in.disposed = true
	in.children = nil
	in.parent = nil
	in.props = nil
}

// deleteChild detaches child from parent and disposes its subtree.
func (c *commit) deleteChild(parent, child *Instance, path string) {
	if err := parent.adapter.DetachChild(parent.handle, child.handle); err != nil {
		derr := &errors.DisposalError{Kind: child.kind, Err: err}
		errors.Report(derr)
		c.record("detach", child.kind, path, derr)
	}
	parent.removeChild(child)
	c.disposeInstance(child)
}

// updateInstance converges in onto el. The caller guarantees matching
// kinds. A fatal ApplyProps failure aborts this subtree: committed props
// keep their previous value and children are not descended into.
func (c *commit) updateInstance(in *Instance, el *scene.Element, path string) {
	in.key = el.Key
	if !scene.PropsEqual(in.props, el.Props) {
		err := in.adapter.ApplyProps(in.handle, in.props, el.Props)
		if err != nil && !errors.NonFatal(err) {
			c.record("update", in.kind, path, err)
			return
		}
		if err != nil {
			// Unknown properties: ignored, collected, and surfaced
			// through the diagnostic channel.
			errors.Report(err)
			c.record("update", in.kind, path, err)
		}
		in.props = el.Props
	}
	c.reconcileChildren(in, el.Children, path)
}

// reconcileChildren converges parent's child list onto els.
//
// Matching: children sharing a key across the old and new lists are
// paired greedily in new-list order; unkeyed children are matched
// strictly by index, so inserting or removing an unkeyed child shifts
// the identity of every later sibling. A kind change is never migrated
// in place: the old instance is deleted and a new one created.
func (c *commit) reconcileChildren(parent *Instance, els []*scene.Element, parentPath string) {
	old := append([]*Instance(nil), parent.children...)

	matches := make([]*Instance, len(els))
	used := make([]bool, len(old))
	var keyed map[any]int
	for j, oc := range old {
		if oc.key == nil {
			continue
		}
		if keyed == nil {
			keyed = make(map[any]int, len(old))
		}
		if _, dup := keyed[oc.key]; !dup {
			keyed[oc.key] = j
		}
	}
	for i, el := range els {
		if el.Key != nil {
			if j, ok := keyed[el.Key]; ok && !used[j] && old[j].kind == el.Kind {
				matches[i] = old[j]
				used[j] = true
			}
			continue
		}
		if i < len(old) && !used[i] && old[i].key == nil && old[i].kind == el.Kind {
			matches[i] = old[i]
			used[i] = true
		}
	}

	// Deletions first: a reused position must never hold two handles at
	// once in adapters that key native attachment by slot.
	for j, oc := range old {
		if !used[j] {
			c.deleteChild(parent, oc, childPath(parentPath, oc.kind, j))
		}
	}

	// placed counts finalized slots: parent.children[:placed] mirrors
	// els[:i] minus any holes left by failed creates.
	placed := 0
	for i, el := range els {
		path := childPath(parentPath, el.Kind, i)
		inst := matches[i]
		if inst == nil {
			inst = c.createInstance(el, path)
			if inst == nil {
				continue
			}
			if err := parent.adapter.AttachChild(parent.handle, inst.handle, beforeHandle(parent, placed)); err != nil {
				c.record("attach", inst.kind, path, err)
				c.disposeInstance(inst)
				continue
			}
			inst.parent = parent
			parent.insertChildAt(inst, placed)
			placed++
			continue
		}
		c.updateInstance(inst, el, path)
		if cur := parent.indexOfChild(inst); cur != placed {
			c.moveChild(parent, inst, placed, path)
		}
		placed++
	}
}

// moveChild re-attaches inst at index to without destroying it.
func (c *commit) moveChild(parent, inst *Instance, to int, path string) {
	if err := parent.adapter.DetachChild(parent.handle, inst.handle); err != nil {
		c.record("move", inst.kind, path, err)
		return
	}
	parent.removeChild(inst)
	if err := parent.adapter.AttachChild(parent.handle, inst.handle, beforeHandle(parent, to)); err != nil {
		// The instance is detached and cannot be restored reliably.
		c.record("move", inst.kind, path, err)
		c.disposeInstance(inst)
		return
	}
	parent.insertChildAt(inst, to)
}

// beforeHandle returns the handle currently occupying index, the
// attach-before anchor, or nil to append.
func beforeHandle(parent *Instance, index int) adapter.Handle {
	if index < len(parent.children) {
		return parent.children[index].handle
	}
	return nil
}
