package reconciler

import (
	"github.com/zwade/scenic/pkg/adapter"
	"github.com/zwade/scenic/pkg/scene"
)

// Instance mirrors one live node of the host scene graph: its kind, the
// opaque native handle, the last committed props, and its position in the
// tree. The child list order always matches the order the underlying
// native children were attached.
type Instance struct {
	kind     string
	key      any
	adapter  adapter.Adapter
	handle   adapter.Handle
	props    scene.Props
	parent   *Instance // non-owning back-reference
	children []*Instance
	disposed bool
}

// Kind returns the descriptor kind this instance was created for.
func (in *Instance) Kind() string { return in.kind }

// Key returns the instance's current key, or nil.
func (in *Instance) Key() any { return in.key }

// Handle returns the native handle.
func (in *Instance) Handle() adapter.Handle { return in.handle }

// Props returns the last committed props. The returned map MUST NOT be
// mutated by the caller.
func (in *Instance) Props() scene.Props { return in.props }

// Parent returns the parent instance, or nil at the container.
func (in *Instance) Parent() *Instance { return in.parent }

// Children returns the ordered child list. The returned slice MUST NOT
// be mutated by the caller.
func (in *Instance) Children() []*Instance { return in.children }

// NumChildren returns the number of children.
func (in *Instance) NumChildren() int { return len(in.children) }

// Disposed reports whether the instance's native resources have been
// released.
func (in *Instance) Disposed() bool { return in.disposed }

// Find descends from in by the given steps: an int step selects a child
// by position, any other value selects the first child carrying that
// key. Returns nil when a step does not resolve.
func (in *Instance) Find(steps ...any) *Instance {
	cur := in
	for _, s := range steps {
		if cur == nil {
			return nil
		}
		if idx, ok := s.(int); ok {
			if idx < 0 || idx >= len(cur.children) {
				return nil
			}
			cur = cur.children[idx]
			continue
		}
		var next *Instance
		for _, ch := range cur.children {
			if ch.key == s {
				next = ch
				break
			}
		}
		cur = next
	}
	return cur
}

// insertChildAt inserts child at index. The caller maintains the parent
// back-reference and has already attached the native child.
func (in *Instance) insertChildAt(child *Instance, index int) {
	in.children = append(in.children, nil)
	copy(in.children[index+1:], in.children[index:])
	in.children[index] = child
}

// removeChild removes child from the list without clearing child.parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing
// array.
func (in *Instance) removeChild(child *Instance) {
	for i, c := range in.children {
		if c == child {
			copy(in.children[i:], in.children[i+1:])
			in.children[len(in.children)-1] = nil
			in.children = in.children[:len(in.children)-1]
			return
		}
	}
}

// indexOfChild returns child's position, or -1.
func (in *Instance) indexOfChild(child *Instance) int {
	for i, c := range in.children {
		if c == child {
			return i
		}
	}
	return -1
}
