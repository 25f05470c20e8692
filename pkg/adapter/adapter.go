// Package adapter defines the capability contract a host engine exposes
// per node kind, and the table the reconciler resolves kinds through.
//
// Adapters are the reconciler's only point of contact with the host engine:
// the core never reads engine state outside these five calls.
package adapter

import (
	"github.com/zwade/scenic/pkg/scene"
)

// Handle is an opaque reference to a node owned by the host engine. The
// reconciler stores and passes handles but never inspects them.
type Handle any

// Adapter realizes one descriptor kind against the host engine.
//
// Implementations are registered once in a Table and shared read-only by
// every root, so they must be safe for concurrent use by independent
// roots (which each serialize their own commits).
type Adapter interface {
	// Create allocates a new detached node carrying the initial props.
	// It must not attach the node to any parent. Unknown initial
	// properties follow the ApplyProps policy: ignored and reported,
	// not fatal.
	Create(initial scene.Props) (Handle, error)

	// ApplyProps transitions a node from prev to next. Only differing
	// keys may be touched; keys present in prev but absent from next
	// are reset to the kind's default. An unrecognized key yields an
	// *errors.UnknownPropertyError (joined with any others); the
	// reconciler treats a result made only of those as non-fatal.
	ApplyProps(h Handle, prev, next scene.Props) error

	// AttachChild inserts child under parent immediately before the
	// sibling handle, or appends when before is nil.
	AttachChild(parent, child, before Handle) error

	// DetachChild removes child from parent without disposing it.
	DetachChild(parent, child Handle) error

	// Dispose releases the node's engine resources. Must be idempotent;
	// the node is already detached when Dispose is called.
	Dispose(h Handle) error
}

// DiffProps computes the key-level difference between two prop maps:
// changed holds keys of next whose values differ from prev under
// scene.ValueEqual (including new keys), removed lists keys of prev that
// next no longer carries. Adapters use it inside ApplyProps to touch only
// what moved.
func DiffProps(prev, next scene.Props) (changed scene.Props, removed []string) {
	for k, nv := range next {
		pv, ok := prev[k]
		if !ok || !scene.ValueEqual(pv, nv) {
			if changed == nil {
				changed = make(scene.Props)
			}
			changed[k] = nv
		}
	}
	for k := range prev {
		if _, ok := next[k]; !ok {
			removed = append(removed, k)
		}
	}
	return changed, removed
}
