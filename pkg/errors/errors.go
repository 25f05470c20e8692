// Package errors defines the structured error taxonomy of the scenic
// reconciler and the diagnostic handler non-fatal failures are reported
// through.
package errors

import (
	"fmt"
	"strings"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindNodeKind indicates a descriptor kind with no registered adapter.
	KindNodeKind
	// KindProperty indicates a property the adapter does not recognize.
	KindProperty
	// KindLifecycle indicates caller misuse of the root lifecycle.
	KindLifecycle
	// KindAdapter indicates an adapter call that failed.
	KindAdapter
	// KindDisposal indicates a failure while releasing native resources.
	KindDisposal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNodeKind:
		return "node-kind"
	case KindProperty:
		return "property"
	case KindLifecycle:
		return "lifecycle"
	case KindAdapter:
		return "adapter"
	case KindDisposal:
		return "disposal"
	default:
		return "unknown"
	}
}

// UnknownKindError reports a descriptor kind with no registered adapter.
// Fatal for the affected subtree; siblings still commit.
type UnknownKindError struct {
	// Kind is the unregistered descriptor kind.
	Kind string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown node kind %q", e.Kind)
}

// UnknownPropertyError reports a property name the adapter does not
// recognize for its kind. Non-fatal: the property is ignored and the
// commit proceeds.
type UnknownPropertyError struct {
	// Kind is the node kind the property was applied to.
	Kind string
	// Prop is the unrecognized property name.
	Prop string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("unknown property %q for kind %q", e.Prop, e.Kind)
}

// NotMountedError reports an operation on a root that is not in the
// Mounted state.
type NotMountedError struct {
	// Op is the operation that was attempted, e.g. "update".
	Op string
}

func (e *NotMountedError) Error() string {
	return fmt.Sprintf("%s: root is not mounted", e.Op)
}

// AlreadyUnmountedError reports an operation on a root after unmount
// completed. A torn-down root cannot be revived; mount a fresh one.
type AlreadyUnmountedError struct {
	// Op is the operation that was attempted.
	Op string
}

func (e *AlreadyUnmountedError) Error() string {
	return fmt.Sprintf("%s: root was already unmounted", e.Op)
}

// DisposalError reports a failed native-resource release. Teardown
// continues best-effort past it: leaking one reachable handle is worse
// than halting on an unreachable one.
type DisposalError struct {
	// Kind is the node kind being disposed.
	Kind string
	// Err is the underlying adapter error.
	Err error
}

func (e *DisposalError) Error() string {
	return fmt.Sprintf("disposing %q: %v", e.Kind, e.Err)
}

func (e *DisposalError) Unwrap() error {
	return e.Err
}

// NodeError wraps an adapter failure with the operation and the tree path
// of the node it occurred at.
type NodeError struct {
	// Op is the commit operation: "create", "update", "attach",
	// "detach", "move", or "dispose".
	Op string
	// Kind is the node kind.
	Kind string
	// Path locates the node in the descriptor tree, e.g.
	// "/container[0]/sprite[2]".
	Path string
	// Err is the underlying error.
	Err error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("%s %s at %s: %v", e.Op, e.Kind, e.Path, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// CommitError aggregates every error collected during one commit pass.
// A commit never stops at the first failure; one broken subtree must not
// block the rest of the tree.
type CommitError struct {
	// Errors holds the collected per-node errors in commit order.
	Errors []error
}

func (e *CommitError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "commit failed"
	case 1:
		return fmt.Sprintf("commit: %v", e.Errors[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "commit: %d errors:", len(e.Errors))
	for _, err := range e.Errors {
		b.WriteString("\n\t")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *CommitError) Unwrap() []error {
	return e.Errors
}

// NonFatal reports whether err only carries failures a commit survives
// without aborting the affected subtree: unknown properties and disposal
// failures. Aggregates are non-fatal when every leaf is.
func NonFatal(err error) bool {
	if err == nil {
		return true
	}
	switch e := err.(type) {
	case *UnknownPropertyError, *DisposalError:
		return true
	case *NodeError:
		return NonFatal(e.Err)
	case *CommitError:
		for _, sub := range e.Errors {
			if !NonFatal(sub) {
				return false
			}
		}
		return true
	}
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, sub := range multi.Unwrap() {
			if !NonFatal(sub) {
				return false
			}
		}
		return true
	}
	if single, ok := err.(interface{ Unwrap() error }); ok {
		return NonFatal(single.Unwrap())
	}
	return false
}

// KindOf classifies err for diagnostics.
func KindOf(err error) ErrorKind {
	switch e := err.(type) {
	case nil:
		return KindUnknown
	case *UnknownKindError:
		return KindNodeKind
	case *UnknownPropertyError:
		return KindProperty
	case *NotMountedError, *AlreadyUnmountedError:
		return KindLifecycle
	case *DisposalError:
		return KindDisposal
	case *NodeError:
		if k := KindOf(e.Err); k != KindUnknown {
			return k
		}
		return KindAdapter
	}
	// Aggregates classify as the first classifiable leaf.
	if multi, ok := err.(interface{ Unwrap() []error }); ok {
		for _, sub := range multi.Unwrap() {
			if k := KindOf(sub); k != KindUnknown {
				return k
			}
		}
		return KindUnknown
	}
	if single, ok := err.(interface{ Unwrap() error }); ok {
		return KindOf(single.Unwrap())
	}
	return KindUnknown
}
