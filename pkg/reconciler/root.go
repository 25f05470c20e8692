package reconciler

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/zwade/scenic/pkg/adapter"
	"github.com/zwade/scenic/pkg/errors"
	"github.com/zwade/scenic/pkg/scene"
)

type rootState int

const (
	stateMounted rootState = iota
	stateUnmounting
	stateUnmounted
)

// Root binds one native container to one instance registry and is the
// single entry point for reconciling against it. Roots are fully
// isolated from each other; independent roots may commit concurrently.
type Root struct {
	id        string
	table     *adapter.Table
	container *Instance
	scheduler Scheduler

	mu         sync.Mutex
	cond       *sync.Cond
	state      rootState
	committing bool
	scheduled  bool
	pending    *scene.Element

	redrawMu     sync.Mutex
	redrawNextID int
	redraw       map[int]func()
}

// Option configures a Root at mount time.
type Option func(*Root)

// WithScheduler selects the scheduler deferred updates run on. The
// default is Immediate.
func WithScheduler(s Scheduler) Option {
	return func(r *Root) {
		if s != nil {
			r.scheduler = s
		}
	}
}

// Mount binds container (whose attach/detach behavior is taken from the
// adapter registered for containerKind) to a new root and synchronously
// commits the initial tree. A nil tree mounts an empty scene.
//
// The returned error, if any, is the initial commit's aggregate; the
// root is mounted and usable even when parts of the tree failed.
func Mount(table *adapter.Table, containerKind string, container adapter.Handle, tree *scene.Element, opts ...Option) (*Root, error) {
	a, ok := table.Lookup(containerKind)
	if !ok {
		return nil, &errors.UnknownKindError{Kind: containerKind}
	}
	r := &Root{
		id:        uuid.NewString(),
		table:     table,
		container: &Instance{kind: containerKind, adapter: a, handle: container},
		scheduler: Immediate,
		state:     stateMounted,
		redraw:    make(map[int]func()),
	}
	r.cond = sync.NewCond(&r.mu)
	for _, opt := range opts {
		opt(r)
	}
	r.mu.Lock()
	r.committing = true
	r.mu.Unlock()
	return r, r.commitLoop(tree)
}

// ID returns the root's unique identifier, for diagnostics.
func (r *Root) ID() string { return r.id }

// Container returns the registry mirror of the native container. Its
// children are the committed top-level instances.
func (r *Root) Container() *Instance { return r.container }

// Update supersedes any queued tree with tree and schedules a commit on
// the root's scheduler. Commit errors from deferred work are surfaced
// through the diagnostic handler; use UpdateSync to receive them.
func (r *Root) Update(tree *scene.Element) error {
	if tree == nil {
		return fmt.Errorf("update: nil descriptor tree")
	}
	r.mu.Lock()
	if err := r.checkMountedLocked("update"); err != nil {
		r.mu.Unlock()
		return err
	}
	r.pending = tree
	if r.committing || r.scheduled {
		// The in-flight commit or the already-scheduled flush picks the
		// new tree up; intermediate trees are superseded, not replayed.
		r.mu.Unlock()
		return nil
	}
	r.scheduled = true
	r.mu.Unlock()
	r.scheduler.Schedule(r.flush)
	return nil
}

// UpdateSync commits tree before returning and returns the aggregated
// commit error, if any. If a commit is already in flight on another
// goroutine, the tree is handed to it and UpdateSync returns nil.
func (r *Root) UpdateSync(tree *scene.Element) error {
	if tree == nil {
		return fmt.Errorf("update: nil descriptor tree")
	}
	r.mu.Lock()
	if err := r.checkMountedLocked("update"); err != nil {
		r.mu.Unlock()
		return err
	}
	if r.committing {
		r.pending = tree
		r.mu.Unlock()
		return nil
	}
	r.pending = nil
	r.committing = true
	r.mu.Unlock()
	return r.commitLoop(tree)
}

// Unmount synchronously tears down every host instance, children before
// parents, then retires the root. Disposal runs best-effort; collected
// errors are returned. The root cannot be reused afterwards.
func (r *Root) Unmount() error {
	r.mu.Lock()
	if err := r.checkMountedLocked("unmount"); err != nil {
		r.mu.Unlock()
		return err
	}
	for r.committing {
		r.cond.Wait()
	}
	if err := r.checkMountedLocked("unmount"); err != nil {
		r.mu.Unlock()
		return err
	}
	r.state = stateUnmounting
	r.pending = nil
	r.committing = true
	r.mu.Unlock()

	err := r.commitOnce(nil)

	r.mu.Lock()
	r.committing = false
	r.state = stateUnmounted
	r.cond.Broadcast()
	r.mu.Unlock()
	return err
}

// OnRedrawRequested registers fn to run after every completed commit
// pass, exactly once per pass. The returned cancel func unregisters it.
func (r *Root) OnRedrawRequested(fn func()) (cancel func()) {
	r.redrawMu.Lock()
	id := r.redrawNextID
	r.redrawNextID++
	r.redraw[id] = fn
	r.redrawMu.Unlock()
	return func() {
		r.redrawMu.Lock()
		delete(r.redraw, id)
		r.redrawMu.Unlock()
	}
}

func (r *Root) checkMountedLocked(op string) error {
	switch r.state {
	case stateMounted:
		return nil
	case stateUnmounting:
		return &errors.NotMountedError{Op: op}
	default:
		return &errors.AlreadyUnmountedError{Op: op}
	}
}

// flush runs on the scheduler. It claims the commit slot and drains the
// pending tree, if still relevant.
func (r *Root) flush() {
	r.mu.Lock()
	r.scheduled = false
	if r.state != stateMounted || r.committing || r.pending == nil {
		r.mu.Unlock()
		return
	}
	tree := r.pending
	r.pending = nil
	r.committing = true
	r.mu.Unlock()
	if err := r.commitLoop(tree); err != nil {
		errors.Report(err)
	}
}

// commitLoop commits tree, then any tree that arrived while committing,
// and finally releases the commit slot. The caller must have set
// r.committing.
func (r *Root) commitLoop(tree *scene.Element) error {
	var first error
	for {
		err := r.commitOnce(tree)
		if first == nil {
			first = err
		}
		r.mu.Lock()
		if r.pending != nil && r.state == stateMounted {
			tree = r.pending
			r.pending = nil
			r.mu.Unlock()
			continue
		}
		r.committing = false
		r.cond.Broadcast()
		r.mu.Unlock()
		return first
	}
}

// commitOnce applies one full diff pass and fires the redraw signal.
func (r *Root) commitOnce(tree *scene.Element) error {
	c := &commit{table: r.table}
	var els []*scene.Element
	if tree != nil {
		els = []*scene.Element{tree}
	}
	c.reconcileChildren(r.container, els, "")
	r.notifyRedraw()
	return c.result()
}

func (r *Root) notifyRedraw() {
	r.redrawMu.Lock()
	fns := make([]func(), 0, len(r.redraw))
	for _, fn := range r.redraw {
		fns = append(fns, fn)
	}
	r.redrawMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
