package reconciler

import (
	"errors"
	"strings"
	"testing"

	"github.com/zwade/scenic/pkg/scene"
	scerr "github.com/zwade/scenic/pkg/errors"
)

// assertMirrors checks that the instance subtree, the native subtree, and
// the descriptor subtree are structurally isomorphic, with committed
// props matching the descriptor's.
func assertMirrors(t *testing.T, in *Instance, el *scene.Element) {
	t.Helper()
	if in.Kind() != el.Kind {
		t.Fatalf("kind = %q, want %q", in.Kind(), el.Kind)
	}
	if !scene.PropsEqual(in.Props(), el.Props) {
		t.Fatalf("committed props = %v, want %v", in.Props(), el.Props)
	}
	native := in.Handle().(*fakeNode)
	if in.NumChildren() != len(el.Children) || len(native.children) != len(el.Children) {
		t.Fatalf("children: registry=%d native=%d, want %d",
			in.NumChildren(), len(native.children), len(el.Children))
	}
	for i, childEl := range el.Children {
		child := in.Children()[i]
		if native.children[i] != child.Handle().(*fakeNode) {
			t.Fatalf("native child %d does not match registry order", i)
		}
		assertMirrors(t, child, childEl)
	}
}

// assertRootMirrors checks the whole root against a descriptor tree.
func assertRootMirrors(t *testing.T, r *Root, tree *scene.Element) {
	t.Helper()
	c := r.Container()
	if c.NumChildren() != 1 {
		t.Fatalf("container has %d children, want 1", c.NumChildren())
	}
	assertMirrors(t, c.Children()[0], tree)
}

func TestMountCreatesTree(t *testing.T) {
	env, table, container := newFakeEnv("sprite", "text")
	tree := scene.New("container", scene.Props{"x": 1.0},
		scene.New("sprite", scene.Props{"y": 2.0}),
		scene.New("text", scene.Props{"text": "hi"}),
	)
	r, err := Mount(table, "container", container, tree)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	assertRootMirrors(t, r, tree)
	if got := len(env.callsNamed("create")); got != 3 {
		t.Errorf("create calls = %d, want 3", got)
	}
	if got := container.dump(); got != "root(container#1(sprite#2 text#3))" {
		t.Errorf("native tree = %s", got)
	}
}

func TestMountUnknownContainerKind(t *testing.T) {
	_, table, container := newFakeEnv()
	_, err := Mount(table, "stage", container, nil)
	var uk *scerr.UnknownKindError
	if !errors.As(err, &uk) || uk.Kind != "stage" {
		t.Fatalf("err = %v, want UnknownKindError for stage", err)
	}
}

func TestNoOpStability(t *testing.T) {
	env, table, container := newFakeEnv("sprite")
	tree := scene.New("container", scene.Props{"x": 1.0},
		scene.New("sprite", scene.Props{"y": 2.0}),
	)
	r, err := Mount(table, "container", container, tree)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	env.reset()
	if err := r.UpdateSync(tree.Clone()); err != nil {
		t.Fatalf("UpdateSync: %v", err)
	}
	if len(env.calls) != 0 {
		t.Errorf("second identical render made %d adapter calls: %v", len(env.calls), env.calls)
	}
}

func TestPropUpdateTouchesOnlyChangedNode(t *testing.T) {
	env, table, container := newFakeEnv("sprite")
	r, err := Mount(table, "container", container,
		scene.New("container", nil,
			scene.New("sprite", scene.Props{"x": 1.0}),
			scene.New("sprite", scene.Props{"x": 2.0}),
		))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	env.reset()
	next := scene.New("container", nil,
		scene.New("sprite", scene.Props{"x": 1.0}),
		scene.New("sprite", scene.Props{"x": 9.0}),
	)
	if err := r.UpdateSync(next); err != nil {
		t.Fatalf("UpdateSync: %v", err)
	}
	applies := env.callsNamed("apply")
	if len(applies) != 1 || !strings.Contains(applies[0], "sprite#3") {
		t.Errorf("applies = %v, want exactly one touching sprite#3", applies)
	}
	assertRootMirrors(t, r, next)
}

func TestKeyedReorderPreservesIdentity(t *testing.T) {
	env, table, container := newFakeEnv("sprite")
	r, err := Mount(table, "container", container,
		scene.New("container", nil,
			scene.NewKeyed("sprite", "a", scene.Props{"x": 1.0}),
			scene.NewKeyed("sprite", "b", scene.Props{"x": 2.0}),
		))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	inner := r.Container().Children()[0]
	first, second := inner.Children()[0], inner.Children()[1]

	env.reset()
	next := scene.New("container", nil,
		scene.NewKeyed("sprite", "b", scene.Props{"x": 2.0}),
		scene.NewKeyed("sprite", "a", scene.Props{"x": 1.0}),
	)
	if err := r.UpdateSync(next); err != nil {
		t.Fatalf("UpdateSync: %v", err)
	}

	if got := inner.Children()[0]; got != second {
		t.Error("keyed child b should be the same instance, moved")
	}
	if got := inner.Children()[1]; got != first {
		t.Error("keyed child a should be the same instance")
	}
	if calls := env.callsNamed("create"); len(calls) != 0 {
		t.Errorf("reorder created nodes: %v", calls)
	}
	if calls := env.callsNamed("dispose"); len(calls) != 0 {
		t.Errorf("reorder disposed nodes: %v", calls)
	}
	// The move is a detach plus an anchored re-attach.
	if calls := env.callsNamed("detach"); len(calls) != 1 {
		t.Errorf("detaches = %v, want 1", calls)
	}
	attaches := env.callsNamed("attach")
	if len(attaches) != 1 || !strings.Contains(attaches[0], "before") {
		t.Errorf("attaches = %v, want one anchored attach", attaches)
	}
	assertRootMirrors(t, r, next)
}

func TestUnkeyedInsertShiftsIdentity(t *testing.T) {
	env, table, container := newFakeEnv("sprite")
	r, err := Mount(table, "container", container,
		scene.New("container", nil,
			scene.New("sprite", scene.Props{"name": "x"}),
			scene.New("sprite", scene.Props{"name": "y"}),
		))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	inner := r.Container().Children()[0]
	oldFirst := inner.Children()[0]

	env.reset()
	next := scene.New("container", nil,
		scene.New("sprite", scene.Props{"name": "z"}),
		scene.New("sprite", scene.Props{"name": "x"}),
		scene.New("sprite", scene.Props{"name": "y"}),
	)
	if err := r.UpdateSync(next); err != nil {
		t.Fatalf("UpdateSync: %v", err)
	}

	// Position 0 keeps its instance but takes z's props; the trailing
	// position is a fresh create. This is the documented unkeyed
	// index-shift behavior, not a bug.
	if inner.Children()[0] != oldFirst {
		t.Error("position 0 should reuse the old instance")
	}
	if got := len(env.callsNamed("create")); got != 1 {
		t.Errorf("creates = %d, want 1", got)
	}
	if got := len(env.callsNamed("apply")); got != 2 {
		t.Errorf("applies = %d, want 2 (positions 0 and 1 re-propped)", got)
	}
	assertRootMirrors(t, r, next)
}

func TestKindChangeDeletesThenCreates(t *testing.T) {
	env, table, container := newFakeEnv("sprite", "text")
	r, err := Mount(table, "container", container,
		scene.New("container", nil, scene.New("sprite", nil)))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	env.reset()
	next := scene.New("container", nil, scene.New("text", nil))
	if err := r.UpdateSync(next); err != nil {
		t.Fatalf("UpdateSync: %v", err)
	}
	var order []string
	for _, c := range env.calls {
		op := strings.Fields(c)[0]
		if op == "dispose" || op == "create" {
			order = append(order, op)
		}
	}
	if len(order) != 2 || order[0] != "dispose" || order[1] != "create" {
		t.Errorf("ops = %v, want the deletion before the creation", env.calls)
	}
	assertRootMirrors(t, r, next)
}

func TestPartialFailureIsolation(t *testing.T) {
	env, table, container := newFakeEnv("sprite")
	tree := scene.New("container", nil,
		scene.New("sprite", scene.Props{"name": "one"}),
		scene.New("sprite", scene.Props{"failCreate": true}),
		scene.New("sprite", scene.Props{"name": "three"}),
	)
	r, err := Mount(table, "container", container, tree)
	if err == nil {
		t.Fatal("Mount should surface the aggregated error")
	}
	var agg *scerr.CommitError
	if !errors.As(err, &agg) || len(agg.Errors) != 1 {
		t.Fatalf("err = %v, want CommitError with one entry", err)
	}
	var nodeErr *scerr.NodeError
	if !errors.As(err, &nodeErr) || nodeErr.Op != "create" {
		t.Fatalf("err = %v, want a create NodeError", err)
	}

	inner := r.Container().Children()[0]
	if inner.NumChildren() != 2 {
		t.Fatalf("children = %d, want the two healthy siblings", inner.NumChildren())
	}
	if inner.Children()[0].Props()["name"] != "one" || inner.Children()[1].Props()["name"] != "three" {
		t.Error("surviving siblings are not the expected ones")
	}
	native := inner.Handle().(*fakeNode)
	if len(native.children) != 2 {
		t.Errorf("native children = %d, want 2", len(native.children))
	}
	_ = env
}

func TestUnknownChildKindLeavesSiblings(t *testing.T) {
	_, table, container := newFakeEnv("sprite")
	tree := scene.New("container", nil,
		scene.New("sprite", nil),
		scene.New("hologram", nil),
	)
	r, err := Mount(table, "container", container, tree)
	var uk *scerr.UnknownKindError
	if !errors.As(err, &uk) || uk.Kind != "hologram" {
		t.Fatalf("err = %v, want UnknownKindError for hologram", err)
	}
	if got := r.Container().Children()[0].NumChildren(); got != 1 {
		t.Errorf("children = %d, want the healthy sibling only", got)
	}
}

func TestUnknownPropertyIsNonFatal(t *testing.T) {
	handler := &captureHandler{}
	prev := scerr.SetHandler(handler)
	defer scerr.SetHandler(prev)

	_, table, container := newFakeEnv("sprite")
	r, err := Mount(table, "container", container,
		scene.New("container", nil,
			scene.New("sprite", scene.Props{"x": 1.0}, scene.New("sprite", nil))))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	next := scene.New("container", nil,
		scene.New("sprite", scene.Props{"x": 2.0, "!wobble": true},
			scene.New("sprite", scene.Props{"x": 5.0})))
	err = r.UpdateSync(next)
	if err == nil {
		t.Fatal("the unknown property should be collected")
	}
	if !scerr.NonFatal(err) {
		t.Errorf("err = %v, want non-fatal aggregate", err)
	}
	// The subtree still converged: the child under the warned node got
	// its new props.
	child := r.Container().Find(0, 0, 0)
	if child == nil || child.Props()["x"] != 5.0 {
		t.Error("children below a non-fatal property warning should still commit")
	}
	if len(handler.seen) == 0 {
		t.Error("unknown property should reach the diagnostic handler")
	}
}

func TestFatalApplyAbortsSubtree(t *testing.T) {
	env, table, container := newFakeEnv("sprite")
	r, err := Mount(table, "container", container,
		scene.New("container", nil,
			scene.New("sprite", scene.Props{"x": 1.0},
				scene.New("sprite", scene.Props{"x": 2.0})),
			scene.New("sprite", scene.Props{"x": 3.0}),
		))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	env.reset()
	next := scene.New("container", nil,
		scene.New("sprite", scene.Props{"failApply": true},
			scene.New("sprite", scene.Props{"x": 99.0})),
		scene.New("sprite", scene.Props{"x": 30.0}),
	)
	err = r.UpdateSync(next)
	if err == nil || scerr.NonFatal(err) {
		t.Fatalf("err = %v, want a fatal aggregate", err)
	}

	inner := r.Container().Children()[0]
	// The failed node keeps its previous committed props and its child
	// was not descended into.
	if inner.Children()[0].Props()["x"] != 1.0 {
		t.Error("failed node should keep its previous committed props")
	}
	if inner.Children()[0].Children()[0].Props()["x"] != 2.0 {
		t.Error("subtree below the failure should be untouched")
	}
	// The healthy sibling still committed.
	if inner.Children()[1].Props()["x"] != 30.0 {
		t.Error("sibling of the failed subtree should still commit")
	}
}

func TestTeardownCompleteness(t *testing.T) {
	env, table, container := newFakeEnv("sprite", "text")
	r, err := Mount(table, "container", container,
		scene.New("container", nil,
			scene.New("sprite", nil, scene.New("text", nil)),
			scene.New("sprite", nil),
		))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	var created []*fakeNode
	collect := func(in *Instance) {
		var walk func(*Instance)
		walk = func(n *Instance) {
			created = append(created, n.Handle().(*fakeNode))
			for _, c := range n.Children() {
				walk(c)
			}
		}
		walk(in)
	}
	collect(r.Container().Children()[0])

	env.reset()
	if err := r.Unmount(); err != nil {
		t.Fatalf("Unmount: %v", err)
	}
	for _, n := range created {
		if n.disposed != 1 {
			t.Errorf("%s disposed %d times, want exactly once", n.id, n.disposed)
		}
	}
	// Children dispose before their parents.
	calls := env.callsNamed("dispose")
	pos := make(map[string]int, len(calls))
	for i, c := range calls {
		pos[strings.Fields(c)[1]] = i
	}
	if pos["text#3"] > pos["sprite#2"] {
		t.Errorf("dispose order %v, want children before parents", calls)
	}
	if len(container.children) != 0 {
		t.Error("native container should be empty after unmount")
	}

	if err := r.Unmount(); err == nil {
		t.Error("second unmount should fail")
	} else {
		var already *scerr.AlreadyUnmountedError
		if !errors.As(err, &already) {
			t.Errorf("err = %v, want AlreadyUnmountedError", err)
		}
	}
	var already *scerr.AlreadyUnmountedError
	if err := r.Update(scene.New("container", nil)); !errors.As(err, &already) {
		t.Errorf("update after unmount = %v, want AlreadyUnmountedError", err)
	}
}

func TestDeferredUpdatesCoalesce(t *testing.T) {
	env, table, container := newFakeEnv("sprite")
	sched := NewManual()
	r, err := Mount(table, "container", container,
		scene.New("container", nil), WithScheduler(sched))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}

	env.reset()
	intermediate := scene.New("container", nil, scene.New("sprite", scene.Props{"name": "mid"}))
	final := scene.New("container", nil, scene.New("sprite", scene.Props{"name": "final"}))
	if err := r.Update(intermediate); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := r.Update(final); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(env.calls) != 0 {
		t.Fatalf("no adapter calls expected before the pump, got %v", env.calls)
	}

	sched.Pump()

	// Exactly the latest tree was committed; the intermediate one was
	// superseded, not replayed.
	if got := len(env.callsNamed("create")); got != 1 {
		t.Errorf("creates = %d, want 1", got)
	}
	assertRootMirrors(t, r, final)
	if r.Container().Find(0, 0).Props()["name"] != "final" {
		t.Error("committed tree should be the latest one")
	}
}

func TestDeferredCommitErrorsGoToHandler(t *testing.T) {
	handler := &captureHandler{}
	prev := scerr.SetHandler(handler)
	defer scerr.SetHandler(prev)

	_, table, container := newFakeEnv("sprite")
	sched := NewManual()
	r, err := Mount(table, "container", container,
		scene.New("container", nil), WithScheduler(sched))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := r.Update(scene.New("container", nil,
		scene.New("sprite", scene.Props{"failCreate": true}))); err != nil {
		t.Fatalf("Update: %v", err)
	}
	sched.Pump()

	found := false
	for _, seen := range handler.seen {
		var agg *scerr.CommitError
		if errors.As(seen, &agg) {
			found = true
		}
	}
	if !found {
		t.Errorf("handler saw %v, want a CommitError", handler.seen)
	}
}

func TestRedrawFiresOncePerCommit(t *testing.T) {
	_, table, container := newFakeEnv("sprite")
	r, err := Mount(table, "container", container, scene.New("container", nil))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	count := 0
	cancel := r.OnRedrawRequested(func() { count++ })

	r.UpdateSync(scene.New("container", nil, scene.New("sprite", nil)))
	if count != 1 {
		t.Errorf("redraw count = %d after one commit, want 1", count)
	}
	r.UpdateSync(scene.New("container", nil))
	if count != 2 {
		t.Errorf("redraw count = %d after two commits, want 2", count)
	}

	cancel()
	r.UpdateSync(scene.New("container", nil, scene.New("sprite", nil)))
	if count != 2 {
		t.Error("canceled callback should not fire")
	}
}

func TestUpdateRejectsNilTree(t *testing.T) {
	_, table, container := newFakeEnv()
	r, err := Mount(table, "container", container, nil)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if err := r.Update(nil); err == nil {
		t.Error("Update(nil) should fail")
	}
	if err := r.UpdateSync(nil); err == nil {
		t.Error("UpdateSync(nil) should fail")
	}
}

func TestConvergenceAcrossArbitrarySequence(t *testing.T) {
	_, table, container := newFakeEnv("sprite", "text")
	treeA := scene.New("container", scene.Props{"pad": 1.0},
		scene.NewKeyed("sprite", "hero", scene.Props{"x": 1.0},
			scene.New("text", scene.Props{"text": "hp"}),
		),
		scene.New("text", scene.Props{"text": "title"}),
		scene.NewKeyed("sprite", "villain", scene.Props{"x": 2.0}),
	)
	treeB := scene.New("container", scene.Props{"pad": 2.0},
		scene.NewKeyed("sprite", "villain", scene.Props{"x": 20.0},
			scene.New("sprite", scene.Props{"x": 21.0}),
		),
		scene.NewKeyed("sprite", "hero", scene.Props{"x": 10.0}),
		scene.New("sprite", nil),
	)

	r, err := Mount(table, "container", container, treeA)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	heroBefore := r.Container().Find(0, "hero")
	villainBefore := r.Container().Find(0, "villain")

	if err := r.UpdateSync(treeB); err != nil {
		t.Fatalf("UpdateSync: %v", err)
	}
	assertRootMirrors(t, r, treeB)
	if r.Container().Find(0, "hero") != heroBefore {
		t.Error("keyed hero should survive the restructuring")
	}
	if r.Container().Find(0, "villain") != villainBefore {
		t.Error("keyed villain should survive the restructuring")
	}
}

func TestFindSteps(t *testing.T) {
	_, table, container := newFakeEnv("sprite", "text")
	r, err := Mount(table, "container", container,
		scene.New("container", nil,
			scene.NewKeyed("sprite", "hero", nil, scene.New("text", nil)),
		))
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	if got := r.Container().Find(0, "hero", 0); got == nil || got.Kind() != "text" {
		t.Errorf("Find = %v, want the text instance", got)
	}
	if r.Container().Find(0, "missing") != nil {
		t.Error("Find with an unknown key should return nil")
	}
	if r.Container().Find(5) != nil {
		t.Error("Find with an out-of-range index should return nil")
	}
}

// captureHandler collects diagnostics for tests.
type captureHandler struct {
	seen []error
}

func (h *captureHandler) HandleDiagnostic(err error) {
	h.seen = append(h.seen, err)
}
