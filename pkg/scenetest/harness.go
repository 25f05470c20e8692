package scenetest

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/zwade/scenic/pkg/reconciler"
	"github.com/zwade/scenic/pkg/scene"
)

// Harness wires a Recorder, a manual scheduler, and a mounted root into
// one pump-style test fixture. The root is unmounted automatically via
// t.Cleanup.
type Harness struct {
	t         *testing.T
	Recorder  *Recorder
	Scheduler *reconciler.Manual
	Container *RecordedNode
	Root      *reconciler.Root
}

// NewHarness returns an unmounted harness whose recorder knows the given
// kinds (plus "container").
func NewHarness(t *testing.T, kinds ...string) *Harness {
	t.Helper()
	rec := NewRecorder(kinds...)
	return &Harness{
		t:         t,
		Recorder:  rec,
		Scheduler: reconciler.NewManual(),
		Container: rec.NewContainer(),
	}
}

// Mount mounts tree and returns the initial commit's aggregated error,
// if any. The harness is usable afterwards either way.
func (h *Harness) Mount(tree *scene.Element) error {
	h.t.Helper()
	root, err := reconciler.Mount(h.Recorder.Table(), "container", h.Container, tree,
		reconciler.WithScheduler(h.Scheduler))
	if root == nil {
		return err
	}
	h.Root = root
	h.t.Cleanup(func() {
		// Best effort; the test may have unmounted already.
		_ = root.Unmount()
	})
	return err
}

// MustMount is Mount that fails the test on error.
func (h *Harness) MustMount(tree *scene.Element) {
	h.t.Helper()
	if err := h.Mount(tree); err != nil {
		h.t.Fatalf("mount: %v", err)
	}
}

// Render schedules tree and pumps until the commit lands, failing the
// test on lifecycle misuse. Commit errors surface via the diagnostic
// handler, as in production deferred mode.
func (h *Harness) Render(tree *scene.Element) {
	h.t.Helper()
	if err := h.Root.Update(tree); err != nil {
		h.t.Fatalf("update: %v", err)
	}
	h.Scheduler.Pump()
}

// RenderSync commits tree synchronously and returns the aggregated
// commit error.
func (h *Harness) RenderSync(tree *scene.Element) error {
	h.t.Helper()
	return h.Root.UpdateSync(tree)
}

// Ops returns the recorded operations since the last reset.
func (h *Harness) Ops() []Op { return h.Recorder.Ops() }

// ResetOps clears the operation log, typically right after mounting.
func (h *Harness) ResetOps() { h.Recorder.Reset() }

// RequireTree fails the test unless the recorded native tree dumps to
// want, printing a character diff on mismatch.
func (h *Harness) RequireTree(want string) {
	h.t.Helper()
	got := Dump(h.Container)
	if got == want {
		return
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(want, got, false)
	h.t.Fatalf("native tree mismatch (want -> got):\n%s", dmp.DiffPrettyText(diffs))
}

// AssertGolden compares the native tree dump against the golden file
// testdata/<name>.golden, honoring goldie's -update flag.
func (h *Harness) AssertGolden(name string) {
	h.t.Helper()
	g := goldie.New(h.t)
	g.Assert(h.t, name, []byte(Dump(h.Container)))
}
