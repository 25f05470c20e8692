package stage

import (
	"fmt"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/zwade/scenic/pkg/errors"
	"github.com/zwade/scenic/pkg/reconciler"
	"github.com/zwade/scenic/pkg/scene"
)

// Stage hosts a reconciler root inside an Ebitengine game loop. Commits
// are deferred onto a manual scheduler and pumped from Update, so Draw
// never observes a half-committed graph.
//
// Stage implements ebiten.Game; embed it or forward Update/Draw/Layout
// from your own game type.
type Stage struct {
	container    *Node
	sched        *reconciler.Manual
	root         *reconciler.Root
	cancelRedraw func()
	needsRedraw  atomic.Bool
}

// NewStage returns an unmounted stage with an empty container.
func NewStage() *Stage {
	return &Stage{
		container: NewContainer(),
		sched:     reconciler.NewManual(),
	}
}

// Mount mounts tree into the stage container. A non-nil stage is usable
// even when the returned error is a partial commit failure.
func (s *Stage) Mount(tree *scene.Element) error {
	if s.root != nil {
		return fmt.Errorf("stage: already mounted")
	}
	root, err := reconciler.Mount(Adapters(), "container", s.container, tree,
		reconciler.WithScheduler(s.sched))
	if root != nil {
		s.root = root
		s.cancelRedraw = root.OnRedrawRequested(func() {
			s.needsRedraw.Store(true)
		})
		// The mount commit ran before the callback existed.
		s.needsRedraw.Store(true)
	}
	return err
}

// Render schedules a re-render with tree. The commit runs on the next
// Update tick; intermediate trees rendered before that tick are
// coalesced away.
func (s *Stage) Render(tree *scene.Element) error {
	if s.root == nil {
		return &errors.NotMountedError{Op: "render"}
	}
	return s.root.Update(tree)
}

// Unmount tears the mounted tree down and detaches the stage from its
// root. The stage cannot be remounted.
func (s *Stage) Unmount() error {
	if s.root == nil {
		return &errors.NotMountedError{Op: "unmount"}
	}
	if s.cancelRedraw != nil {
		s.cancelRedraw()
		s.cancelRedraw = nil
	}
	return s.root.Unmount()
}

// Container exposes the native container node, mainly for inspection.
func (s *Stage) Container() *Node { return s.container }

// Root exposes the mounted reconciler root, or nil before Mount.
func (s *Stage) Root() *reconciler.Root { return s.root }

// NeedsRedraw reports whether a commit has landed since the last Draw.
// Useful with ebiten's ScreenClearedEveryFrame(false) style setups.
func (s *Stage) NeedsRedraw() bool { return s.needsRedraw.Load() }

// Update pumps pending commits. Part of ebiten.Game.
func (s *Stage) Update() error {
	s.sched.Pump()
	return nil
}

// Draw renders the container subtree onto screen. Part of ebiten.Game.
func (s *Stage) Draw(screen *ebiten.Image) {
	s.needsRedraw.Store(false)
	s.container.Draw(screen)
}

// Layout reports the logical screen size. Part of ebiten.Game.
func (s *Stage) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
