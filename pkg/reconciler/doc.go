// Package reconciler keeps a retained host scene graph converged to
// declarative descriptor trees.
//
// A Root binds one native container to one instance registry. Each call
// to [Root.Update] or [Root.UpdateSync] supplies a fresh descriptor tree;
// the engine diffs it against the last committed tree and applies the
// minimal create/update/move/delete sequence through the adapter table.
// Work is proportional to the diff, not the tree.
//
//	table := stage.Adapters()
//	root, err := reconciler.Mount(table, "container", stageRoot, tree)
//	...
//	root.Update(nextTree)
//
// # Commit discipline
//
// Commits for one root never overlap: a tree arriving while a commit is
// in flight supersedes any queued tree and is committed afterwards.
// Intermediate trees are never replayed. After every commit pass the
// root fires its redraw-request callbacks exactly once; an embedding
// drives its draw loop from that signal so a draw never observes a
// half-committed graph.
//
// # Failure model
//
// A commit collects errors instead of stopping: a broken subtree is
// skipped, its siblings commit, and the caller receives one aggregated
// *errors.CommitError. Rollback is not attempted.
package reconciler
