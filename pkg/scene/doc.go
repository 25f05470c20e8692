// Package scene defines the descriptor model: immutable, lightweight
// descriptions of what a scene graph should look like.
//
// A descriptor tree is built fresh on every render pass and handed to a
// reconciler root, which mutates a retained host graph to match it. The
// descriptor itself is never mutated by the library.
//
// # Elements
//
// Element is the single descriptor type. Its Kind names a registered
// adapter, Props carry the desired visual attributes, and Children are an
// ordered list of child descriptors:
//
//	tree := scene.New("container", nil,
//	    scene.NewKeyed("sprite", "hero", scene.Props{"x": 100.0, "y": 50.0}),
//	    scene.New("text", scene.Props{"text": "score: 0"}),
//	)
//
// # Keys
//
// Children without a Key are matched by position between render passes:
// inserting or removing one shifts the identity of every later sibling.
// Supply a Key for any child whose identity must survive reordering.
//
// # Property equality
//
// Props are compared per key with reference (shallow) equality, see
// ValueEqual. Reuse the same slice, map, or function value across passes
// when it has not changed, or the reconciler will re-apply it every time.
package scene
