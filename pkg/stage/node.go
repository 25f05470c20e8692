// Package stage is the built-in Ebitengine host engine: a retained node
// graph, adapters for the container/sprite/text kinds, and a Stage that
// glues reconciler commits into an Ebitengine game loop.
package stage

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/hajimehoshi/ebiten/v2"
)

// NodeType discriminates the node kinds of the stage graph. A single
// flat struct is used for all of them to avoid interface dispatch on the
// draw path.
type NodeType uint8

const (
	NodeContainer NodeType = iota
	NodeSprite
	NodeText
)

func (t NodeType) String() string {
	switch t {
	case NodeContainer:
		return "container"
	case NodeSprite:
		return "sprite"
	case NodeText:
		return "text"
	default:
		return "unknown"
	}
}

// Color is an RGBA tint with components in [0, 1]. Not premultiplied;
// premultiplication happens at draw submission.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// defaultFace renders text kinds that set no explicit face.
var defaultFace font.Face = basicfont.Face7x13

// Node is one retained node of the stage graph.
type Node struct {
	Type NodeType

	// Transform (local)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64

	// Paint
	Alpha   float64
	Visible bool
	Color   Color

	// Sprite fields (NodeSprite)
	Image *ebiten.Image

	// Text fields (NodeText)
	Text string
	Face font.Face

	parent   *Node
	children []*Node
	disposed bool
}

func newNode(t NodeType) *Node {
	return &Node{
		Type:    t,
		ScaleX:  1,
		ScaleY:  1,
		Alpha:   1,
		Visible: true,
		Color:   ColorWhite,
		Face:    defaultFace,
	}
}

// NewContainer creates a detached container node.
func NewContainer() *Node { return newNode(NodeContainer) }

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the child list. The returned slice MUST NOT be
// mutated by the caller.
func (n *Node) Children() []*Node { return n.children }

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// IsDisposed reports whether this node has been disposed.
func (n *Node) IsDisposed() bool { return n.disposed }

// isAncestorOf reports whether n is other or one of its ancestors.
func (n *Node) isAncestorOf(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// insertChild inserts child at index and sets its parent.
func (n *Node) insertChild(child *Node, index int) {
	child.parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
}

// removeChild detaches child, reporting whether it was present. Uses
// copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChild(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			child.parent = nil
			return true
		}
	}
	return false
}

// indexOf returns child's position, or -1.
func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Dispose marks the node and all descendants disposed and drops their
// references. Idempotent. Textures are owned by the caller and are not
// deallocated here.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.disposed = true
	for _, child := range n.children {
		child.parent = nil
		child.Dispose()
	}
	n.children = nil
	n.parent = nil
	n.Image = nil
	n.Face = nil
}
