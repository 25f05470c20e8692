package stage

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
)

// Draw renders the node and its subtree onto dst. The transform is
// local scale, then rotation, then translation, composed with the
// parent transform; alpha multiplies down the tree.
func (n *Node) Draw(dst *ebiten.Image) {
	n.draw(dst, ebiten.GeoM{}, 1)
}

func (n *Node) draw(dst *ebiten.Image, parent ebiten.GeoM, parentAlpha float64) {
	if n.disposed || !n.Visible {
		return
	}

	g := ebiten.GeoM{}
	g.Scale(n.ScaleX, n.ScaleY)
	g.Rotate(n.Rotation)
	g.Translate(n.X, n.Y)
	g.Concat(parent)

	alpha := parentAlpha * n.Alpha

	switch n.Type {
	case NodeSprite:
		if n.Image != nil {
			op := &ebiten.DrawImageOptions{GeoM: g}
			op.ColorScale.Scale(float32(n.Color.R), float32(n.Color.G), float32(n.Color.B), float32(n.Color.A))
			op.ColorScale.ScaleAlpha(float32(alpha))
			dst.DrawImage(n.Image, op)
		}
	case NodeText:
		if n.Text != "" && n.Face != nil {
			op := &ebiten.DrawImageOptions{GeoM: g}
			op.ColorScale.Scale(float32(n.Color.R), float32(n.Color.G), float32(n.Color.B), float32(n.Color.A))
			op.ColorScale.ScaleAlpha(float32(alpha))
			text.DrawWithOptions(dst, n.Text, n.Face, op)
		}
	}

	for _, child := range n.children {
		child.draw(dst, g, alpha)
	}
}
