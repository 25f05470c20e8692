package stage

import (
	"fmt"
	"image/color"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"

	"github.com/hajimehoshi/ebiten/v2"
)

// propSetter writes one prop value onto a node. A returned error is
// fatal for the node's commit (wrong value type is a programming error,
// unlike an unknown prop name).
type propSetter func(n *Node, v any) error

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	default:
		return 0, false
	}
}

// toColor accepts a Color, a CSS color name ("rebeccapurple"), or any
// color.Color.
func toColor(v any) (Color, bool) {
	switch x := v.(type) {
	case Color:
		return x, true
	case string:
		c, ok := colornames.Map[x]
		if !ok {
			return Color{}, false
		}
		return fromRGBA(c), true
	case color.Color:
		r, g, b, a := x.RGBA()
		return Color{
			R: float64(r) / 0xffff,
			G: float64(g) / 0xffff,
			B: float64(b) / 0xffff,
			A: float64(a) / 0xffff,
		}, true
	default:
		return Color{}, false
	}
}

func fromRGBA(c color.RGBA) Color {
	return Color{
		R: float64(c.R) / 0xff,
		G: float64(c.G) / 0xff,
		B: float64(c.B) / 0xff,
		A: float64(c.A) / 0xff,
	}
}

func floatSetter(name string, assign func(n *Node, f float64)) propSetter {
	return func(n *Node, v any) error {
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("prop %s: want number, got %T", name, v)
		}
		assign(n, f)
		return nil
	}
}

var commonSetters = map[string]propSetter{
	"x":      floatSetter("x", func(n *Node, f float64) { n.X = f }),
	"y":      floatSetter("y", func(n *Node, f float64) { n.Y = f }),
	"scaleX": floatSetter("scaleX", func(n *Node, f float64) { n.ScaleX = f }),
	"scaleY": floatSetter("scaleY", func(n *Node, f float64) { n.ScaleY = f }),
	"rotation": floatSetter("rotation", func(n *Node, f float64) {
		n.Rotation = f
	}),
	"alpha": floatSetter("alpha", func(n *Node, f float64) { n.Alpha = f }),
	"visible": func(n *Node, v any) error {
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("prop visible: want bool, got %T", v)
		}
		n.Visible = b
		return nil
	},
	"color": func(n *Node, v any) error {
		c, ok := toColor(v)
		if !ok {
			return fmt.Errorf("prop color: want color or color name, got %v", v)
		}
		n.Color = c
		return nil
	},
}

var commonDefaults = map[string]any{
	"x":        0.0,
	"y":        0.0,
	"scaleX":   1.0,
	"scaleY":   1.0,
	"rotation": 0.0,
	"alpha":    1.0,
	"visible":  true,
	"color":    ColorWhite,
}

var spriteSetters = merge(commonSetters, map[string]propSetter{
	"image": func(n *Node, v any) error {
		if v == nil {
			n.Image = nil
			return nil
		}
		img, ok := v.(*ebiten.Image)
		if !ok {
			return fmt.Errorf("prop image: want *ebiten.Image, got %T", v)
		}
		n.Image = img
		return nil
	},
})

var spriteDefaults = merge(commonDefaults, map[string]any{
	"image": nil,
})

var textSetters = merge(commonSetters, map[string]propSetter{
	"text": func(n *Node, v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("prop text: want string, got %T", v)
		}
		n.Text = s
		return nil
	},
	"face": func(n *Node, v any) error {
		if v == nil {
			n.Face = defaultFace
			return nil
		}
		f, ok := v.(font.Face)
		if !ok {
			return fmt.Errorf("prop face: want font.Face, got %T", v)
		}
		n.Face = f
		return nil
	},
})

var textDefaults = merge(commonDefaults, map[string]any{
	"text": "",
	"face": nil,
})

func merge[K comparable, V any](base, extra map[K]V) map[K]V {
	out := make(map[K]V, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
