package scene

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Props maps property names to desired values. Insertion order is
// irrelevant; each key is diffed independently.
type Props map[string]any

// Element is one node of a descriptor tree. Treat it as immutable once
// constructed: the reconciler keeps references to committed trees and
// never copies them defensively.
type Element struct {
	// Kind names the adapter that realizes this element.
	Kind string
	// Key optionally pins this element's identity among its siblings
	// across render passes. Must be comparable. Nil means positional
	// matching.
	Key any
	// Props are the desired property values for this element.
	Props Props
	// Children is the ordered child list. Order is significant.
	Children []*Element
}

// New returns an element with the given kind, props, and children.
func New(kind string, props Props, children ...*Element) *Element {
	return &Element{Kind: kind, Props: props, Children: children}
}

// NewKeyed returns a keyed element. See Element.Key.
func NewKeyed(kind string, key any, props Props, children ...*Element) *Element {
	return &Element{Kind: kind, Key: key, Props: props, Children: children}
}

// Clone returns a structural copy of the element tree. Prop values are
// shared, not copied; the maps and child slices are fresh.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{Kind: e.Kind, Key: e.Key}
	if e.Props != nil {
		out.Props = make(Props, len(e.Props))
		for k, v := range e.Props {
			out.Props[k] = v
		}
	}
	if len(e.Children) > 0 {
		out.Children = make([]*Element, len(e.Children))
		for i, c := range e.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Walk visits e and its descendants depth-first in child order. Returning
// false from fn stops descent below that element.
func (e *Element) Walk(fn func(*Element) bool) {
	if e == nil {
		return
	}
	if !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Count returns the number of elements in the tree rooted at e.
func (e *Element) Count() int {
	n := 0
	e.Walk(func(*Element) bool { n++; return true })
	return n
}

// String renders a compact single-line description, mainly for errors and
// debug output.
func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(e.Kind)
	if e.Key != nil {
		fmt.Fprintf(&b, "[key=%v]", e.Key)
	}
	if len(e.Props) > 0 {
		keys := make([]string, 0, len(e.Props))
		for k := range e.Props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('(')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Props[k])
		}
		b.WriteByte(')')
	}
	if n := len(e.Children); n > 0 {
		fmt.Fprintf(&b, "{%d}", n)
	}
	return b.String()
}

// ValueEqual reports whether two property values are equal under the
// shallow equality rules used for prop diffing: values of the same
// comparable type compare with ==, and slices, maps, and functions
// compare by identity. It never compares deeply.
func ValueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch va.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	}
	return false
}

// PropsEqual reports whether a and b hold the same keys with ValueEqual
// values. A nil map equals an empty one.
func PropsEqual(a, b Props) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !ValueEqual(av, bv) {
			return false
		}
	}
	return true
}
