package scenetest

import (
	"fmt"
	"sort"
	"strings"
)

// Dump renders a recorded native tree as stable, diff-friendly text: one
// node per line, two-space indentation, props sorted by key.
//
//	root
//	  container#1 pad=4
//	    sprite#2 x=10 y=20
func Dump(n *RecordedNode) string {
	var b strings.Builder
	dumpNode(&b, n, 0)
	return b.String()
}

func dumpNode(b *strings.Builder, n *RecordedNode, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.ID)
	keys := make([]string, 0, len(n.Props))
	for k := range n.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, n.Props[k])
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		dumpNode(b, c, depth+1)
	}
}
