package treeborrows

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/banks/treeborrows/pkg/tag"
)

// dumper renders a Tree as a box-drawing diagram for debugging, e.g.:
//
//	─── root (tag=0)
//	    default: Disabled
//	    ├── C (tag=1)
//	    │   default: Reserved
//	    │  └── E (tag=3)
//	    │      default: Reserved
//	    └── D (tag=2)
//	        default: Reserved
type dumper struct {
	tree        *Tree
	buf         *bytes.Buffer
	nChildStack []int
}

// Dump writes a human-readable rendering of t to w, rooted at t's root
// tag, with each node's name (if any), tag, and accumulated history.
func (t *Tree) Dump(w io.Writer) {
	d := &dumper{tree: t, buf: &bytes.Buffer{}}
	d.dumpNode(t.root)
	io.WriteString(w, d.buf.String())
}

func (d *dumper) padding() (string, string) {
	depth := len(d.nChildStack)
	if depth == 0 {
		return "───", "   "
	}
	pad := "    " + strings.Repeat("│  ", depth-1)

	childrenLeft := d.nChildStack[len(d.nChildStack)-1]
	head, finalPad := "├──", "│  "
	if childrenLeft == 1 {
		head, finalPad = "└──", "   "
	}
	return pad + head, pad + finalPad
}

func (d *dumper) pushNChildren(n int) { d.nChildStack = append(d.nChildStack, n) }

func (d *dumper) decNChildren() {
	if len(d.nChildStack) > 0 {
		d.nChildStack[len(d.nChildStack)-1]--
	}
}

func (d *dumper) popNChildren() {
	if depth := len(d.nChildStack); depth > 0 {
		d.nChildStack = d.nChildStack[:depth-1]
	}
}

func (d *dumper) dumpNode(id tag.NodeID) {
	headerPad, pad := d.padding()
	n := d.tree.nodes[id]

	label := fmt.Sprintf("tag=%d", n.tag)
	if n.debugInfo.Name != "" {
		label = fmt.Sprintf("%s (tag=%d)", n.debugInfo.Name, n.tag)
	}
	fmt.Fprintf(d.buf, "%s %s\n", headerPad, label)
	fmt.Fprintf(d.buf, "%s default: %s\n", pad, n.defaultInitialPerm)
	for _, ev := range n.debugInfo.History {
		fmt.Fprintf(d.buf, "%s   %s\n", pad, ev)
	}

	d.pushNChildren(len(n.children))
	for _, c := range n.children {
		d.dumpNode(c)
		d.decNChildren()
	}
	d.popNChildren()
}
