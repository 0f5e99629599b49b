// Package btree: index file inspection for debugging.
// Use (*BTree).InspectTo to print a human-readable dump of an index file.

package btree

import (
	"BTreeIdx/types"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// InspectTo writes a level-by-level dump of the tree to w:
// block 0 = header, then each node's keys and children, breadth first.
func (t *BTree) InspectTo(w io.Writer) error {
	p := func(format string, args ...any) { fmt.Fprintf(w, format, args...) }
	pln := func(s string) { fmt.Fprintln(w, s) }

	size, err := t.disk.Size()
	if err != nil {
		return err
	}

	p("Index file: %s (%s, %s blocks)\n", t.disk.Path(),
		humanize.IBytes(uint64(size)), humanize.Comma(size/types.BlockSize))
	p("  Block 0 (header): root = %d, next = %d\n", t.header.RootID, t.header.NextID)
	if t.header.RootID.IsNull() {
		pln("  (empty tree)")
		return nil
	}

	pln("\n  Nodes (BFS):")
	pln("  ---")

	queue := []types.BlockID{t.header.RootID}
	level := 0
	for len(queue) > 0 {
		width := len(queue)
		p("  Level %d:\n", level)
		for _, id := range queue[:width] {
			n, err := t.readNode(id)
			if err != nil {
				p("    [block %d] read error: %v\n", id, err)
				continue
			}
			if n.IsLeaf() {
				p("    [block %d] LEAF parent=%d numKeys=%d\n", id, n.ParentID, n.KeyCount)
				for _, pair := range n.Pairs() {
					p("      %d -> %d\n", pair.Key, pair.Value)
				}
				continue
			}
			p("    [block %d] INTERNAL parent=%d keys=%v children=%v\n",
				id, n.ParentID, n.Keys[:n.KeyCount], n.ChildIDs())
			queue = append(queue, n.ChildIDs()...)
		}
		pln("  ---")
		queue = queue[width:]
		level++
	}
	return nil
}
