package btree

import (
	"BTreeIdx/types"
	"fmt"
)

// Stats summarizes the shape of a tree.
type Stats struct {
	RootID     types.BlockID
	NextID     types.BlockID
	Height     int
	Nodes      int
	Leaves     int
	Keys       int
	Duplicates int // entries whose key equals the previous key in order
}

// Verify walks the whole tree and checks the structural invariants:
//
//   - keys come out of an in-order walk in non-decreasing order
//   - every node but the root holds MinKeys..MaxKeys keys, the root 1..MaxKeys
//   - internal nodes have KeyCount+1 non-null children and nothing after them
//   - all leaves sit at the same depth
//   - every node is reachable exactly once and its id is below Header.NextID
//
// It returns the collected Stats and an error wrapping ErrInvariant for the
// first violation found.
func (t *BTree) Verify() (Stats, error) {
	v := &verifier{
		tree:   t,
		seen:   make(map[types.BlockID]bool),
		leafAt: -1,
		stats:  Stats{RootID: t.header.RootID, NextID: t.header.NextID},
	}
	if t.header.NextID == types.NullBlock {
		return v.stats, fmt.Errorf("next block id is 0: %w", ErrInvariant)
	}
	if t.header.RootID.IsNull() {
		return v.stats, nil
	}
	if err := v.walk(t.header.RootID, 1); err != nil {
		return v.stats, err
	}
	v.stats.Height = v.leafAt
	return v.stats, nil
}

type verifier struct {
	tree    *BTree
	seen    map[types.BlockID]bool
	leafAt  int
	prev    uint64
	hasPrev bool
	stats   Stats
}

func (v *verifier) fail(n *Node, format string, args ...any) error {
	return fmt.Errorf("node %d: %s: %w", n.ID, fmt.Sprintf(format, args...), ErrInvariant)
}

func (v *verifier) walk(id types.BlockID, depth int) error {
	if v.seen[id] {
		return fmt.Errorf("node %d reached twice: %w", id, ErrInvariant)
	}
	v.seen[id] = true

	n, err := v.tree.readNode(id)
	if err != nil {
		return err
	}
	v.stats.Nodes++
	v.stats.Keys += n.KeyCount

	isRoot := id == v.tree.header.RootID
	switch {
	case isRoot && n.KeyCount < 1:
		return v.fail(n, "root holds no keys")
	case !isRoot && n.KeyCount < MinKeys:
		return v.fail(n, "holds %d keys, minimum is %d", n.KeyCount, MinKeys)
	}

	if n.IsLeaf() {
		v.stats.Leaves++
		for i, c := range n.Children {
			if !c.IsNull() {
				return v.fail(n, "leaf has child %d in slot %d", c, i)
			}
		}
		if v.leafAt == -1 {
			v.leafAt = depth
		} else if v.leafAt != depth {
			return v.fail(n, "leaf at depth %d, expected %d", depth, v.leafAt)
		}
		for i := 0; i < n.KeyCount; i++ {
			if err := v.emit(n, n.Keys[i]); err != nil {
				return err
			}
		}
		return nil
	}

	for i, c := range n.Children {
		if i <= n.KeyCount && c.IsNull() {
			return v.fail(n, "null child in slot %d", i)
		}
		if i > n.KeyCount && !c.IsNull() {
			return v.fail(n, "child %d beyond key count in slot %d", c, i)
		}
	}
	for i := 0; i <= n.KeyCount; i++ {
		if err := v.walk(n.Children[i], depth+1); err != nil {
			return err
		}
		if i < n.KeyCount {
			if err := v.emit(n, n.Keys[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *verifier) emit(n *Node, key uint64) error {
	if v.hasPrev {
		if key < v.prev {
			return v.fail(n, "key %d follows larger key %d", key, v.prev)
		}
		if key == v.prev {
			v.stats.Duplicates++
		}
	}
	v.prev, v.hasPrev = key, true
	return nil
}
