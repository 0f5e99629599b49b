package btree

import "BTreeIdx/types"

// newNode returns an empty leaf living at block id.
func newNode(id, parent types.BlockID) *Node {
	return &Node{ID: id, ParentID: parent}
}

// IsLeaf reports whether n has no children. Block 0 is never a child, so the
// first child slot alone decides it.
func (n *Node) IsLeaf() bool {
	return n.Children[0].IsNull()
}

func (n *Node) isFull() bool {
	return n.KeyCount == MaxKeys
}

// lowerBound is the first slot whose key is >= key.
func (n *Node) lowerBound(key uint64) int {
	i := 0
	for i < n.KeyCount && key > n.Keys[i] {
		i++
	}
	return i
}

// upperBound is the first slot whose key is > key. Equal keys route right.
func (n *Node) upperBound(key uint64) int {
	i := n.KeyCount
	for i > 0 && key < n.Keys[i-1] {
		i--
	}
	return i
}

// Pairs returns the occupied entries of n in slot order.
func (n *Node) Pairs() []types.Pair {
	out := make([]types.Pair, n.KeyCount)
	for i := range out {
		out[i] = types.Pair{Key: n.Keys[i], Value: n.Values[i]}
	}
	return out
}

// ChildIDs returns the occupied child slots, nil for a leaf.
func (n *Node) ChildIDs() []types.BlockID {
	if n.IsLeaf() {
		return nil
	}
	return append([]types.BlockID(nil), n.Children[:n.KeyCount+1]...)
}
