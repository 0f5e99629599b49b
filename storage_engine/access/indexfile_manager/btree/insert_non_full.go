package btree

import "fmt"

// insertNonFull places key/value in the subtree rooted at node, which must
// have room for one more entry. Full children are split on the way down so
// the leaf reached at the bottom always has room.
func (t *BTree) insertNonFull(node *Node, key, value uint64) error {
	i := node.upperBound(key)

	if node.IsLeaf() {
		n := node.KeyCount
		copy(node.Keys[i+1:n+1], node.Keys[i:n])
		copy(node.Values[i+1:n+1], node.Values[i:n])
		node.Keys[i] = key
		node.Values[i] = value
		node.KeyCount++
		return t.writeNode(node)
	}

	child, err := t.readNode(node.Children[i])
	if err != nil {
		return fmt.Errorf("insertNonFull: failed to load child %d of node %d: %w", i, node.ID, err)
	}

	if child.isFull() {
		if err := t.splitChild(node, i, child); err != nil {
			return err
		}
		// the promoted key now sits at slot i and decides which half we want
		if key > node.Keys[i] {
			i++
		}
		child, err = t.readNode(node.Children[i])
		if err != nil {
			return fmt.Errorf("insertNonFull: failed to reload child %d of node %d: %w", i, node.ID, err)
		}
	}

	return t.insertNonFull(child, key, value)
}
