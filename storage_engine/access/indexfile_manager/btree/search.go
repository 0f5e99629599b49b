package btree

import "fmt"

// Search looks for key from the root down and returns the value stored with
// the first matching entry it meets.
func (t *BTree) Search(key uint64) (uint64, error) {
	if t.header.RootID.IsNull() {
		return 0, ErrEmptyTree
	}

	id := t.header.RootID
	for {
		n, err := t.readNode(id)
		if err != nil {
			return 0, fmt.Errorf("Search: %w", err)
		}

		i := n.lowerBound(key)
		if i < n.KeyCount && n.Keys[i] == key {
			return n.Values[i], nil
		}
		if n.IsLeaf() {
			return 0, fmt.Errorf("key %d: %w", key, ErrKeyNotFound)
		}
		id = n.Children[i]
	}
}

// Height is the number of levels, 0 for an empty tree.
func (t *BTree) Height() (int, error) {
	h := 0
	for id := t.header.RootID; !id.IsNull(); h++ {
		n, err := t.readNode(id)
		if err != nil {
			return 0, err
		}
		id = n.Children[0]
	}
	return h, nil
}
