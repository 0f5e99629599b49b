package btree

import (
	"fmt"

	"go.uber.org/zap"
)

// splitChild splits the full node child, which sits at slot i of parent.
//
// The upper Degree-1 entries of child (and its upper Degree children when it
// is internal) move to a freshly allocated sibling, the median entry moves up
// into parent at slot i, and the sibling becomes parent's child i+1.
//
// Writes go out as header, child, sibling, parent: the allocation is durable
// before anything refers to the new block.
func (t *BTree) splitChild(parent *Node, i int, child *Node) error {
	if !child.isFull() {
		return fmt.Errorf("splitChild: node %d holds %d keys, want %d: %w", child.ID, child.KeyCount, MaxKeys, ErrInvariant)
	}
	if parent.isFull() {
		return fmt.Errorf("splitChild: parent %d is full: %w", parent.ID, ErrInvariant)
	}

	sibling := newNode(t.allocate(), parent.ID)

	// upper half of the entries
	copy(sibling.Keys[:Degree-1], child.Keys[Degree:])
	copy(sibling.Values[:Degree-1], child.Values[Degree:])
	clear(child.Keys[Degree:])
	clear(child.Values[Degree:])
	sibling.KeyCount = Degree - 1

	if !child.IsLeaf() {
		copy(sibling.Children[:Degree], child.Children[Degree:])
		clear(child.Children[Degree:])
	}

	// open slot i+1 in parent's children and slot i in its entries
	n := parent.KeyCount
	copy(parent.Children[i+2:n+2], parent.Children[i+1:n+1])
	parent.Children[i+1] = sibling.ID
	copy(parent.Keys[i+1:n+1], parent.Keys[i:n])
	copy(parent.Values[i+1:n+1], parent.Values[i:n])

	// promote the median
	parent.Keys[i] = child.Keys[medianIndex]
	parent.Values[i] = child.Values[medianIndex]
	child.Keys[medianIndex] = 0
	child.Values[medianIndex] = 0
	child.KeyCount = Degree - 1
	parent.KeyCount++

	if err := t.saveHeader(); err != nil {
		return err
	}
	if err := t.writeNode(child); err != nil {
		return err
	}
	if err := t.writeNode(sibling); err != nil {
		return err
	}
	if err := t.writeNode(parent); err != nil {
		return err
	}

	t.logger.Debug("split node",
		zap.Stringer("node", child.ID),
		zap.Stringer("sibling", sibling.ID),
		zap.Stringer("parent", parent.ID),
		zap.Uint64("promoted", parent.Keys[i]))
	return nil
}
