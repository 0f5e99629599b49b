package btree

import (
	"BTreeIdx/types"
	"fmt"

	"go.uber.org/zap"
)

// Insert adds key/value to the tree. Keys are not checked for uniqueness: a
// duplicate is stored as a second entry next to the first one.
func (t *BTree) Insert(key, value uint64) error {
	if t.header.RootID.IsNull() {
		return t.newRootLeaf(key, value)
	}

	root, err := t.readNode(t.header.RootID)
	if err != nil {
		return fmt.Errorf("Insert: failed to load root: %w", err)
	}

	if root.isFull() {
		newRoot, err := t.growRoot(root)
		if err != nil {
			return fmt.Errorf("Insert: %w", err)
		}
		if err := t.splitChild(newRoot, 0, root); err != nil {
			return fmt.Errorf("Insert: failed to split old root: %w", err)
		}
		return t.insertNonFull(newRoot, key, value)
	}

	return t.insertNonFull(root, key, value)
}

// newRootLeaf turns an empty tree into a single-key leaf. The node is written
// before the header that points at it.
func (t *BTree) newRootLeaf(key, value uint64) error {
	root := newNode(t.allocate(), types.NullBlock)
	root.Keys[0] = key
	root.Values[0] = value
	root.KeyCount = 1
	t.header.RootID = root.ID

	if err := t.writeNode(root); err != nil {
		return fmt.Errorf("newRootLeaf: %w", err)
	}
	if err := t.saveHeader(); err != nil {
		return fmt.Errorf("newRootLeaf: %w", err)
	}
	t.logger.Debug("created root leaf", zap.Stringer("root", root.ID))
	return nil
}

// growRoot puts an empty internal node above the full root. The old root
// becomes its only child and is split by the caller.
func (t *BTree) growRoot(old *Node) (*Node, error) {
	newRoot := newNode(t.allocate(), types.NullBlock)
	newRoot.Children[0] = old.ID
	old.ParentID = newRoot.ID
	t.header.RootID = newRoot.ID

	if err := t.saveHeader(); err != nil {
		return nil, fmt.Errorf("growRoot: %w", err)
	}
	if err := t.writeNode(newRoot); err != nil {
		return nil, fmt.Errorf("growRoot: %w", err)
	}
	if err := t.writeNode(old); err != nil {
		return nil, fmt.Errorf("growRoot: %w", err)
	}

	t.logger.Debug("grew root",
		zap.Stringer("newRoot", newRoot.ID),
		zap.Stringer("oldRoot", old.ID))
	return newRoot, nil
}
