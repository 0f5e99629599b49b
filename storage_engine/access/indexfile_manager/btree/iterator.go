package btree

import (
	"BTreeIdx/types"
	"iter"
)

// Iterator walks the tree in ascending key order, one node read at a time.
// It keeps the path from the root to the current node on an explicit stack.
// The tree must not be modified while an Iterator is in use; start a new one
// to walk again.
type Iterator struct {
	tree  *BTree
	stack []frame
	cur   types.Pair
	err   error
	done  bool
}

type frame struct {
	node *Node
	next int // next key slot to emit
}

// NewIterator positions a fresh iterator before the smallest key.
func (t *BTree) NewIterator() *Iterator {
	it := &Iterator{tree: t}
	it.descend(t.header.RootID)
	return it
}

// descend pushes id and the leftmost path below it.
func (it *Iterator) descend(id types.BlockID) {
	for !id.IsNull() {
		n, err := it.tree.readNode(id)
		if err != nil {
			it.err = err
			it.done = true
			return
		}
		it.stack = append(it.stack, frame{node: n})
		id = n.Children[0]
	}
}

// Next advances to the next entry. Returns false when exhausted or on error.
func (it *Iterator) Next() bool {
	for !it.done {
		if len(it.stack) == 0 {
			it.done = true
			break
		}

		top := &it.stack[len(it.stack)-1]
		if top.next >= top.node.KeyCount {
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}

		n, i := top.node, top.next
		top.next++
		it.cur = types.Pair{Key: n.Keys[i], Value: n.Values[i]}
		if !n.IsLeaf() {
			it.descend(n.Children[i+1])
			if it.err != nil {
				return false
			}
		}
		return true
	}
	return false
}

// Pair returns the current entry.
func (it *Iterator) Pair() types.Pair {
	return it.cur
}

// Key returns the current key.
func (it *Iterator) Key() uint64 {
	return it.cur.Key
}

// Value returns the current value.
func (it *Iterator) Value() uint64 {
	return it.cur.Value
}

// Err is the error that stopped the iteration, if any.
func (it *Iterator) Err() error {
	return it.err
}

// All is the range-over-func form of Iterator. Each call starts from the root,
// so the sequence can be ranged over again. A read error is yielded once as
// the last element.
func (t *BTree) All() iter.Seq2[types.Pair, error] {
	return func(yield func(types.Pair, error) bool) {
		it := t.NewIterator()
		for it.Next() {
			if !yield(it.Pair(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(types.Pair{}, err)
		}
	}
}
