package btree

import (
	"BTreeIdx/types"
	"fmt"
)

// Traverse calls visit for every entry in ascending key order. A non-nil
// error from visit stops the walk and is returned as is.
func (t *BTree) Traverse(visit func(types.Pair) error) error {
	return t.traverse(t.header.RootID, visit)
}

func (t *BTree) traverse(id types.BlockID, visit func(types.Pair) error) error {
	if id.IsNull() {
		return nil
	}
	n, err := t.readNode(id)
	if err != nil {
		return fmt.Errorf("traverse: %w", err)
	}

	leaf := n.IsLeaf()
	for i := 0; i < n.KeyCount; i++ {
		if !leaf {
			if err := t.traverse(n.Children[i], visit); err != nil {
				return err
			}
		}
		if err := visit(types.Pair{Key: n.Keys[i], Value: n.Values[i]}); err != nil {
			return err
		}
	}
	if !leaf {
		return t.traverse(n.Children[n.KeyCount], visit)
	}
	return nil
}

// Collect returns every entry in ascending key order.
func (t *BTree) Collect() ([]types.Pair, error) {
	var out []types.Pair
	err := t.Traverse(func(p types.Pair) error {
		out = append(out, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
