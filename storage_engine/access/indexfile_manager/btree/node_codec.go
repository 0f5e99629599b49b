package btree

import (
	"BTreeIdx/types"
	"encoding/binary"
	"fmt"
)

/*
encodeNode writes a Node into its fixed positional layout.
Every field is a big-endian uint64, no padding between fields:

	id        (8)
	parentID  (8)
	keyCount  (8)
	keys      MaxKeys     × 8  = 152
	values    MaxKeys     × 8  = 152
	children  MaxChildren × 8  = 160
	                     total = 488

The disk manager pads the remaining 24 bytes of the block with zeros.
*/

const NodeSize = 3*8 + MaxKeys*8 + MaxKeys*8 + MaxChildren*8

func encodeNode(n *Node) []byte {
	buf := make([]byte, NodeSize)
	off := 0
	put := func(v uint64) {
		binary.BigEndian.PutUint64(buf[off:], v)
		off += 8
	}

	put(uint64(n.ID))
	put(uint64(n.ParentID))
	put(uint64(n.KeyCount))
	for _, k := range n.Keys {
		put(k)
	}
	for _, v := range n.Values {
		put(v)
	}
	for _, c := range n.Children {
		put(uint64(c))
	}
	return buf
}

func decodeNode(buf []byte) (*Node, error) {
	if len(buf) < NodeSize {
		return nil, fmt.Errorf("node buffer is %d bytes, need %d: %w", len(buf), NodeSize, ErrCorruptNode)
	}

	off := 0
	next := func() uint64 {
		v := binary.BigEndian.Uint64(buf[off:])
		off += 8
		return v
	}

	n := &Node{}
	n.ID = types.BlockID(next())
	n.ParentID = types.BlockID(next())
	count := next()
	if count > MaxKeys {
		return nil, fmt.Errorf("node %d: key count %d exceeds %d: %w", n.ID, count, MaxKeys, ErrCorruptNode)
	}
	n.KeyCount = int(count)
	for i := range n.Keys {
		n.Keys[i] = next()
	}
	for i := range n.Values {
		n.Values[i] = next()
	}
	for i := range n.Children {
		n.Children[i] = types.BlockID(next())
	}
	return n, nil
}
