// Structure of the B-tree index file
/*
File
 ├── Block 0: Header (magic, root block id, next block id)
 └── Block 1..N: Node (id, parent, keyCount, keys, values, children)

- keys: occupied prefix keys[:KeyCount] in ascending order
- values: parallel to keys, every node carries values (plain B-tree, not B+)
- internal nodes: children[:KeyCount+1] are non-null block ids
- leaf nodes: children[0] == 0
- block ids come from Header.NextID and are never reused

*/
package btree

import (
	diskmanager "BTreeIdx/storage_engine/disk_manager"
	"BTreeIdx/types"
	"errors"

	"go.uber.org/zap"
)

const (
	Degree      = 10           // minimal degree T
	MaxKeys     = 2*Degree - 1 // 19
	MaxChildren = 2 * Degree   // 20
	MinKeys     = Degree - 1   // 9, every node but the root
	medianIndex = Degree - 1   // slot promoted by a split
)

var (
	ErrInvalidMagic = errors.New("invalid header magic")
	ErrCorruptNode  = errors.New("corrupt node")
	ErrNullBlock    = errors.New("null block id")
	ErrEmptyTree    = errors.New("tree is empty")
	ErrKeyNotFound  = errors.New("key not found")
	ErrInvariant    = errors.New("b-tree invariant violated")
)

// Header is the singleton record stored in block 0.
type Header struct {
	RootID types.BlockID // NullBlock when the tree is empty
	NextID types.BlockID // next block id to hand out, starts at 1
}

// Node is the in-memory copy of one node block. It is a plain value: mutating
// a Node never touches the file until writeNode is called on it.
type Node struct {
	ID       types.BlockID
	ParentID types.BlockID // informational, traversal is always root-down
	KeyCount int

	Keys     [MaxKeys]uint64
	Values   [MaxKeys]uint64
	Children [MaxChildren]types.BlockID
}

// Config holds the engine knobs. The zero value works: no cache, no logging.
type Config struct {
	CacheCapacity int64 // decoded nodes kept in memory, <= 0 disables the cache
	Logger        *zap.Logger
}

type BTree struct {
	disk   *diskmanager.DiskManager // owned by the caller
	header Header
	cache  *NodeCache
	logger *zap.Logger
}
