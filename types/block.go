package types

import "strconv"

const (
	BlockSize   = 512 // every block, header included
	HeaderBlock = BlockID(0)
)

// BlockID addresses a fixed-size block in an index file. The byte offset of a
// block is id * BlockSize. Id 0 is the header block and doubles as the null
// child pointer, so it never names a node.
type BlockID uint64

const NullBlock BlockID = 0

// IsNull reports whether id is the null sentinel.
func (id BlockID) IsNull() bool {
	return id == NullBlock
}

// Offset returns the byte offset of the block within the file.
func (id BlockID) Offset() int64 {
	return int64(id) * BlockSize
}

func (id BlockID) String() string {
	return "#" + strconv.FormatUint(uint64(id), 10)
}
