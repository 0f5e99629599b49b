package btree

import (
	"BTreeIdx/types"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Checksum hashes the in-order entry stream with xxhash64. Each entry is fed
// as 16 big-endian bytes (key then value), so two files holding the same
// entries in the same order hash equal no matter how their nodes are laid out.
func (t *BTree) Checksum() (sum uint64, count int, err error) {
	d := xxhash.New()
	var rec [16]byte
	err = t.Traverse(func(p types.Pair) error {
		binary.BigEndian.PutUint64(rec[0:8], p.Key)
		binary.BigEndian.PutUint64(rec[8:16], p.Value)
		_, werr := d.Write(rec[:])
		count++
		return werr
	})
	if err != nil {
		return 0, 0, err
	}
	return d.Sum64(), count, nil
}
