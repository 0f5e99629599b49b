package btree

import (
	diskmanager "BTreeIdx/storage_engine/disk_manager"
	"BTreeIdx/types"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

/*
All block traffic of the engine goes through this file.
readNode is the only way to dereference a block id, so the null sentinel and
ids the allocator never handed out are rejected in one place.
writeNode and saveHeader are write-through: the block hits the file before
they return and the cached copy is dropped.
*/

func (t *BTree) readNode(id types.BlockID) (*Node, error) {
	if id.IsNull() {
		return nil, ErrNullBlock
	}
	if id >= t.header.NextID {
		return nil, fmt.Errorf("block %d is beyond the allocator (next %d): %w", id, t.header.NextID, ErrCorruptNode)
	}

	if n, ok := t.cache.Get(id); ok {
		return n, nil
	}

	buf, err := t.disk.ReadBlock(id)
	if err != nil {
		return nil, fmt.Errorf("failed to read node %d: %w", id, err)
	}
	n, err := decodeNode(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode node %d: %w", id, err)
	}
	if n.ID != id {
		return nil, fmt.Errorf("block %d holds node id %d: %w", id, n.ID, ErrCorruptNode)
	}

	t.cache.Put(n)
	return n, nil
}

func (t *BTree) writeNode(n *Node) error {
	t.cache.Invalidate(n.ID)
	if err := mustWrite(t.disk.WriteBlock(n.ID, encodeNode(n))); err != nil {
		return fmt.Errorf("failed to write node %d: %w", n.ID, err)
	}
	return nil
}

func (t *BTree) saveHeader() error {
	if err := mustWrite(t.disk.WriteBlock(types.HeaderBlock, encodeHeader(t.header))); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	return nil
}

// allocate hands out the next block id. The new value of NextID only becomes
// durable with the next saveHeader.
func (t *BTree) allocate() types.BlockID {
	id := t.header.NextID
	t.header.NextID++
	t.logger.Debug("allocated block", zap.Stringer("id", id))
	return id
}

// mustWrite panics on an oversized payload: the codecs produce fixed sizes
// that always fit, so hitting it means the layout constants are broken.
func mustWrite(err error) error {
	if errors.Is(err, diskmanager.ErrOversizedPayload) {
		panic(err)
	}
	return err
}
