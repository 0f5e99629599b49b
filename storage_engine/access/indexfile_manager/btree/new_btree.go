package btree

import (
	diskmanager "BTreeIdx/storage_engine/disk_manager"
	"BTreeIdx/types"
	"fmt"

	"go.uber.org/zap"
)

// Init writes the header of an empty tree into block 0 of disk and returns the
// tree. disk is expected to be a freshly created file.
func Init(disk *diskmanager.DiskManager, cfg Config) (*BTree, error) {
	t, err := newBTree(disk, cfg)
	if err != nil {
		return nil, err
	}
	t.header = NewHeader()
	if err := t.saveHeader(); err != nil {
		t.cache.Close()
		return nil, fmt.Errorf("Init: %w", err)
	}
	t.logger.Debug("initialized empty tree", zap.String("path", disk.Path()))
	return t, nil
}

// Open decodes the header from block 0 of disk. A missing or foreign magic
// fails with ErrInvalidMagic.
func Open(disk *diskmanager.DiskManager, cfg Config) (*BTree, error) {
	t, err := newBTree(disk, cfg)
	if err != nil {
		return nil, err
	}
	if err := t.ReloadHeader(); err != nil {
		t.cache.Close()
		return nil, err
	}
	t.logger.Debug("loaded tree",
		zap.String("path", disk.Path()),
		zap.Stringer("root", t.header.RootID),
		zap.Stringer("next", t.header.NextID))
	return t, nil
}

func newBTree(disk *diskmanager.DiskManager, cfg Config) (*BTree, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, err := NewNodeCache(cfg.CacheCapacity, logger)
	if err != nil {
		return nil, err
	}
	return &BTree{
		disk:   disk,
		cache:  cache,
		logger: logger.Named("btree"),
	}, nil
}

// ReloadHeader re-reads block 0, discarding the in-memory header.
func (t *BTree) ReloadHeader() error {
	buf, err := t.disk.ReadBlock(types.HeaderBlock)
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	h, err := decodeHeader(buf)
	if err != nil {
		return fmt.Errorf("failed to decode header: %w", err)
	}
	t.header = h
	return nil
}

// Header returns a copy of the current header.
func (t *BTree) Header() Header {
	return t.header
}

// IsEmpty reports whether the tree holds no entries.
func (t *BTree) IsEmpty() bool {
	return t.header.RootID.IsNull()
}

// CacheStats reports node cache hits and misses since the tree was opened.
func (t *BTree) CacheStats() CacheStats {
	return t.cache.Stats()
}

// Close releases the node cache. The disk manager belongs to the caller and
// stays open.
func (t *BTree) Close() error {
	t.cache.Close()
	t.cache = nil
	return nil
}
