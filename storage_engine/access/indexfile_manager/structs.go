package indexfile

import (
	"BTreeIdx/storage_engine/access/indexfile_manager/btree"
	diskmanager "BTreeIdx/storage_engine/disk_manager"
	"errors"

	"go.uber.org/zap"
)

var (
	ErrAlreadyExists = errors.New("file already exists")
	ErrFileNotFound  = errors.New("file not found")
	ErrInvalidFormat = errors.New("invalid index file")

	// logical results, passed through from the engine
	ErrEmptyTree   = btree.ErrEmptyTree
	ErrKeyNotFound = btree.ErrKeyNotFound
)

const DefaultCacheCapacity = 256 // nodes

// Options configures how an index file is opened.
type Options struct {
	CacheCapacity  int64 // decoded nodes cached in memory, 0 disables
	SyncEveryWrite bool  // fsync after each block write
	Logger         *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		CacheCapacity: DefaultCacheCapacity,
		Logger:        zap.NewNop(),
	}
}

// IndexFile is one open index: the file handle plus the tree living in it.
// It is not safe for concurrent use.
type IndexFile struct {
	path   string
	disk   *diskmanager.DiskManager
	tree   *btree.BTree
	logger *zap.Logger
}

// Stats describes an open index file.
type Stats struct {
	btree.Stats
	FileSize int64
	Cache    btree.CacheStats
}
