package indexfile

import (
	"BTreeIdx/storage_engine/access/indexfile_manager/btree"
	diskmanager "BTreeIdx/storage_engine/disk_manager"
	"BTreeIdx/types"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"

	"go.uber.org/zap"
)

/*
This file is the main file for the Index File Manager.
It is the only entry point collaborators (CLI, CSV import/export) use:
existence checks happen here before anything is opened or written,
then every operation is routed into the B-tree engine, which talks to
the disk manager block by block.

Two forms are offered:
  CreateIndex/OpenIndex return a handle for sessions that run many operations.
  Create/Insert/Search/Traverse/BulkLoad take a path and open, run, close.
*/

// CreateIndex creates a new index file holding an empty tree. An existing
// path is left untouched and reported as ErrAlreadyExists.
func CreateIndex(path string, opts Options) (*IndexFile, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}

	disk, err := diskmanager.Create(path, diskOptions(opts)...)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, path)
		}
		return nil, err
	}

	tree, err := btree.Init(disk, treeConfig(opts))
	if err != nil {
		disk.Close()
		os.Remove(path)
		return nil, fmt.Errorf("failed to initialize %s: %w", path, err)
	}

	f := newIndexFile(path, disk, tree, opts)
	f.logger.Info("created index", zap.String("path", path))
	return f, nil
}

// OpenIndex opens an existing index file and loads its header.
func OpenIndex(path string, opts Options) (*IndexFile, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	disk, err := diskmanager.Open(path, diskOptions(opts)...)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}

	tree, err := btree.Open(disk, treeConfig(opts))
	if err != nil {
		disk.Close()
		if errors.Is(err, btree.ErrInvalidMagic) || errors.Is(err, diskmanager.ErrTruncatedBlock) {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidFormat, path, err)
		}
		return nil, err
	}

	return newIndexFile(path, disk, tree, opts), nil
}

func newIndexFile(path string, disk *diskmanager.DiskManager, tree *btree.BTree, opts Options) *IndexFile {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexFile{
		path:   path,
		disk:   disk,
		tree:   tree,
		logger: logger.Named("indexfile").With(zap.String("path", path)),
	}
}

func diskOptions(opts Options) []diskmanager.Option {
	return []diskmanager.Option{
		diskmanager.WithLogger(opts.Logger),
		diskmanager.WithSyncEveryWrite(opts.SyncEveryWrite),
	}
}

func treeConfig(opts Options) btree.Config {
	return btree.Config{CacheCapacity: opts.CacheCapacity, Logger: opts.Logger}
}

func (f *IndexFile) Path() string {
	return f.path
}

func (f *IndexFile) Header() btree.Header {
	return f.tree.Header()
}

func (f *IndexFile) Insert(key, value uint64) error {
	if err := f.tree.Insert(key, value); err != nil {
		return fmt.Errorf("insert %d into %s: %w", key, f.path, err)
	}
	return nil
}

// Search returns the value stored for key, or ErrEmptyTree / ErrKeyNotFound.
func (f *IndexFile) Search(key uint64) (uint64, error) {
	return f.tree.Search(key)
}

// Traverse visits every entry in ascending key order.
func (f *IndexFile) Traverse(visit func(types.Pair) error) error {
	return f.tree.Traverse(visit)
}

// All is the lazy form of Traverse; every range over it starts from the root.
func (f *IndexFile) All() iter.Seq2[types.Pair, error] {
	return f.tree.All()
}

// BulkLoad inserts pairs in input order. The header is re-read from disk after
// every insert so root changes are always picked up. Duplicates are inserted
// as they come. It returns how many pairs were inserted before any error.
func (f *IndexFile) BulkLoad(pairs iter.Seq2[types.Pair, error]) (int, error) {
	loaded := 0
	for p, err := range pairs {
		if err != nil {
			return loaded, err
		}
		if err := f.tree.Insert(p.Key, p.Value); err != nil {
			return loaded, fmt.Errorf("bulk load %s: pair %d (%v): %w", f.path, loaded+1, p, err)
		}
		if err := f.tree.ReloadHeader(); err != nil {
			return loaded, fmt.Errorf("bulk load %s: %w", f.path, err)
		}
		loaded++
	}
	f.logger.Debug("bulk load finished", zap.Int("pairs", loaded))
	return loaded, nil
}

// Inspect writes a level-by-level dump of the tree to w.
func (f *IndexFile) Inspect(w io.Writer) error {
	return f.tree.InspectTo(w)
}

// Verify checks the structural invariants of the whole tree.
func (f *IndexFile) Verify() (btree.Stats, error) {
	return f.tree.Verify()
}

// Checksum hashes the ordered entry stream, see btree.Checksum.
func (f *IndexFile) Checksum() (uint64, int, error) {
	return f.tree.Checksum()
}

func (f *IndexFile) Stats() (Stats, error) {
	s, err := f.tree.Verify()
	if err != nil {
		return Stats{}, err
	}
	size, err := f.disk.Size()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Stats: s, FileSize: size, Cache: f.tree.CacheStats()}, nil
}

// Close releases the cache and syncs and closes the file.
func (f *IndexFile) Close() error {
	if f.tree == nil {
		return nil
	}
	f.tree.Close()
	f.tree = nil
	return f.disk.Close()
}
