package diskmanager

import (
	"BTreeIdx/types"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

/*
This is main file for disk manager
It owns:
The file descriptor (os.File) of one index file
Reading/writing raw blocks at id * BlockSize (ReadAt, WriteAt)
Exact block size enforcement: reads must return a full block, writes are zero padded

There is no free list and no indirection table; block ids are file offset multipliers.
Allocation of ids is the tree header's job, not ours.
*/

// Create makes a new, empty index file. It fails if path already exists.
func Create(path string, opts ...Option) (*DiskManager, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create index file %s: %w", path, err)
	}
	return newDiskManager(file, path, opts), nil
}

// Open opens an existing index file for reading and writing.
func Open(path string, opts ...Option) (*DiskManager, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file %s: %w", path, err)
	}
	return newDiskManager(file, path, opts), nil
}

func newDiskManager(file *os.File, path string, opts []Option) *DiskManager {
	dm := &DiskManager{
		file:     file,
		filePath: path,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(dm)
	}
	dm.logger.Debug("opened index file", zap.String("path", path))
	return dm
}

// ReadBlock returns exactly BlockSize bytes stored at block id.
func (dm *DiskManager) ReadBlock(id types.BlockID) ([]byte, error) {
	if dm.file == nil {
		return nil, ErrClosed
	}

	buf := make([]byte, types.BlockSize)
	n, err := dm.file.ReadAt(buf, id.Offset())
	if n < types.BlockSize {
		if err == nil || err == io.EOF {
			return nil, fmt.Errorf("block %d: read %d of %d bytes: %w", id, n, types.BlockSize, ErrTruncatedBlock)
		}
		return nil, fmt.Errorf("failed to read block %d: %w", id, err)
	}
	return buf, nil
}

// WriteBlock stores payload at block id, zero padded to BlockSize.
func (dm *DiskManager) WriteBlock(id types.BlockID, payload []byte) error {
	if dm.file == nil {
		return ErrClosed
	}
	if len(payload) > types.BlockSize {
		return fmt.Errorf("block %d: %d bytes (max %d): %w", id, len(payload), types.BlockSize, ErrOversizedPayload)
	}

	block := make([]byte, types.BlockSize)
	copy(block, payload)
	if _, err := dm.file.WriteAt(block, id.Offset()); err != nil {
		return fmt.Errorf("failed to write block %d: %w", id, err)
	}
	if dm.syncEach {
		return dm.Sync()
	}
	return nil
}

// NumBlocks is the number of whole blocks currently in the file.
func (dm *DiskManager) NumBlocks() (int64, error) {
	size, err := dm.Size()
	if err != nil {
		return 0, err
	}
	return size / types.BlockSize, nil
}

// Size is the file size in bytes.
func (dm *DiskManager) Size() (int64, error) {
	if dm.file == nil {
		return 0, ErrClosed
	}
	stat, err := dm.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat index file: %w", err)
	}
	return stat.Size(), nil
}

func (dm *DiskManager) Path() string {
	return dm.filePath
}

// Sync flushes all pending writes to disk
func (dm *DiskManager) Sync() error {
	if dm.file == nil {
		return ErrClosed
	}
	return dm.file.Sync()
}

// Close syncs and closes the file. Closing twice is a no-op.
func (dm *DiskManager) Close() error {
	if dm.file == nil {
		return nil
	}

	err := dm.file.Sync()
	if err != nil {
		dm.file.Close()
		dm.file = nil
		return fmt.Errorf("failed to sync before close: %w", err)
	}

	err = dm.file.Close()
	dm.file = nil
	dm.logger.Debug("closed index file", zap.String("path", dm.filePath))
	return err
}
