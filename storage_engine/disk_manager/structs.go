package diskmanager

import (
	"errors"
	"os"

	"go.uber.org/zap"
)

var (
	ErrTruncatedBlock   = errors.New("truncated block")
	ErrOversizedPayload = errors.New("payload exceeds block size")
	ErrClosed           = errors.New("disk manager is closed")
)

// ############################################# DISK MANAGER #############################################

// DiskManager owns the single index file and moves whole blocks in and out of it.
type DiskManager struct {
	file     *os.File
	filePath string
	logger   *zap.Logger
	syncEach bool // fsync after every WriteBlock
}

// Option tweaks a DiskManager at construction time.
type Option func(*DiskManager)

func WithLogger(l *zap.Logger) Option {
	return func(dm *DiskManager) {
		if l != nil {
			dm.logger = l.Named("diskmanager")
		}
	}
}

func WithSyncEveryWrite(on bool) Option {
	return func(dm *DiskManager) { dm.syncEach = on }
}
