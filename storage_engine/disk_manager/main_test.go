package diskmanager

import (
	"BTreeIdx/types"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestDiskManagerBasicOperations tests block write, read back and persistence
func TestDiskManagerBasicOperations(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "test_index.idx")

	dm, err := Create(indexPath)
	if err != nil {
		t.Fatalf("Failed to create disk manager: %v", err)
	}
	defer dm.Close()

	payload := []byte("Hello, Block Store!")
	if err := dm.WriteBlock(3, payload); err != nil {
		t.Fatalf("Failed to write block: %v", err)
	}

	got, err := dm.ReadBlock(3)
	if err != nil {
		t.Fatalf("Failed to read block: %v", err)
	}
	if len(got) != types.BlockSize {
		t.Fatalf("Expected %d bytes, got %d", types.BlockSize, len(got))
	}
	if !bytes.Equal(got[:len(payload)], payload) {
		t.Errorf("Data mismatch: expected %q, got %q", payload, got[:len(payload)])
	}
	for i := len(payload); i < types.BlockSize; i++ {
		if got[i] != 0 {
			t.Fatalf("Expected zero padding at byte %d, got %x", i, got[i])
		}
	}

	n, err := dm.NumBlocks()
	if err != nil {
		t.Fatalf("NumBlocks: %v", err)
	}
	if n != 4 {
		t.Errorf("Expected 4 blocks after writing block 3, got %d", n)
	}

	// Close and reopen to test persistence
	if err := dm.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	reopened, err := Open(indexPath)
	if err != nil {
		t.Fatalf("Failed to reopen: %v", err)
	}
	defer reopened.Close()

	persisted, err := reopened.ReadBlock(3)
	if err != nil {
		t.Fatalf("Failed to read persisted block: %v", err)
	}
	if !bytes.Equal(got, persisted) {
		t.Errorf("Block not persisted correctly")
	}
}

func TestReadBlockTruncated(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "short.idx")
	if err := os.WriteFile(indexPath, make([]byte, types.BlockSize+100), 0644); err != nil {
		t.Fatal(err)
	}

	dm, err := Open(indexPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer dm.Close()

	if _, err := dm.ReadBlock(0); err != nil {
		t.Fatalf("Block 0 is complete, got %v", err)
	}
	if _, err := dm.ReadBlock(1); !errors.Is(err, ErrTruncatedBlock) {
		t.Errorf("Expected ErrTruncatedBlock for partial block, got %v", err)
	}
	if _, err := dm.ReadBlock(7); !errors.Is(err, ErrTruncatedBlock) {
		t.Errorf("Expected ErrTruncatedBlock past end of file, got %v", err)
	}
}

func TestWriteBlockOversized(t *testing.T) {
	dm, err := Create(filepath.Join(t.TempDir(), "big.idx"))
	if err != nil {
		t.Fatal(err)
	}
	defer dm.Close()

	if err := dm.WriteBlock(1, make([]byte, types.BlockSize)); err != nil {
		t.Fatalf("Exactly BlockSize must be accepted: %v", err)
	}
	if err := dm.WriteBlock(1, make([]byte, types.BlockSize+1)); !errors.Is(err, ErrOversizedPayload) {
		t.Errorf("Expected ErrOversizedPayload, got %v", err)
	}
}

func TestCreateExistingAndOpenMissing(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "exists.idx")
	if err := os.WriteFile(existing, []byte("keep me"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Create(existing); !errors.Is(err, os.ErrExist) {
		t.Errorf("Expected os.ErrExist, got %v", err)
	}
	data, _ := os.ReadFile(existing)
	if string(data) != "keep me" {
		t.Errorf("Existing file was modified: %q", data)
	}

	if _, err := Open(filepath.Join(dir, "missing.idx")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestUseAfterClose(t *testing.T) {
	dm, err := Create(filepath.Join(t.TempDir(), "closed.idx"), WithSyncEveryWrite(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := dm.WriteBlock(0, []byte{1}); err != nil {
		t.Fatalf("WriteBlock with sync: %v", err)
	}
	if err := dm.Close(); err != nil {
		t.Fatal(err)
	}
	if err := dm.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
	if _, err := dm.ReadBlock(0); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
	if err := dm.WriteBlock(0, nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed, got %v", err)
	}
}
