package btree

import (
	diskmanager "BTreeIdx/storage_engine/disk_manager"
	"BTreeIdx/types"
	"cmp"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"testing"
)

type testTree struct {
	*BTree
	disk *diskmanager.DiskManager
	path string
}

func newTestTree(t *testing.T, cacheCapacity int64) *testTree {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.idx")
	disk, err := diskmanager.Create(path)
	if err != nil {
		t.Fatalf("Failed to create index file: %v", err)
	}
	tree, err := Init(disk, Config{CacheCapacity: cacheCapacity})
	if err != nil {
		t.Fatalf("Failed to init tree: %v", err)
	}
	tt := &testTree{BTree: tree, disk: disk, path: path}
	t.Cleanup(func() {
		tt.BTree.Close()
		tt.disk.Close()
	})
	return tt
}

// reopen closes the tree and loads it again from the file, without a cache.
func (tt *testTree) reopen(t *testing.T) {
	t.Helper()
	tt.BTree.Close()
	tt.disk.Close()

	disk, err := diskmanager.Open(tt.path)
	if err != nil {
		t.Fatalf("Failed to reopen index file: %v", err)
	}
	tree, err := Open(disk, Config{})
	if err != nil {
		t.Fatalf("Failed to reopen tree: %v", err)
	}
	tt.BTree, tt.disk = tree, disk
}

func (tt *testTree) mustVerify(t *testing.T) Stats {
	t.Helper()
	stats, err := tt.Verify()
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return stats
}

func keysOf(pairs []types.Pair) []uint64 {
	out := make([]uint64, len(pairs))
	for i, p := range pairs {
		out[i] = p.Key
	}
	return out
}

func TestEmptyTree(t *testing.T) {
	tt := newTestTree(t, 0)

	if _, err := tt.Search(1); !errors.Is(err, ErrEmptyTree) {
		t.Errorf("Expected ErrEmptyTree, got %v", err)
	}
	pairs, err := tt.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("Expected no entries, got %v", pairs)
	}
	if h, _ := tt.Height(); h != 0 {
		t.Errorf("Expected height 0, got %d", h)
	}
	if hdr := tt.Header(); hdr != NewHeader() {
		t.Errorf("Unexpected header %+v", hdr)
	}
	tt.mustVerify(t)

	tt.reopen(t)
	if !tt.IsEmpty() {
		t.Errorf("Reopened tree should be empty")
	}
}

// Keys 1..25 overflow the root leaf exactly once.
func TestSequentialInsertSplitsRootOnce(t *testing.T) {
	tt := newTestTree(t, 0)
	for k := uint64(1); k <= 25; k++ {
		if err := tt.Insert(k, k*10); err != nil {
			t.Fatalf("Insert %d: %v", k, err)
		}
	}

	v, err := tt.Search(13)
	if err != nil {
		t.Fatalf("Search 13: %v", err)
	}
	if v != 130 {
		t.Errorf("Expected 130, got %d", v)
	}

	pairs, err := tt.Collect()
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(pairs) != 25 {
		t.Fatalf("Expected 25 entries, got %d", len(pairs))
	}
	for i, p := range pairs {
		if p.Key != uint64(i+1) || p.Value != p.Key*10 {
			t.Fatalf("Entry %d: got %v", i, p)
		}
	}

	// block 1 = first root, 2 = grown root, 3 = sibling
	hdr := tt.Header()
	if hdr.RootID != 2 || hdr.NextID != 4 {
		t.Fatalf("Expected root 2 and next 4, got %+v", hdr)
	}
	root, err := tt.readNode(hdr.RootID)
	if err != nil {
		t.Fatal(err)
	}
	if root.KeyCount != 1 || root.Keys[0] != 10 || root.Values[0] != 100 {
		t.Errorf("Expected root to hold only the median 10, got %v", root.Pairs())
	}
	if got := root.ChildIDs(); !slices.Equal(got, []types.BlockID{1, 3}) {
		t.Errorf("Expected children [1 3], got %v", got)
	}

	left, _ := tt.readNode(1)
	right, _ := tt.readNode(3)
	if !slices.Equal(keysOf(left.Pairs()), []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9}) {
		t.Errorf("Unexpected left leaf %v", keysOf(left.Pairs()))
	}
	for i := left.KeyCount; i < MaxKeys; i++ {
		if left.Keys[i] != 0 || left.Values[i] != 0 {
			t.Errorf("Left leaf slot %d not zeroed after split", i)
		}
	}
	if right.KeyCount != 15 || right.Keys[0] != 11 || right.Keys[14] != 25 {
		t.Errorf("Unexpected right leaf %v", keysOf(right.Pairs()))
	}
	if left.ParentID != 2 || right.ParentID != 2 {
		t.Errorf("Expected both leaves to name parent 2, got %d and %d", left.ParentID, right.ParentID)
	}

	stats := tt.mustVerify(t)
	if stats.Height != 2 || stats.Nodes != 3 || stats.Keys != 25 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestInsertSearchRandomOrder(t *testing.T) {
	for _, tc := range []struct {
		name  string
		cache int64
	}{
		{"no cache", 0},
		{"small cache", 8},
		{"large cache", 4096},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tt := newTestTree(t, tc.cache)
			r := rand.New(rand.NewPCG(7, 11))
			keys := r.Perm(3000)

			for _, k := range keys {
				// even keys only, odd keys stay absent
				if err := tt.Insert(uint64(2*k), uint64(k)+1); err != nil {
					t.Fatalf("Insert %d: %v", 2*k, err)
				}
			}

			stats := tt.mustVerify(t)
			if stats.Keys != len(keys) || stats.Duplicates != 0 {
				t.Fatalf("Unexpected stats %+v", stats)
			}

			for _, k := range keys {
				v, err := tt.Search(uint64(2 * k))
				if err != nil {
					t.Fatalf("Search %d: %v", 2*k, err)
				}
				if v != uint64(k)+1 {
					t.Fatalf("Search %d: expected %d, got %d", 2*k, k+1, v)
				}
			}
			for _, k := range []uint64{1, 777, 5999, 6000, 1 << 40} {
				if _, err := tt.Search(k); !errors.Is(err, ErrKeyNotFound) {
					t.Errorf("Search %d: expected ErrKeyNotFound, got %v", k, err)
				}
			}

			pairs, err := tt.Collect()
			if err != nil {
				t.Fatal(err)
			}
			if !slices.IsSortedFunc(pairs, func(a, b types.Pair) int { return cmp.Compare(a.Key, b.Key) }) {
				t.Errorf("Traversal is not ascending")
			}
		})
	}
}

func TestDescendingInsertKeepsInvariants(t *testing.T) {
	tt := newTestTree(t, 64)
	for k := uint64(5000); k > 0; k-- {
		if err := tt.Insert(k, k); err != nil {
			t.Fatalf("Insert %d: %v", k, err)
		}
		if k%1000 == 0 {
			tt.mustVerify(t)
		}
	}
	stats := tt.mustVerify(t)
	if stats.Keys != 5000 {
		t.Errorf("Expected 5000 keys, got %d", stats.Keys)
	}
	if stats.Height < 3 || stats.Height > 4 {
		t.Errorf("Unexpected height %d for 5000 keys", stats.Height)
	}
	if int(stats.NextID)-1 != stats.Nodes {
		t.Errorf("Every allocated block should be a live node: next=%d nodes=%d", stats.NextID, stats.Nodes)
	}
}

func TestReopenPersistsTree(t *testing.T) {
	tt := newTestTree(t, 128)
	r := rand.New(rand.NewPCG(1, 2))
	for _, k := range r.Perm(500) {
		if err := tt.Insert(uint64(k), uint64(k)*3); err != nil {
			t.Fatal(err)
		}
	}
	before, err := tt.Collect()
	if err != nil {
		t.Fatal(err)
	}
	hdr := tt.Header()

	tt.reopen(t)

	if tt.Header() != hdr {
		t.Errorf("Header changed across reopen: %+v vs %+v", hdr, tt.Header())
	}
	after, err := tt.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(before, after) {
		t.Errorf("Traversal differs after reopen")
	}

	// keep growing the reopened tree
	if err := tt.Insert(10_000, 1); err != nil {
		t.Fatal(err)
	}
	if v, err := tt.Search(10_000); err != nil || v != 1 {
		t.Errorf("Search after reopen insert: %d, %v", v, err)
	}
	tt.mustVerify(t)
}

func TestDuplicateKeysAreKept(t *testing.T) {
	tt := newTestTree(t, 0)
	for _, p := range []types.Pair{{Key: 5, Value: 1}, {Key: 3, Value: 2}, {Key: 5, Value: 3}} {
		if err := tt.Insert(p.Key, p.Value); err != nil {
			t.Fatal(err)
		}
	}

	pairs, err := tt.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(keysOf(pairs), []uint64{3, 5, 5}) {
		t.Errorf("Expected keys [3 5 5], got %v", keysOf(pairs))
	}
	// equal keys insert after the existing one
	if pairs[1].Value != 1 || pairs[2].Value != 3 {
		t.Errorf("Unexpected duplicate order %v", pairs)
	}
	if v, err := tt.Search(5); err != nil || v != 1 {
		t.Errorf("Search should find the first 5: got %d, %v", v, err)
	}

	stats := tt.mustVerify(t)
	if stats.Duplicates != 1 {
		t.Errorf("Expected 1 duplicate, got %d", stats.Duplicates)
	}
}

func TestReadNodeRejectsBadIDs(t *testing.T) {
	tt := newTestTree(t, 0)
	if err := tt.Insert(1, 1); err != nil {
		t.Fatal(err)
	}

	if _, err := tt.readNode(types.NullBlock); !errors.Is(err, ErrNullBlock) {
		t.Errorf("Expected ErrNullBlock, got %v", err)
	}
	if _, err := tt.readNode(tt.Header().NextID); !errors.Is(err, ErrCorruptNode) {
		t.Errorf("Expected ErrCorruptNode for unallocated id, got %v", err)
	}

	// a block whose stored id disagrees with its position
	n := newNode(5, 0)
	if err := tt.disk.WriteBlock(1, encodeNode(n)); err != nil {
		t.Fatal(err)
	}
	if _, err := tt.readNode(1); !errors.Is(err, ErrCorruptNode) {
		t.Errorf("Expected ErrCorruptNode for mismatched id, got %v", err)
	}
}

func TestOpenRejectsForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "foreign.idx")
	disk, err := diskmanager.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer disk.Close()
	if err := disk.WriteBlock(0, []byte("NOTMAGIC")); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(disk, Config{}); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("Expected ErrInvalidMagic, got %v", err)
	}
}

func TestSplitChildRequiresFullChild(t *testing.T) {
	tt := newTestTree(t, 0)
	parent := newNode(1, 0)
	child := newNode(2, 1)
	child.KeyCount = 3
	if err := tt.splitChild(parent, 0, child); !errors.Is(err, ErrInvariant) {
		t.Errorf("Expected ErrInvariant, got %v", err)
	}
}

func TestChecksumIsStable(t *testing.T) {
	a := newTestTree(t, 0)
	b := newTestTree(t, 32)
	r := rand.New(rand.NewPCG(3, 4))
	keys := r.Perm(400)

	for _, k := range keys {
		if err := a.Insert(uint64(k), uint64(k)+9); err != nil {
			t.Fatal(err)
		}
	}
	// same entries, different insertion order, different node layout
	slices.Sort(keys)
	for _, k := range keys {
		if err := b.Insert(uint64(k), uint64(k)+9); err != nil {
			t.Fatal(err)
		}
	}

	sumA1, nA, err := a.Checksum()
	if err != nil {
		t.Fatal(err)
	}
	sumA2, _, _ := a.Checksum()
	sumB, nB, _ := b.Checksum()

	if sumA1 != sumA2 {
		t.Errorf("Checksum changed between runs: %x vs %x", sumA1, sumA2)
	}
	if sumA1 != sumB || nA != nB || nA != 400 {
		t.Errorf("Same entries should hash equal: %x/%d vs %x/%d", sumA1, nA, sumB, nB)
	}

	if err := b.Insert(1000, 1); err != nil {
		t.Fatal(err)
	}
	if sumB2, _, _ := b.Checksum(); sumB2 == sumB {
		t.Errorf("Checksum did not change after insert")
	}
}
