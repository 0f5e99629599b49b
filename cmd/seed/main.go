// Seed program: creates an index file and fills it with random pairs.
// Run: go run ./cmd/seed -o data/sample.idx -n 500
// Then inspect: go run ./cmd/inspect_idx data/sample.idx
package main

import (
	indexfile "BTreeIdx/storage_engine/access/indexfile_manager"
	"BTreeIdx/types"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-faker/faker/v4"
	"go.uber.org/zap"
)

func main() {
	out := flag.String("o", "data/sample.idx", "index file to create")
	n := flag.Int("n", 500, "number of pairs to insert")
	maxKey := flag.Int("max", 1_000_000, "largest key generated")
	force := flag.Bool("f", false, "replace an existing file")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		logger = zap.Must(zap.NewDevelopment())
	}
	defer logger.Sync()

	if *force {
		os.Remove(*out)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("mkdir: %v", err)
	}

	count, err := seed(*out, *n, *maxKey, logger)
	if err != nil {
		log.Fatalf("seed %s: %v", *out, err)
	}
	fmt.Printf("Inserted %d pairs into %s\n", count, *out)
}

// seed creates path and bulk loads n pairs with random keys in [1, maxKey].
// Each value is the key's insertion position.
func seed(path string, n, maxKey int, logger *zap.Logger) (int, error) {
	keys, err := faker.RandomInt(1, maxKey, n)
	if err != nil {
		return 0, fmt.Errorf("generate keys: %w", err)
	}

	opts := indexfile.DefaultOptions()
	opts.Logger = logger
	f, err := indexfile.CreateIndex(path, opts)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	pairs := func(yield func(types.Pair, error) bool) {
		for i, k := range keys {
			if !yield(types.Pair{Key: uint64(k), Value: uint64(i + 1)}, nil) {
				return
			}
		}
	}
	count, err := f.BulkLoad(pairs)
	if err != nil {
		return count, err
	}
	if _, err := f.Verify(); err != nil {
		return count, err
	}
	return count, f.Close()
}
