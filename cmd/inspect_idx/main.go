// Inspect a B-tree index file (.idx).
// Usage: go run ./cmd/inspect_idx <path-to-.idx>
// Example: go run ./cmd/inspect_idx data/sample.idx
package main

import (
	"fmt"
	"os"

	indexfile "BTreeIdx/storage_engine/access/indexfile_manager"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <index.idx>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s data/sample.idx\n", os.Args[0])
		os.Exit(1)
	}
	if err := inspect(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func inspect(path string) error {
	f, err := indexfile.OpenIndex(path, indexfile.DefaultOptions())
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Inspect(os.Stdout); err != nil {
		return err
	}
	if _, err := f.Verify(); err != nil {
		return fmt.Errorf("structure check failed: %w", err)
	}
	return nil
}
