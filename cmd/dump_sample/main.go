// dump_sample builds a small sample index and writes its inspection dump, a
// structure check and the CSV extract to cmd/sample_run_output.txt.
// Run from repo root: go run ./cmd/dump_sample
package main

import (
	csvio "BTreeIdx/csv_io"
	indexfile "BTreeIdx/storage_engine/access/indexfile_manager"
	"BTreeIdx/types"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-faker/faker/v4"
)

const (
	sampleDir   = "data/sample_run"
	outputFile  = "cmd/sample_run_output.txt"
	samplePairs = 60
)

func main() {
	outPath := outputFile
	// If run from cmd/dump_sample, output next to binary
	if _, err := os.Stat("cmd"); os.IsNotExist(err) {
		outPath = "sample_run_output.txt"
	}

	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// Clean previous run so the sample starts fresh
	dir := filepath.Join(repoRoot(), sampleDir)
	os.RemoveAll(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}

	if err := dump(f, dir); err != nil {
		fmt.Fprintf(f, "dump error: %v\n", err)
		fmt.Fprintf(os.Stderr, "dump error: %v\n", err)
	}
	fmt.Printf("Output written to %s\n", outPath)
}

func dump(w io.Writer, dir string) error {
	idxPath := filepath.Join(dir, "sample.idx")
	csvPath := filepath.Join(dir, "sample.csv")

	keys, err := faker.RandomInt(1, 999, samplePairs)
	if err != nil {
		return err
	}
	pairs := make([]types.Pair, len(keys))
	for i, k := range keys {
		pairs[i] = types.Pair{Key: uint64(k), Value: uint64(k) * 100}
	}

	// 1) Build the index
	fmt.Fprintf(w, "========== SEED (%d random pairs into %s) ==========\n", len(pairs), idxPath)
	if err := indexfile.Create(idxPath); err != nil {
		return err
	}
	n, err := indexfile.BulkLoad(idxPath, indexfile.Pairs(pairs))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "inserted %d pairs\n", n)

	idx, err := indexfile.OpenIndex(idxPath, indexfile.DefaultOptions())
	if err != nil {
		return err
	}
	defer idx.Close()

	// 2) Dump the tree
	fmt.Fprintln(w, "\n========== INSPECT sample.idx ==========")
	if err := idx.Inspect(w); err != nil {
		fmt.Fprintf(w, "inspect error: %v\n", err)
	}

	// 3) Structure check
	fmt.Fprintln(w, "\n========== VERIFY ==========")
	s, err := idx.Stats()
	if err != nil {
		fmt.Fprintf(w, "verify error: %v\n", err)
	} else {
		fmt.Fprintf(w, "height=%d nodes=%d leaves=%d keys=%d duplicates=%d file=%d bytes\n",
			s.Height, s.Nodes, s.Leaves, s.Keys, s.Duplicates, s.FileSize)
	}

	// 4) Extract
	fmt.Fprintln(w, "\n========== EXTRACT sample.csv ==========")
	if _, err := csvio.Export(csvPath, idx.All()); err != nil {
		return err
	}
	data, err := os.ReadFile(csvPath)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func repoRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
