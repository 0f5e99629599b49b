package indexfile

import (
	"BTreeIdx/types"
	"iter"
)

/*
One-shot operations on a path. Each call opens the file, runs one operation
and closes it again, so nothing is shared between calls.
*/

// Create writes a fresh index file at path.
func Create(path string) error {
	f, err := CreateIndex(path, DefaultOptions())
	if err != nil {
		return err
	}
	return f.Close()
}

func Insert(path string, key, value uint64) (err error) {
	f, err := OpenIndex(path, DefaultOptions())
	if err != nil {
		return err
	}
	defer closeInto(f, &err)
	return f.Insert(key, value)
}

func Search(path string, key uint64) (uint64, error) {
	f, err := OpenIndex(path, DefaultOptions())
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.Search(key)
}

// Traverse returns the ascending entry sequence of the index at path. The
// file is opened when ranging starts and closed when it ends, so the
// sequence can be ranged over any number of times.
func Traverse(path string) iter.Seq2[types.Pair, error] {
	return func(yield func(types.Pair, error) bool) {
		f, err := OpenIndex(path, DefaultOptions())
		if err != nil {
			yield(types.Pair{}, err)
			return
		}
		defer f.Close()
		for p, err := range f.All() {
			if !yield(p, err) {
				return
			}
		}
	}
}

func BulkLoad(path string, pairs iter.Seq2[types.Pair, error]) (n int, err error) {
	f, err := OpenIndex(path, DefaultOptions())
	if err != nil {
		return 0, err
	}
	defer closeInto(f, &err)
	return f.BulkLoad(pairs)
}

// Pairs adapts a slice to the sequence type BulkLoad takes.
func Pairs(pairs []types.Pair) iter.Seq2[types.Pair, error] {
	return func(yield func(types.Pair, error) bool) {
		for _, p := range pairs {
			if !yield(p, nil) {
				return
			}
		}
	}
}

// closeInto closes f and reports its error unless one is already set.
func closeInto(f *IndexFile, err *error) {
	if cerr := f.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
