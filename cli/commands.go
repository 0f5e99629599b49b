package cli

import (
	csvio "BTreeIdx/csv_io"
	indexfile "BTreeIdx/storage_engine/access/indexfile_manager"
	"BTreeIdx/types"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
)

// open opens the index at path with the flags given to Run.
func (c *Cli) open(path string) (*indexfile.IndexFile, error) {
	return indexfile.OpenIndex(path, c.opts)
}

// withIndex runs fn on the opened index and closes it again, keeping the
// first error.
func (c *Cli) withIndex(path string, fn func(f *indexfile.IndexFile) error) (err error) {
	f, err := c.open(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(f)
}

func (c *Cli) create(args []string) error {
	f, err := indexfile.CreateIndex(args[0], c.opts)
	if err != nil {
		return &pathError{path: args[0], err: err}
	}
	if err := f.Close(); err != nil {
		return err
	}
	c.green.Fprintf(c.out, "Created index file %s.\n", args[0])
	return nil
}

func (c *Cli) insert(args []string) error {
	key, err := parseUint("key", args[1])
	if err != nil {
		return err
	}
	value, err := parseUint("value", args[2])
	if err != nil {
		return err
	}
	err = c.withIndex(args[0], func(f *indexfile.IndexFile) error {
		if err := f.Insert(key, value); err != nil {
			return err
		}
		c.green.Fprintf(c.out, "Inserted %s.\n", types.Pair{Key: key, Value: value})
		return nil
	})
	if errors.Is(err, indexfile.ErrFileNotFound) {
		return fmt.Errorf("%w: %w", errNoSuchFile, err)
	}
	return err
}

func (c *Cli) search(args []string) error {
	key, err := parseUint("key", args[1])
	if err != nil {
		return err
	}
	return c.withIndex(args[0], func(f *indexfile.IndexFile) error {
		value, err := f.Search(key)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, types.Pair{Key: key, Value: value})
		return nil
	})
}

func (c *Cli) print(args []string) error {
	return c.withIndex(args[0], func(f *indexfile.IndexFile) error {
		return f.Traverse(func(p types.Pair) error {
			_, err := fmt.Fprintln(c.out, p)
			return err
		})
	})
}

func (c *Cli) extract(args []string) error {
	index, out := args[0], args[1]
	return c.withIndex(index, func(f *indexfile.IndexFile) error {
		if err := csvio.CheckSink(out); err != nil {
			return &pathError{path: out, err: err}
		}
		n, err := csvio.Export(out, f.All())
		if err != nil {
			return &pathError{path: out, err: err}
		}
		c.green.Fprintf(c.out, "Extracted %s pairs to %s.\n", humanize.Comma(int64(n)), out)
		return nil
	})
}

func (c *Cli) load(args []string) error {
	index, src := args[0], args[1]
	return c.withIndex(index, func(f *indexfile.IndexFile) error {
		if err := csvio.CheckSource(src); err != nil {
			return err
		}
		pairs, err := csvio.ReadAll(src)
		if err != nil {
			return err
		}
		n, err := f.BulkLoad(indexfile.Pairs(pairs))
		if err != nil {
			return fmt.Errorf("loaded %d pairs before failing: %w", n, err)
		}
		c.green.Fprintf(c.out, "Loaded %s pairs from %s.\n", humanize.Comma(int64(n)), src)
		return nil
	})
}

func (c *Cli) inspect(args []string) error {
	return c.withIndex(args[0], func(f *indexfile.IndexFile) error {
		return f.Inspect(c.out)
	})
}

func (c *Cli) verify(args []string) error {
	return c.withIndex(args[0], func(f *indexfile.IndexFile) error {
		s, err := f.Verify()
		if err != nil {
			return err
		}
		c.green.Fprintf(c.out, "OK: %s keys in %s nodes, height %d.\n",
			humanize.Comma(int64(s.Keys)), humanize.Comma(int64(s.Nodes)), s.Height)
		return nil
	})
}

func (c *Cli) checksum(args []string) error {
	return c.withIndex(args[0], func(f *indexfile.IndexFile) error {
		sum, n, err := f.Checksum()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "xxhash64 %016x over %s pairs\n", sum, humanize.Comma(int64(n)))
		return nil
	})
}

func (c *Cli) stats(args []string) error {
	return c.withIndex(args[0], func(f *indexfile.IndexFile) error {
		s, err := f.Stats()
		if err != nil {
			return err
		}
		c.writeStats(s)
		return nil
	})
}

func (c *Cli) writeStats(s indexfile.Stats) {
	row := func(label, value string) {
		c.bold.Fprintf(c.out, "%-12s", label)
		fmt.Fprintln(c.out, value)
	}
	row("root", s.RootID.String())
	row("next id", s.NextID.String())
	row("height", fmt.Sprint(s.Height))
	row("nodes", humanize.Comma(int64(s.Nodes)))
	row("leaves", humanize.Comma(int64(s.Leaves)))
	row("keys", humanize.Comma(int64(s.Keys)))
	row("duplicates", humanize.Comma(int64(s.Duplicates)))
	row("file size", humanize.IBytes(uint64(s.FileSize)))
	row("cache", fmt.Sprintf("%d hits, %d misses (%.0f%%)", s.Cache.Hits, s.Cache.Misses, s.Cache.Ratio*100))
}
