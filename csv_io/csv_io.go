// Package csvio reads and writes key/value pairs as CSV records, one
// "key,value" pair per line in decimal. Paths ending in .sz are snappy framed
// streams holding the same CSV text.
package csvio

import (
	"BTreeIdx/types"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strconv"
	"strings"

	"github.com/golang/snappy"
)

const SnappyExt = ".sz"

var (
	ErrCSVNotFound     = errors.New("csv file not found")
	ErrOutputExists    = errors.New("output file already exists")
	ErrMalformedRecord = errors.New("malformed csv record")
)

func compressed(path string) bool {
	return strings.HasSuffix(path, SnappyExt)
}

// CheckSource fails with ErrCSVNotFound when path does not exist.
func CheckSource(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrCSVNotFound, path)
	}
	return nil
}

// CheckSink fails with ErrOutputExists when path already exists.
func CheckSink(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrOutputExists, path)
	}
	return nil
}

// ReadPairs parses CSV records from r. Blank lines are skipped, surrounding
// spaces in a field are ignored and fields after the second are ignored.
// The first bad record ends the sequence with an ErrMalformedRecord.
func ReadPairs(r io.Reader) iter.Seq2[types.Pair, error] {
	return func(yield func(types.Pair, error) bool) {
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.ReuseRecord = true

		for {
			rec, err := cr.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(types.Pair{}, fmt.Errorf("%w: %w", ErrMalformedRecord, err))
				return
			}
			line, _ := cr.FieldPos(0)

			p, err := parseRecord(rec)
			if err != nil {
				yield(types.Pair{}, fmt.Errorf("line %d: %w", line, err))
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func parseRecord(rec []string) (types.Pair, error) {
	if len(rec) < 2 {
		return types.Pair{}, fmt.Errorf("%w: want key,value, got %d field(s)", ErrMalformedRecord, len(rec))
	}
	key, err := strconv.ParseUint(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil {
		return types.Pair{}, fmt.Errorf("%w: key: %w", ErrMalformedRecord, err)
	}
	value, err := strconv.ParseUint(strings.TrimSpace(rec[1]), 10, 64)
	if err != nil {
		return types.Pair{}, fmt.Errorf("%w: value: %w", ErrMalformedRecord, err)
	}
	return types.Pair{Key: key, Value: value}, nil
}

// WritePairs writes each pair as a "key,value" record and returns how many
// were written.
func WritePairs(w io.Writer, pairs iter.Seq2[types.Pair, error]) (int, error) {
	cw := csv.NewWriter(w)
	n := 0
	rec := make([]string, 2)
	for p, err := range pairs {
		if err != nil {
			return n, err
		}
		rec[0] = strconv.FormatUint(p.Key, 10)
		rec[1] = strconv.FormatUint(p.Value, 10)
		if err := cw.Write(rec); err != nil {
			return n, err
		}
		n++
	}
	cw.Flush()
	return n, cw.Error()
}

// Import streams the pairs stored at path. The file is opened when ranging
// starts and closed when it stops.
func Import(path string) iter.Seq2[types.Pair, error] {
	return func(yield func(types.Pair, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				err = fmt.Errorf("%w: %s", ErrCSVNotFound, path)
			}
			yield(types.Pair{}, err)
			return
		}
		defer f.Close()

		var r io.Reader = f
		if compressed(path) {
			r = snappy.NewReader(f)
		}
		for p, err := range ReadPairs(r) {
			if err != nil {
				err = fmt.Errorf("%s: %w", path, err)
			}
			if !yield(p, err) {
				return
			}
		}
	}
}

// ReadAll parses every record of the file at path. Nothing is returned unless
// the whole file is valid.
func ReadAll(path string) ([]types.Pair, error) {
	var pairs []types.Pair
	for p, err := range Import(path) {
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	return pairs, nil
}

// Export writes pairs to a new file at path. An existing file is never
// overwritten. On failure the partial output is removed.
func Export(path string, pairs iter.Seq2[types.Pair, error]) (n int, err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, fmt.Errorf("%w: %s", ErrOutputExists, path)
		}
		return 0, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if !compressed(path) {
		return WritePairs(f, pairs)
	}

	sw := snappy.NewBufferedWriter(f)
	n, err = WritePairs(sw, pairs)
	if cerr := sw.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return n, err
}
