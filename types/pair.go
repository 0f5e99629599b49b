package types

import "strconv"

// Pair is a single key/value entry stored in the index.
type Pair struct {
	Key   uint64
	Value uint64
}

// String renders the pair the way the print command does: "key: value".
func (p Pair) String() string {
	return strconv.FormatUint(p.Key, 10) + ": " + strconv.FormatUint(p.Value, 10)
}
