package btree

import (
	"BTreeIdx/types"
	"bytes"
	"encoding/binary"
	"fmt"
)

/*
Header layout (24 bytes, zero padded to a block by the disk manager):

	magic   [8]byte  "4348PRJ3"
	root    uint64   big-endian
	next    uint64   big-endian

The magic is the only structural validity check for the whole file.
*/

const HeaderSize = 24

var Magic = [8]byte{'4', '3', '4', '8', 'P', 'R', 'J', '3'}

// NewHeader is the header of a freshly created, empty index.
func NewHeader() Header {
	return Header{RootID: types.NullBlock, NextID: 1}
}

func encodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:8], Magic[:])
	binary.BigEndian.PutUint64(buf[8:16], uint64(h.RootID))
	binary.BigEndian.PutUint64(buf[16:24], uint64(h.NextID))
	return buf
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("header is %d bytes: %w", len(buf), ErrInvalidMagic)
	}
	if !bytes.Equal(buf[0:8], Magic[:]) {
		return Header{}, fmt.Errorf("got %q: %w", buf[0:8], ErrInvalidMagic)
	}
	return Header{
		RootID: types.BlockID(binary.BigEndian.Uint64(buf[8:16])),
		NextID: types.BlockID(binary.BigEndian.Uint64(buf[16:24])),
	}, nil
}
