package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	version byte = 1
	hdrLen       = 4 + 1 + 1 + 4
)

var (
	ErrCorrupt       = errors.New("resultcache: corrupt entry")
	ErrCodecMismatch = errors.New("resultcache: entry written by a different codec")
	magic4           = [...]byte{'R', 'S', 'L', 'T'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames a codec payload.
//
//	magic(4) | ver(1) | codec(1) | vlen(u32 be) | payload(vlen)
func Encode(codec byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdrLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(codec)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode validates the frame and returns the payload as a subslice of b.
// Trailing bytes, truncation, unknown versions and a codec tag other than
// the expected one are rejected.
func Decode(codec byte, b []byte) ([]byte, error) {
	if len(b) < hdrLen || !hasMagic(b) || b[4] != version {
		return nil, ErrCorrupt
	}
	if b[5] != codec {
		return nil, fmt.Errorf("%w: tag %d, want %d", ErrCodecMismatch, b[5], codec)
	}
	vlen := int(binary.BigEndian.Uint32(b[6:hdrLen]))
	if vlen < 0 || vlen != len(b)-hdrLen {
		return nil, ErrCorrupt
	}
	return b[hdrLen:], nil
}
