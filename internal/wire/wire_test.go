package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func mustDecode(t *testing.T, tag byte, b []byte) []byte {
	t.Helper()
	p, err := Decode(tag, b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return p
}

func TestRoundTripEmptyAndNonEmpty(t *testing.T) {
	cases := []struct {
		tag     byte
		payload []byte
	}{
		{0, nil},
		{1, []byte("hello")},
		{255, []byte{0, 1, 2, 3, 4}},
	}
	for _, tc := range cases {
		enc := Encode(tc.tag, tc.payload)
		p := mustDecode(t, tc.tag, enc)
		if !bytes.Equal(p, tc.payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, tc.payload)
		}
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := Encode(1, []byte("x"))
	enc = append(enc, 0xDE, 0xAD)
	if _, err := Decode(1, enc); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on trailing bytes, got %v", err)
	}
}

func TestRejectsForeignBytes(t *testing.T) {
	for _, b := range [][]byte{nil, []byte("test"), []byte("RSLT"), []byte(`{"a":1}`)} {
		if _, err := Decode(1, b); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("Decode(%q): expected ErrCorrupt, got %v", b, err)
		}
	}
}

func TestCorruptHeadersAndLengths(t *testing.T) {
	enc := Encode(1, []byte("abc"))

	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, err := Decode(1, badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, err := Decode(1, badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// vlen lives at 6..10 (4 magic +1 ver +1 codec)
	tooLong := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(tooLong[6:10], uint32(len("abc")+1))
	if _, err := Decode(1, tooLong); err == nil {
		t.Fatalf("expected error on vlen beyond buffer")
	}

	if _, err := Decode(1, enc[:len(enc)-1]); err == nil {
		t.Fatalf("expected error on truncated buffer")
	}
}

func TestCodecMismatch(t *testing.T) {
	enc := Encode(2, []byte("abc"))
	_, err := Decode(1, enc)
	if !errors.Is(err, ErrCodecMismatch) {
		t.Fatalf("expected ErrCodecMismatch, got %v", err)
	}
}

func TestZeroCopyPayload(t *testing.T) {
	enc := Encode(1, []byte("Z"))
	p := mustDecode(t, 1, enc)
	p[0] = 'Q'
	if p2 := mustDecode(t, 1, enc); p2[0] != 'Q' {
		t.Fatalf("expected zero-copy slice into enc buffer")
	}
}
