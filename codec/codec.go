// Package codec turns cached values into bytes and back.
//
// Msgpack is the default codec. Unlike a text encoding it keeps byte slices,
// times, maps with non-string keys, sets, regular expressions, big integers
// and errors intact across a round trip. Funcs, channels and other values
// that have no serialized form make Encode fail instead of being dropped.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Tagger is implemented by codecs that stamp their payloads with a family tag.
// Entries written by one family are rejected by another instead of being
// misread.
type Tagger interface {
	WireTag() byte
}

const (
	TagOpaque byte = iota // codec does not implement Tagger
	TagMsgpack
	TagCBOR
	TagProtobuf
	TagBytes
	TagString
)

// TagOf returns c's wire tag, or TagOpaque.
func TagOf(c any) byte {
	if t, ok := c.(Tagger); ok {
		return t.WireTag()
	}
	return TagOpaque
}
