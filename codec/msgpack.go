package codec

import (
	"bytes"
	"fmt"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack is a Codec that serializes values using vmihailenco/msgpack/v5.
// The zero value is ready to use.
//
// Decoding into a concrete V restores exact Go types. Decoding into an
// interface uses loose rules: integers come back as int64/uint64, floats as
// float64, typed slices as []any, maps whose keys are all strings as
// map[string]any and any other map as map[any]any with loosely decoded keys.
// A Set decodes as an AnySet. Pattern, BigInt and Error keep their identity
// either way.
type Msgpack[V any] struct{}

var _ Codec[struct{}] = Msgpack[struct{}]{}

func (Msgpack[V]) WireTag() byte { return TagMsgpack }

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.GetEncoder()
	defer msgpack.PutEncoder(enc)

	enc.Reset(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode rejects input with bytes left over after the first value.
func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	r := bytes.NewReader(b)
	dec := msgpack.GetDecoder()
	defer msgpack.PutDecoder(dec)

	dec.Reset(r)
	dec.UseLooseInterfaceDecoding(true)
	dec.SetMapDecoder(decodeLooseMap)
	if err := dec.Decode(&v); err != nil {
		return v, err
	}
	if n := r.Len(); n != 0 {
		var zero V
		return zero, fmt.Errorf("msgpack: %d trailing bytes", n)
	}
	return v, nil
}

// decodeLooseMap is the interface map decoder. Reset clears it, so Decode
// installs it after every Reset.
func decodeLooseMap(d *msgpack.Decoder) (any, error) {
	n, err := d.DecodeMapLen()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	keys := make([]any, n)
	vals := make([]any, n)
	stringKeys := true
	for i := 0; i < n; i++ {
		k, err := d.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		if k != nil && !reflect.TypeOf(k).Comparable() {
			return nil, fmt.Errorf("msgpack: unhashable map key %T", k)
		}
		if _, ok := k.(string); !ok {
			stringKeys = false
		}
		v, err := d.DecodeInterfaceLoose()
		if err != nil {
			return nil, err
		}
		keys[i], vals[i] = k, v
	}
	if stringKeys {
		m := make(map[string]any, n)
		for i, k := range keys {
			m[k.(string)] = vals[i]
		}
		return m, nil
	}
	m := make(map[any]any, n)
	for i, k := range keys {
		m[k] = vals[i]
	}
	return m, nil
}
