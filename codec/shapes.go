package codec

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"math/big"
	"reflect"
	"regexp"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

// Msgpack extension ids owned by this package.
const (
	ExtPattern int8 = 17
	ExtBigInt  int8 = 18
	ExtError   int8 = 19
	ExtSet     int8 = 20
)

func init() {
	msgpack.RegisterExt(ExtPattern, (*Pattern)(nil))
	msgpack.RegisterExt(ExtBigInt, (*BigInt)(nil))
	msgpack.RegisterExt(ExtError, (*Error)(nil))
	// Decoder only: a registered encoder would need addressable values.
	msgpack.RegisterExtDecoder(ExtSet, AnySet{}, func(d *msgpack.Decoder, v reflect.Value, _ int) error {
		var s AnySet
		if err := s.decodeBody(d); err != nil {
			return err
		}
		v.Set(reflect.ValueOf(s))
		return nil
	})
}

var errEmptyShape = errors.New("codec: empty value")

// Set is an unordered collection of unique elements. Two sets holding the
// same elements are equal regardless of insertion order. The zero value is an
// empty set and encodes as nil.
type Set[T comparable] struct {
	m map[T]struct{}
}

// AnySet is what a Set becomes when decoded into an interface.
type AnySet = Set[any]

func NewSet[T comparable](items ...T) Set[T] {
	s := Set[T]{m: make(map[T]struct{}, len(items))}
	for _, it := range items {
		s.m[it] = struct{}{}
	}
	return s
}

func (s *Set[T]) Add(v T) {
	if s.m == nil {
		s.m = make(map[T]struct{})
	}
	s.m[v] = struct{}{}
}

func (s Set[T]) Has(v T) bool {
	_, ok := s.m[v]
	return ok
}

func (s Set[T]) Len() int { return len(s.m) }

// All yields the elements in no particular order.
func (s Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range s.m {
			if !yield(v) {
				return
			}
		}
	}
}

func (s Set[T]) Values() []T {
	out := make([]T, 0, len(s.m))
	for v := range s.m {
		out = append(out, v)
	}
	return out
}

// Equal reports whether both sets hold the same elements.
func (s Set[T]) Equal(o Set[T]) bool {
	if len(s.m) != len(o.m) {
		return false
	}
	for k := range s.m {
		if _, ok := o.m[k]; !ok {
			return false
		}
	}
	return true
}

func (s Set[T]) String() string { return fmt.Sprintf("Set%v", s.Values()) }

// EncodeMsgpack writes the set as an ExtSet extension wrapping an array. The
// elements are sorted by their encoded form so equal sets encode identically.
func (s Set[T]) EncodeMsgpack(enc *msgpack.Encoder) error {
	if s.m == nil {
		return enc.EncodeNil()
	}
	items := make([][]byte, 0, len(s.m))
	for v := range s.m {
		b, err := marshalSorted(v)
		if err != nil {
			return err
		}
		items = append(items, b)
	}
	slices.SortFunc(items, bytes.Compare)

	var body bytes.Buffer
	hdr := msgpack.NewEncoder(&body)
	if err := hdr.EncodeArrayLen(len(items)); err != nil {
		return err
	}
	for _, b := range items {
		body.Write(b)
	}
	if err := enc.EncodeExtHeader(ExtSet, body.Len()); err != nil {
		return err
	}
	return enc.Encode(msgpack.RawMessage(body.Bytes()))
}

func (s *Set[T]) DecodeMsgpack(dec *msgpack.Decoder) error {
	id, _, err := dec.DecodeExtHeader()
	if err != nil {
		return err
	}
	if id != ExtSet {
		return fmt.Errorf("set: ext id %d, want %d", id, ExtSet)
	}
	return s.decodeBody(dec)
}

func (s *Set[T]) decodeBody(dec *msgpack.Decoder) error {
	n, err := dec.DecodeArrayLen()
	if err != nil {
		return err
	}
	if n < 0 {
		*s = Set[T]{}
		return nil
	}
	out := Set[T]{m: make(map[T]struct{}, n)}
	for i := 0; i < n; i++ {
		var v T
		if err := dec.Decode(&v); err != nil {
			return err
		}
		if !isHashable(v) {
			return fmt.Errorf("set: unhashable element %T", v)
		}
		out.m[v] = struct{}{}
	}
	*s = out
	return nil
}

func marshalSorted(v any) ([]byte, error) {
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

func isHashable(v any) bool {
	return v == nil || reflect.TypeOf(v).Comparable()
}

// Pattern is a serializable regular expression. Only the source expression
// is stored; it is recompiled on decode.
type Pattern struct {
	*regexp.Regexp
}

func NewPattern(expr string) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Pattern{Regexp: re}, nil
}

// MustPattern is like NewPattern but panics on a bad expression.
func MustPattern(expr string) *Pattern {
	return &Pattern{Regexp: regexp.MustCompile(expr)}
}

func (p *Pattern) MarshalMsgpack() ([]byte, error) {
	if p.Regexp == nil {
		return nil, fmt.Errorf("pattern: %w", errEmptyShape)
	}
	return []byte(p.String()), nil
}

func (p *Pattern) UnmarshalMsgpack(b []byte) error {
	re, err := regexp.Compile(string(b))
	if err != nil {
		return fmt.Errorf("pattern: %w", err)
	}
	p.Regexp = re
	return nil
}

// BigInt is an arbitrary-precision integer.
type BigInt struct {
	big.Int
}

func NewBigInt(x *big.Int) *BigInt {
	b := new(BigInt)
	b.Set(x)
	return b
}

func BigIntFromInt64(v int64) *BigInt {
	b := new(BigInt)
	b.SetInt64(v)
	return b
}

// MarshalMsgpack writes a sign byte followed by the big-endian magnitude.
func (b *BigInt) MarshalMsgpack() ([]byte, error) {
	mag := b.Int.Bytes()
	out := make([]byte, 1, 1+len(mag))
	if b.Sign() < 0 {
		out[0] = 1
	}
	return append(out, mag...), nil
}

func (b *BigInt) UnmarshalMsgpack(data []byte) error {
	if len(data) == 0 || data[0] > 1 {
		return fmt.Errorf("bigint: %w", errEmptyShape)
	}
	b.SetBytes(data[1:])
	if data[0] == 1 {
		b.Neg(&b.Int)
	}
	return nil
}

// Error is a serializable error value. Name records the original dynamic
// type so callers can tell different failures apart after a round trip.
type Error struct {
	Name    string
	Message string
}

// ErrorOf captures err as an *Error. It returns nil for a nil error.
func ErrorOf(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return &Error{Name: e.Name, Message: e.Message}
	}
	return &Error{Name: fmt.Sprintf("%T", err), Message: err.Error()}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) MarshalMsgpack() ([]byte, error) {
	return msgpack.Marshal([2]string{e.Name, e.Message})
}

func (e *Error) UnmarshalMsgpack(b []byte) error {
	var parts [2]string
	if err := msgpack.Unmarshal(b, &parts); err != nil {
		return fmt.Errorf("error value: %w", err)
	}
	e.Name, e.Message = parts[0], parts[1]
	return nil
}
