package codec

import (
	"fmt"
	"regexp"

	"github.com/fxamacker/cbor/v2"
)

// IANA-registered CBOR tags used for the extended shapes.
const (
	cborTagObject uint64 = 27  // [typename, args...]
	cborTagRegexp uint64 = 35  // regular expression source
	cborTagSet    uint64 = 258 // mathematical finite set
)

var cborNull = []byte{0xf6}

func isCBORNil(data []byte) bool {
	return len(data) == 1 && (data[0] == 0xf6 || data[0] == 0xf7)
}

func untag(data []byte, want uint64) (cbor.RawMessage, error) {
	var raw cbor.RawTag
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw.Number != want {
		return nil, fmt.Errorf("cbor: tag %d, want %d", raw.Number, want)
	}
	return raw.Content, nil
}

func (s Set[T]) MarshalCBOR() ([]byte, error) {
	if s.m == nil {
		return cborNull, nil
	}
	return cbor.Marshal(cbor.Tag{Number: cborTagSet, Content: s.Values()})
}

func (s *Set[T]) UnmarshalCBOR(data []byte) error {
	if isCBORNil(data) {
		*s = Set[T]{}
		return nil
	}
	content, err := untag(data, cborTagSet)
	if err != nil {
		return err
	}
	var items []T
	if err := cbor.Unmarshal(content, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}

func (p *Pattern) MarshalCBOR() ([]byte, error) {
	if p == nil {
		return cborNull, nil
	}
	if p.Regexp == nil {
		return nil, fmt.Errorf("pattern: %w", errEmptyShape)
	}
	return cbor.Marshal(cbor.Tag{Number: cborTagRegexp, Content: p.String()})
}

func (p *Pattern) UnmarshalCBOR(data []byte) error {
	content, err := untag(data, cborTagRegexp)
	if err != nil {
		return err
	}
	var expr string
	if err := cbor.Unmarshal(content, &expr); err != nil {
		return err
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("pattern: %w", err)
	}
	p.Regexp = re
	return nil
}

func (b *BigInt) MarshalCBOR() ([]byte, error) {
	if b == nil {
		return cborNull, nil
	}
	return cbor.Marshal(&b.Int)
}

func (b *BigInt) UnmarshalCBOR(data []byte) error {
	return cbor.Unmarshal(data, &b.Int)
}

func (e *Error) MarshalCBOR() ([]byte, error) {
	if e == nil {
		return cborNull, nil
	}
	return cbor.Marshal(cbor.Tag{Number: cborTagObject, Content: []string{e.Name, e.Message}})
}

func (e *Error) UnmarshalCBOR(data []byte) error {
	content, err := untag(data, cborTagObject)
	if err != nil {
		return err
	}
	var parts []string
	if err := cbor.Unmarshal(content, &parts); err != nil {
		return err
	}
	if len(parts) != 2 {
		return fmt.Errorf("error value: %w", errEmptyShape)
	}
	e.Name, e.Message = parts[0], parts[1]
	return nil
}
