package resultcache

import (
	"errors"
	"fmt"
)

var (
	// ErrNotReady is reported while the store connection has not been confirmed.
	ErrNotReady = errors.New("resultcache: store not ready")
	// ErrClosed is reported after Close.
	ErrClosed = errors.New("resultcache: closed")
)

// EncodeError means a value has no serialized form (func, channel, ...).
type EncodeError struct {
	Key string
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %q: %v", e.Key, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError means stored bytes are not valid output of the configured codec.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError is a failure of the store itself. Op is one of
// "get", "set", "del", "scan", "close".
type TransportError struct {
	Op  string
	Key string
	Err error
}

func (e *TransportError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// CacheRemoveError is returned by Remove. Err is a *TransportError, ErrNotReady or ErrClosed.
type CacheRemoveError struct {
	Key string
	Err error
}

func (e *CacheRemoveError) Error() string {
	return fmt.Sprintf("remove %q: %v", e.Key, e.Err)
}

func (e *CacheRemoveError) Unwrap() error { return e.Err }

// ClearError is returned by Clear. Err is a *TransportError, ErrNotReady or ErrClosed.
type ClearError struct {
	Namespace string
	Err       error
}

func (e *ClearError) Error() string {
	return fmt.Sprintf("clear %q: %v", e.Namespace, e.Err)
}

func (e *ClearError) Unwrap() error { return e.Err }

// ConfigError reports an invalid Options field.
type ConfigError struct {
	Field   string
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resultcache: %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("resultcache: %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }
