package resultcache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/resultcache/codec"
	"github.com/unkn0wn-root/resultcache/internal/keys"
	"github.com/unkn0wn-root/resultcache/store"
	rs "github.com/unkn0wn-root/resultcache/store/redis"
)

// Cache is the result cache seen by the ORM. V is the cached value type.
// Serialization is handled by a pluggable codec.Codec[V].
//
// Get and Set never report errors: a failing store or an undecodable entry
// reads as a miss, and a write that cannot happen is dropped. Failures are
// logged and passed to Hooks.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	// Set writes value under key. origin names the producer (e.g. the entity)
	// and only shows up in diagnostics. ttl 0 uses Options.Expiration and a
	// negative ttl writes without expiry.
	Set(ctx context.Context, key string, value V, origin string, ttl time.Duration)
	Remove(ctx context.Context, key string) error
	// Clear deletes every key of the namespace.
	Clear(ctx context.Context) error
	// Close is idempotent; only the first call reaches the store.
	Close(ctx context.Context) error

	Namespace() string
	State() State
	// WaitReady blocks until the store is confirmed, the cache is closed or ctx ends.
	WaitReady(ctx context.Context) error
}

type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	// NoExpiration passed as ttl to Set writes an entry that never expires.
	NoExpiration time.Duration = -1

	DefaultKeyPrefix          = keys.Default
	DefaultReadyProbeInterval = 250 * time.Millisecond
)

// Connection selects where entries live. It is one of ClientConfig,
// ConnectionConfig or StoreConfig.
type Connection interface {
	connection()
}

// ClientConfig adopts a go-redis client the application already has.
// The client is closed by Close unless LeaveOpen is set.
type ClientConfig struct {
	Client goredis.UniversalClient
	// KeyPrefix declares a prefix the client's keys already live under.
	// When set it becomes the namespace and Options.KeyPrefix is ignored.
	KeyPrefix string
	LeaveOpen bool
}

// ConnectionConfig describes a Redis connection the cache builds and owns.
type ConnectionConfig rs.ConnConfig

// StoreConfig plugs in any store, e.g. an in-process one.
type StoreConfig struct {
	Store store.Store
}

func (ClientConfig) connection()     {}
func (ConnectionConfig) connection() {}
func (StoreConfig) connection()      {}

// Options configure a Cache. Only Connection is required.
type Options[V any] struct {
	Connection Connection

	Codec      codec.Codec[V] // nil => codec.Msgpack[V]
	Expiration time.Duration  // applied when Set gets ttl 0; 0 => no expiry
	KeyPrefix  string         // namespace; "" => DefaultKeyPrefix
	Debug      bool           // log every operation at debug level

	Logger             Logger        // if nil, NopLogger is used
	Hooks              Hooks         // if nil, NopHooks is used
	ReadyProbeInterval time.Duration // 0 => DefaultReadyProbeInterval
}

// Validate reports the first invalid field as a *ConfigError.
func (o Options[V]) Validate() error {
	switch conn := o.Connection.(type) {
	case nil:
		return &ConfigError{Field: "Connection", Message: "required"}
	case ClientConfig:
		if conn.Client == nil {
			return &ConfigError{Field: "Connection.Client", Message: "required"}
		}
	case *ClientConfig:
		if conn == nil || conn.Client == nil {
			return &ConfigError{Field: "Connection.Client", Message: "required"}
		}
	case StoreConfig:
		if conn.Store == nil {
			return &ConfigError{Field: "Connection.Store", Message: "required"}
		}
	case *StoreConfig:
		if conn == nil || conn.Store == nil {
			return &ConfigError{Field: "Connection.Store", Message: "required"}
		}
	case *ConnectionConfig:
		if conn == nil {
			return &ConfigError{Field: "Connection", Message: "required"}
		}
	}
	if o.Expiration < 0 {
		return &ConfigError{Field: "Expiration", Message: "must not be negative"}
	}
	if o.ReadyProbeInterval < 0 {
		return &ConfigError{Field: "ReadyProbeInterval", Message: "must not be negative"}
	}
	return nil
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
