package resultcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/resultcache/codec"
	"github.com/unkn0wn-root/resultcache/internal/keys"
	"github.com/unkn0wn-root/resultcache/internal/wire"
	"github.com/unkn0wn-root/resultcache/store"
	rs "github.com/unkn0wn-root/resultcache/store/redis"
)

type cache[V any] struct {
	store      store.Store
	ns         keys.Namespace
	codec      codec.Codec[V]
	tag        byte
	expiration time.Duration
	debug      bool
	log        Logger
	hooks      Hooks

	state     atomic.Int32
	ready     chan struct{} // closed on Ready
	closed    chan struct{} // closed on Close
	stopProbe context.CancelFunc
	probeDone chan struct{}
	closeOnce sync.Once
}

var _ Cache[struct{}] = (*cache[struct{}])(nil)

func newCache[V any](opts Options[V]) (*cache[V], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	st, err := openStore(opts.Connection)
	if err != nil {
		return nil, err
	}

	var storePrefix string
	if p, ok := st.(store.Prefixer); ok {
		storePrefix = p.KeyPrefix()
	}

	c := &cache[V]{
		store:      st,
		ns:         keys.Resolve(storePrefix, opts.KeyPrefix),
		expiration: opts.Expiration,
		debug:      opts.Debug,
		ready:      make(chan struct{}),
		closed:     make(chan struct{}),
		probeDone:  make(chan struct{}),
		stopProbe:  func() {},
	}

	// defaults
	c.codec = opts.Codec
	if c.codec == nil {
		c.codec = codec.Msgpack[V]{}
	}
	c.tag = codec.TagOf(c.codec)
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	every := coalesce(opts.ReadyProbeInterval, DefaultReadyProbeInterval)

	c.debugf("client created", Fields{
		"namespace":  c.ns.String(),
		"expiration": c.expiration,
		"codec":      fmt.Sprintf("%T", c.codec),
	})

	if p, ok := st.(store.Pinger); ok {
		ctx, cancel := context.WithCancel(context.Background())
		c.stopProbe = cancel
		go c.probe(ctx, p, every)
	} else {
		c.markReady()
		close(c.probeDone)
	}
	return c, nil
}

func openStore(conn Connection) (store.Store, error) {
	switch conn := conn.(type) {
	case *ClientConfig:
		return openStore(*conn)
	case *ConnectionConfig:
		return openStore(*conn)
	case *StoreConfig:
		return conn.Store, nil
	case ClientConfig:
		st, err := rs.New(rs.Config{
			Client:      conn.Client,
			KeyPrefix:   conn.KeyPrefix,
			CloseClient: !conn.LeaveOpen,
		})
		if err != nil {
			return nil, &ConfigError{Field: "Connection.Client", Message: "invalid client", Err: err}
		}
		return st, nil
	case ConnectionConfig:
		st, err := rs.Dial(rs.ConnConfig(conn))
		if err != nil {
			return nil, &ConfigError{Field: "Connection", Message: "invalid connection", Err: err}
		}
		return st, nil
	case StoreConfig:
		return conn.Store, nil
	default:
		return nil, &ConfigError{Field: "Connection", Message: fmt.Sprintf("unsupported %T", conn)}
	}
}

// probe pings until the store answers once. It never retries operations,
// it only decides when the cache starts serving them.
func (c *cache[V]) probe(ctx context.Context, p store.Pinger, every time.Duration) {
	defer close(c.probeDone)
	t := time.NewTicker(every)
	defer t.Stop()
	for attempt := 1; ; attempt++ {
		err := p.Ping(ctx)
		if err == nil {
			c.markReady()
			c.debugf("store ready", Fields{"namespace": c.ns.String(), "attempts": attempt})
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.debugf("store not ready", Fields{"namespace": c.ns.String(), "attempt": attempt, "err": err})
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func (c *cache[V]) markReady() {
	if c.state.CompareAndSwap(int32(StateUninitialized), int32(StateReady)) {
		close(c.ready)
	}
}

func (c *cache[V]) State() State { return State(c.state.Load()) }

func (c *cache[V]) Namespace() string { return c.ns.String() }

func (c *cache[V]) WaitReady(ctx context.Context) error {
	switch c.State() {
	case StateReady:
		return nil
	case StateClosed:
		return ErrClosed
	}
	select {
	case <-c.ready:
		if c.State() == StateClosed {
			return ErrClosed
		}
		return nil
	case <-c.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// gate fails fast unless the cache is Ready.
func (c *cache[V]) gate() error {
	switch c.State() {
	case StateReady:
		return nil
	case StateClosed:
		return ErrClosed
	default:
		return ErrNotReady
	}
}

func gateReason(err error) string {
	if errors.Is(err, ErrClosed) {
		return ReasonClosed
	}
	return ReasonNotReady
}

func (c *cache[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	k := c.ns.Key(key)
	if err := c.gate(); err != nil {
		c.debugf("get skipped", Fields{"key": k, "err": err})
		c.hook(func(h Hooks) { h.Miss(k, gateReason(err)) })
		return zero, false
	}

	raw, ok, err := c.store.Get(ctx, k)
	if err != nil {
		terr := &TransportError{Op: "get", Key: k, Err: err}
		c.warnf("get failed, treating as miss", Fields{"key": k, "err": terr})
		c.hook(func(h Hooks) { h.Miss(k, ReasonTransport) })
		return zero, false
	}
	if !ok {
		c.debugf("get miss", Fields{"key": k})
		c.hook(func(h Hooks) { h.Miss(k, ReasonAbsent) })
		return zero, false
	}

	v, err := c.decode(raw)
	if err != nil {
		derr := &DecodeError{Key: k, Err: err}
		c.warnf("get undecodable entry, treating as miss", Fields{"key": k, "err": derr})
		c.hook(func(h Hooks) { h.Miss(k, ReasonDecode) })
		return zero, false
	}
	c.debugf("get hit", Fields{"key": k, "bytes": len(raw)})
	c.hook(func(h Hooks) { h.Hit(k) })
	return v, true
}

func (c *cache[V]) Set(ctx context.Context, key string, value V, origin string, ttl time.Duration) {
	k := c.ns.Key(key)
	if err := c.gate(); err != nil {
		c.debugf("set skipped", Fields{"key": k, "origin": origin, "err": err})
		c.hook(func(h Hooks) { h.SetDropped(k, gateReason(err)) })
		return
	}

	raw, err := c.encode(value)
	if err != nil {
		eerr := &EncodeError{Key: k, Err: err}
		c.warnf("set skipped, value not serializable", Fields{"key": k, "origin": origin, "err": eerr})
		c.hook(func(h Hooks) { h.SetDropped(k, ReasonEncode) })
		return
	}

	ttl = c.ttl(ttl)
	if err := c.store.Set(ctx, k, raw, ttl); err != nil {
		if errors.Is(err, store.ErrRejected) {
			c.debugf("set rejected by store (pressure)", Fields{"key": k, "origin": origin})
			c.hook(func(h Hooks) { h.SetDropped(k, ReasonRejected) })
			return
		}
		terr := &TransportError{Op: "set", Key: k, Err: err}
		c.warnf("set failed", Fields{"key": k, "origin": origin, "err": terr})
		c.hook(func(h Hooks) { h.SetDropped(k, ReasonTransport) })
		return
	}
	c.debugf("set", Fields{"key": k, "origin": origin, "ttl": ttl, "bytes": len(raw)})
}

// ttl maps the Set argument to a store ttl; 0 from here means no expiry.
func (c *cache[V]) ttl(ttl time.Duration) time.Duration {
	switch {
	case ttl < 0:
		return 0
	case ttl == 0:
		return c.expiration
	default:
		return ttl
	}
}

func (c *cache[V]) Remove(ctx context.Context, key string) error {
	k := c.ns.Key(key)
	if err := c.gate(); err != nil {
		c.debugf("remove skipped", Fields{"key": k, "err": err})
		return &CacheRemoveError{Key: k, Err: err}
	}
	if err := c.store.Del(ctx, k); err != nil {
		rerr := &CacheRemoveError{Key: k, Err: &TransportError{Op: "del", Key: k, Err: err}}
		c.errorf("remove failed", Fields{"key": k, "err": rerr})
		c.hook(func(h Hooks) { h.RemoveFailed(k, rerr) })
		return rerr
	}
	c.debugf("removed", Fields{"key": k})
	return nil
}

// Clear collects every key of the namespace, then deletes them in one batch.
// It is not atomic: a Set landing after the scan may survive.
func (c *cache[V]) Clear(ctx context.Context) error {
	ns := c.ns.String()
	if err := c.gate(); err != nil {
		c.debugf("clear skipped", Fields{"namespace": ns, "err": err})
		return &ClearError{Namespace: ns, Err: err}
	}

	var matched []string
	for batch, err := range c.store.Scan(ctx, c.ns.Match()) {
		if err != nil {
			return c.clearFailed(ns, &TransportError{Op: "scan", Err: err})
		}
		matched = append(matched, batch...)
	}
	if len(matched) > 0 {
		if err := c.store.DelMany(ctx, matched); err != nil {
			return c.clearFailed(ns, &TransportError{Op: "del", Err: err})
		}
	}
	c.debugf("cleared", Fields{"namespace": ns, "removed": len(matched)})
	c.hook(func(h Hooks) { h.Cleared(ns, len(matched), nil) })
	return nil
}

func (c *cache[V]) clearFailed(ns string, terr *TransportError) error {
	cerr := &ClearError{Namespace: ns, Err: terr}
	c.errorf("clear failed", Fields{"namespace": ns, "err": cerr})
	c.hook(func(h Hooks) { h.Cleared(ns, 0, cerr) })
	return cerr
}

func (c *cache[V]) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		c.state.Store(int32(StateClosed))
		close(c.closed)
		c.stopProbe()
		<-c.probeDone
		if cerr := c.store.Close(ctx); cerr != nil {
			err = &TransportError{Op: "close", Err: cerr}
			c.warnf("close failed", Fields{"namespace": c.ns.String(), "err": err})
			return
		}
		c.debugf("closed", Fields{"namespace": c.ns.String()})
	})
	return err
}

func (c *cache[V]) encode(v V) (b []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("codec panic: %v", r)
		}
	}()
	payload, err := c.codec.Encode(v)
	if err != nil {
		return nil, err
	}
	return wire.Encode(c.tag, payload), nil
}

func (c *cache[V]) decode(raw []byte) (v V, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero V
			v, err = zero, fmt.Errorf("codec panic: %v", r)
		}
	}()
	payload, err := wire.Decode(c.tag, raw)
	if err != nil {
		return v, err
	}
	return c.codec.Decode(payload)
}

// Diagnostics must never change an outcome, so sink panics are swallowed.

func (c *cache[V]) debugf(msg string, f Fields) {
	if !c.debug {
		return
	}
	defer func() { _ = recover() }()
	c.log.Debug(msg, f)
}

func (c *cache[V]) warnf(msg string, f Fields) {
	defer func() { _ = recover() }()
	c.log.Warn(msg, f)
}

func (c *cache[V]) errorf(msg string, f Fields) {
	defer func() { _ = recover() }()
	c.log.Error(msg, f)
}

func (c *cache[V]) hook(fn func(Hooks)) {
	defer func() { _ = recover() }()
	fn(c.hooks)
}
