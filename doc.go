// Package resultcache stores query results in a key-value store for an ORM
// result cache. Values are serialized with a binary codec, framed, and
// written under "<namespace>:<key>" with an optional expiration.
//
// Components:
//   - store.Store: byte store with TTLs, pattern scans and batched deletes
//     (Redis, or the in-process BigCache and Ristretto stores).
//   - codec.Codec[V]: (de)serializes V <-> []byte. Msgpack by default.
//   - Cache[V]: the fault boundary. Reads and writes never fail the caller;
//     a broken cache behaves like an empty one. Remove and Clear report
//     failures because a silently missed invalidation serves stale data.
//
// Keys:
//
//	<ns>:<key>  - every entry; ns defaults to "mikro"
//
// Clear scans "<ns>:*" and deletes the matches in one batch. A Set racing
// with Clear may survive it.
//
// Usage:
//
//	c, err := resultcache.New(resultcache.Options[[]Row]{
//	    Connection: resultcache.ConnectionConfig{URL: "redis://localhost:6379/0"},
//	    Expiration: time.Minute,
//	    KeyPrefix:  "orders",
//	})
//	...
//	if rows, ok := c.Get(ctx, key); ok {
//	    return rows
//	}
//	rows := query()
//	c.Set(ctx, key, rows, "Order", 0) // 0 => Options.Expiration
package resultcache
