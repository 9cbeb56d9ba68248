package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	HashStore
	GuardedHashStore
	SetStore
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
}

// HashGuard is the server-side condition of a guarded hash write.
type HashGuard struct {
	Field string   // field inspected before writing
	Block []string // stored values of Field that veto the write
	Keep  []string // fields whose stored values survive the write
}

// GuardedHashStore writes hashes under a check evaluated atomically on the server.
type GuardedHashStore interface {
	// HSetGuarded writes fields to key unless the stored value of guard.Field is one of
	// guard.Block. Fields named in guard.Keep are only written when not yet stored.
	// Returns the hash as it was before the call and whether the write happened.
	HSetGuarded(ctx context.Context, key string, fields map[string]string, guard HashGuard) (map[string]string, bool, error)
}

// SetStore provides set membership operations used for secondary indexes.
type SetStore interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
