// Package storage defines the collaborator interfaces the rest of the
// module reaches I/O through (local cache, distributed store, durable KV,
// HTTP client) and ships a Redis-backed DistributedStore/KV and an
// in-process LocalCache implementing them.
//
// # What this package must NOT do
//
//   - Decide retry or backoff policy; that is the caller's collaborator
//     configuration, not this package's concern.
package storage

import (
	"context"
	"time"
)

// LocalCache is the process-local cache collaborator: fast, non-durable,
// always consulted first when no exclusive distributed store is in play.
type LocalCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// ScriptResult is the decoded return value of an Eval call: a fixed-window
// rate-limit record, (count, createdAt, failedAttempts, canContinue).
type ScriptResult struct {
	Count          int64
	CreatedAt      int64
	FailedAttempts int64
	CanContinue    bool
}

// DistributedStore is the exclusive, multi-process-safe collaborator:
// Redis or an equivalent. When configured it takes precedence over
// LocalCache for any operation that requires mutual exclusion across
// processes (rate limiting, blocklist membership).
type DistributedStore interface {
	// GetCachedOrFetch returns the cached value for key, or calls fetch to
	// populate it (with ttl) on a miss.
	GetCachedOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (string, error)) (string, error)
	// SaveToCaches writes value under key with ttl.
	SaveToCaches(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get reads key, reporting (value, found, error).
	Get(ctx context.Context, key string) (string, bool, error)
	// EvalRateLimit runs the fixed-window rate-limit script atomically
	// against the given keys.
	EvalRateLimit(ctx context.Context, keys []string, args []any) (ScriptResult, error)
	// WithLock runs fn while holding an exclusive lock on key.
	WithLock(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error
	// Delete removes key. Used by single-use collaborators (otp) that must
	// consume an entry on successful verification.
	Delete(ctx context.Context, key string) error
}

// Locker is the per-key mutual-exclusion primitive the local rate-limit
// path acquires from the cache provider (spec §4.6).
type Locker interface {
	Lock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// LocalStore is a LocalCache that can also lock a key for the duration of
// a check-then-act sequence — what the local rate-limit path needs from
// the guard's configured local cache. MemoryCache implements both.
type LocalStore interface {
	LocalCache
	Locker
}

// KV is the durable key-value collaborator mirrored to on a LocalCache
// write when no exclusive DistributedStore is configured, so state
// survives a process restart even without Redis.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// HTTPClient is the outbound HTTP collaborator used by package
// oauth2connector. Responses are JSON-decoded into the caller-supplied out
// pointer.
type HTTPClient interface {
	Get(ctx context.Context, url string, headers map[string]string, out any) error
	Post(ctx context.Context, url string, headers map[string]string, body, out any) error
}
