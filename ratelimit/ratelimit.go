// Package ratelimit implements the fixed-window request counter with
// failed-attempt escalation tracking described in spec §4.6, with two
// interchangeable backends: a Redis atomic script for multi-process
// deployments, and an in-process mutex-guarded path for single-process
// or test use.
package ratelimit

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/zanix-dev/auth-core/storage"
)

const (
	countKeyPrefix  = "zanix:rate-limit:"
	failedKeySuffix = ":failed-attempts"

	DefaultWindowSeconds    = 60
	DefaultMaxFailedAttempt = 3

	// failedAttemptsTTLMultiplier gives the failed-attempts counter a TTL
	// longer than the window it is written in. The first request of each
	// new window still resets the counter to 0, so an escalation does not
	// carry over into the next window.
	failedAttemptsTTLMultiplier = 10
)

// Result mirrors the record described in spec §3.
type Result struct {
	Count          int64
	CreatedAt      int64
	FailedAttempts int64
	CanContinue    bool
}

// Options configures Check.
type Options struct {
	Key               string
	MaxRequests       int64
	WindowSeconds     int64
	MaxFailedAttempts int64

	Distributed storage.DistributedStore
	Local       LocalStore // local mutual-exclusion + counter storage
}

// LocalStore is the local-path collaborator: a cache plus the per-key
// lock package storage.MemoryCache provides.
type LocalStore interface {
	storage.LocalCache
	storage.Locker
}

// Check runs the fixed-window algorithm for Key, preferring the
// distributed backend when configured.
//
//	Docs: spec §4.6.
func Check(ctx context.Context, opts Options) (Result, error) {
	window := opts.WindowSeconds
	if window <= 0 {
		window = DefaultWindowSeconds
	}
	maxFailed := opts.MaxFailedAttempts
	if maxFailed <= 0 {
		maxFailed = DefaultMaxFailedAttempt
	}

	countKey := countKeyPrefix + opts.Key
	failedKey := countKey + failedKeySuffix

	if opts.Distributed != nil {
		res, err := opts.Distributed.EvalRateLimit(ctx, []string{countKey, failedKey}, []any{
			opts.MaxRequests, window, maxFailed, time.Now().Unix(),
		})
		if err != nil {
			return Result{}, err
		}
		return Result{Count: res.Count, CreatedAt: res.CreatedAt, FailedAttempts: res.FailedAttempts, CanContinue: res.CanContinue}, nil
	}

	var result Result
	err := opts.Local.Lock(ctx, countKey, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = checkLocal(ctx, opts.Local, countKey, failedKey, opts.MaxRequests, window, maxFailed)
		return innerErr
	})
	return result, err
}

func checkLocal(ctx context.Context, cache storage.LocalCache, countKey, failedKey string, maxRequests, window, maxFailed int64) (Result, error) {
	now := time.Now().Unix()

	raw, found, err := cache.Get(ctx, countKey)
	if err != nil {
		return Result{}, err
	}

	failedTTL := time.Duration(window*failedAttemptsTTLMultiplier) * time.Second

	if !found {
		ttl := time.Duration(window) * time.Second
		if err := cache.Set(ctx, countKey, encode(1, now), ttl); err != nil {
			return Result{}, err
		}
		if err := cache.Set(ctx, failedKey, "0", failedTTL); err != nil {
			return Result{}, err
		}
		return Result{Count: 1, CreatedAt: now, CanContinue: true}, nil
	}

	count, createdAt := decode(raw)
	remainingTTL := time.Duration(createdAt+window-now) * time.Second
	if remainingTTL < 0 {
		remainingTTL = 0
	}

	if count >= maxRequests {
		failedRaw, _, _ := cache.Get(ctx, failedKey)
		failed := parseInt(failedRaw)
		if failed >= maxFailed {
			failed = 0
		} else {
			failed++
		}
		if err := cache.Set(ctx, failedKey, strconv.FormatInt(failed, 10), failedTTL); err != nil {
			return Result{}, err
		}
		return Result{Count: count, CreatedAt: createdAt, FailedAttempts: failed, CanContinue: false}, nil
	}

	count++
	if err := cache.Set(ctx, countKey, encode(count, createdAt), remainingTTL); err != nil {
		return Result{}, err
	}
	return Result{Count: count, CreatedAt: createdAt, CanContinue: true}, nil
}

// PlanLookup resolves sessionRateLimit against a plan table of the form
// "idx:max;idx:max;…"; with no plan configured it returns
// sessionRateLimit unchanged.
//
//	Docs: spec §4.6.
func PlanLookup(plan string, sessionRateLimit int64) int64 {
	if plan == "" {
		return sessionRateLimit
	}

	for _, entry := range strings.Split(plan, ";") {
		parts := strings.SplitN(entry, ":", 2)
		if len(parts) != 2 {
			continue
		}
		idx, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil || idx != sessionRateLimit {
			continue
		}
		max, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
		if err != nil {
			continue
		}
		return max
	}

	return sessionRateLimit
}

func encode(count, createdAt int64) string {
	return strconv.FormatInt(count, 10) + "," + strconv.FormatInt(createdAt, 10)
}

func decode(s string) (count, createdAt int64) {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	return parseInt(parts[0]), parseInt(parts[1])
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
