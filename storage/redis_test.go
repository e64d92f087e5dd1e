package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(rdb), func() { _ = rdb.Close(); mr.Close() }
}

func TestRedisStoreSetAndGet(t *testing.T) {
	store, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SaveToCaches(ctx, "k1", "v1", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}

	v, found, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !found || v != "v1" {
		t.Fatalf("got (%q, %v), want (v1, true)", v, found)
	}
}

func TestRedisStoreGetMissing(t *testing.T) {
	store, cleanup := newTestRedisStore(t)
	defer cleanup()

	_, found, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected missing key to report not found")
	}
}

func TestRedisStoreEvalRateLimitFixedWindow(t *testing.T) {
	store, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	keys := []string{"rl:count", "rl:failed"}
	args := []any{int64(2), int64(60), int64(3), time.Now().Unix()}

	first, err := store.EvalRateLimit(ctx, keys, args)
	if err != nil {
		t.Fatalf("eval 1: %v", err)
	}
	if first.Count != 1 || !first.CanContinue {
		t.Fatalf("first result = %+v, want count=1 canContinue=true", first)
	}

	second, err := store.EvalRateLimit(ctx, keys, args)
	if err != nil {
		t.Fatalf("eval 2: %v", err)
	}
	if second.Count != 2 || !second.CanContinue {
		t.Fatalf("second result = %+v, want count=2 canContinue=true", second)
	}

	third, err := store.EvalRateLimit(ctx, keys, args)
	if err != nil {
		t.Fatalf("eval 3: %v", err)
	}
	if third.CanContinue {
		t.Fatalf("third result = %+v, want canContinue=false", third)
	}
}

func TestRedisStoreDelete(t *testing.T) {
	store, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SaveToCaches(ctx, "k1", "v1", time.Minute); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, found, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatal("expected deleted key to report not found")
	}
}

func TestRedisStoreWithLock(t *testing.T) {
	store, cleanup := newTestRedisStore(t)
	defer cleanup()
	ctx := context.Background()

	ran := false
	err := store.WithLock(ctx, "lockable", time.Second, func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("with lock: %v", err)
	}
	if !ran {
		t.Fatal("expected fn to run")
	}
}
