package storage

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCacheSetGetDelete(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	v, found, err := c.Get(ctx, "k")
	if err != nil || !found || v != "v" {
		t.Fatalf("get = (%q, %v, %v), want (v, true, nil)", v, found, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Fatal("expected key to be gone after delete")
	}
}

func TestMemoryCacheExpires(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, found, _ := c.Get(ctx, "k"); found {
		t.Fatal("expected key to have expired")
	}
}

func TestMemoryCacheLockSerializesAccess(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	order := make([]int, 0, 2)
	done := make(chan struct{})

	go func() {
		_ = c.Lock(ctx, "shared", func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			order = append(order, 1)
			return nil
		})
		close(done)
	}()

	time.Sleep(2 * time.Millisecond)
	_ = c.Lock(ctx, "shared", func(ctx context.Context) error {
		order = append(order, 2)
		return nil
	})

	<-done
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("order = %v, want [1 2] (second Lock should wait for the first)", order)
	}
}
