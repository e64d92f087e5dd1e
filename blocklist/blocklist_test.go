package blocklist

import (
	"context"
	"testing"
	"time"

	"github.com/zanix-dev/auth-core/jwtcodec"
	"github.com/zanix-dev/auth-core/storage"
)

func TestAddAndCheckLocalCache(t *testing.T) {
	ctx := context.Background()
	local := storage.NewMemoryCache()
	opts := Options{LocalCache: local}

	key := []byte("secret-secret-secret")
	token, err := jwtcodec.Create(jwtcodec.Payload{Sub: "user-1"}, key, jwtcodec.CreateOptions{Algorithm: jwtcodec.HS256, Expiration: "1h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	payload, err := Add(ctx, token, opts)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	blocked, err := Check(ctx, payload.JTI, opts)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !blocked {
		t.Fatal("expected jti to be blocklisted")
	}

	blocked, err = Check(ctx, "some-other-jti", opts)
	if err != nil {
		t.Fatalf("check other: %v", err)
	}
	if blocked {
		t.Fatal("expected unrelated jti to not be blocklisted")
	}
}

func TestAddSkipsAlreadyExpiredToken(t *testing.T) {
	ctx := context.Background()
	local := storage.NewMemoryCache()
	opts := Options{LocalCache: local}

	key := []byte("secret-secret-secret")
	payload := jwtcodec.Payload{Sub: "user-1", Exp: time.Now().Add(-time.Hour).Unix()}
	token, err := jwtcodec.Create(payload, key, jwtcodec.CreateOptions{Algorithm: jwtcodec.HS256})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	decoded, err := Add(ctx, token, opts)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	blocked, err := Check(ctx, decoded.JTI, opts)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if blocked {
		t.Fatal("expected an already-expired token to not be stored")
	}
}

func TestCheckFallsBackToKVAndBackfillsLocal(t *testing.T) {
	ctx := context.Background()
	local := storage.NewMemoryCache()
	kv := storage.NewMemoryCache() // MemoryCache also satisfies KV's narrower surface

	key := []byte("secret-secret-secret")
	token, err := jwtcodec.Create(jwtcodec.Payload{Sub: "user-1"}, key, jwtcodec.CreateOptions{Algorithm: jwtcodec.HS256, Expiration: "1h"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	payload, err := Add(ctx, token, Options{LocalCache: local, KV: kv})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	freshLocal := storage.NewMemoryCache()
	blocked, err := Check(ctx, payload.JTI, Options{LocalCache: freshLocal, KV: kv})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !blocked {
		t.Fatal("expected KV fallback to report blocklisted")
	}

	if _, found, _ := freshLocal.Get(ctx, "zanix:jwt-block-list:"+payload.JTI); !found {
		t.Fatal("expected KV hit to backfill the local cache")
	}
}
