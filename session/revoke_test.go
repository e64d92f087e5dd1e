package session

import (
	"context"
	"sync"
	"testing"

	"github.com/zanix-dev/auth-core/jwtcodec"
)

func TestRevokeAppTokensRunsConcurrentlyAndPreservesOrder(t *testing.T) {
	revoke := func(ctx context.Context, token string) (jwtcodec.Payload, error) {
		return jwtcodec.Payload{Sub: token}, nil
	}

	payloads, err := RevokeAppTokens(context.Background(), []string{"t1", "t2", "t3"}, revoke)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(payloads) != 3 || payloads[0].Sub != "t1" || payloads[1].Sub != "t2" || payloads[2].Sub != "t3" {
		t.Fatalf("payloads = %+v, want order preserved", payloads)
	}
}

func TestRevokeSessionTokenCollectsCookieAndContextTokens(t *testing.T) {
	var mu sync.Mutex
	seen := make([]string, 0, 2)
	revoke := func(ctx context.Context, token string) (jwtcodec.Payload, error) {
		mu.Lock()
		seen = append(seen, token)
		mu.Unlock()
		return jwtcodec.Payload{}, nil
	}

	_, err := RevokeSessionToken(context.Background(), RevokeSessionOptions{
		CookieToken:  "cookie-token",
		ContextToken: "context-token",
	}, revoke)
	if err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(seen) != 2 {
		t.Fatalf("seen = %v, want both cookie and context tokens revoked", seen)
	}
}

func TestRevokeSessionTokenMissingToken(t *testing.T) {
	revoke := func(ctx context.Context, token string) (jwtcodec.Payload, error) {
		return jwtcodec.Payload{}, nil
	}

	_, err := RevokeSessionToken(context.Background(), RevokeSessionOptions{}, revoke)
	if err != ErrRefreshTokenMissing {
		t.Fatalf("err = %v, want ErrRefreshTokenMissing", err)
	}
}
