package session

import (
	"context"
	"testing"

	"github.com/zanix-dev/auth-core/jwtcodec"
)

func TestRefreshSessionTokensRoundTrip(t *testing.T) {
	secret := []byte("refresh-secret-refresh-secret")
	lookup := testKeyLookup(secret)
	resolve := func(alg jwtcodec.Algorithm, kid string) ([]byte, error) { return secret, nil }

	pair, err := GenerateSessionTokens(AppTokenOptions{Subject: "user-1", Type: TypeUser}, lookup)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	result, err := RefreshSessionTokens(context.Background(), RefreshOptions{Token: pair.RefreshToken}, resolve, lookup)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if result.OldToken != pair.RefreshToken {
		t.Fatalf("oldToken = %q, want the presented refresh token", result.OldToken)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected a fresh access/refresh pair")
	}
}

func TestRefreshSessionTokensRejectsAccessToken(t *testing.T) {
	secret := []byte("refresh-secret-refresh-secret")
	lookup := testKeyLookup(secret)
	resolve := func(alg jwtcodec.Algorithm, kid string) ([]byte, error) { return secret, nil }

	accessToken, _, err := CreateAccessToken(AppTokenOptions{Subject: "user-1", Type: TypeUser}, lookup)
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	_, err = RefreshSessionTokens(context.Background(), RefreshOptions{Token: accessToken}, resolve, lookup)
	if err != ErrNotARefreshToken {
		t.Fatalf("err = %v, want ErrNotARefreshToken", err)
	}
}

func TestRefreshSessionTokensMissingToken(t *testing.T) {
	secret := []byte("refresh-secret-refresh-secret")
	lookup := testKeyLookup(secret)
	resolve := func(alg jwtcodec.Algorithm, kid string) ([]byte, error) { return secret, nil }

	_, err := RefreshSessionTokens(context.Background(), RefreshOptions{}, resolve, lookup)
	if err != ErrRefreshTokenMissing {
		t.Fatalf("err = %v, want ErrRefreshTokenMissing", err)
	}
}

func TestRefreshSessionTokensChecksBlocklist(t *testing.T) {
	secret := []byte("refresh-secret-refresh-secret")
	lookup := testKeyLookup(secret)
	resolve := func(alg jwtcodec.Algorithm, kid string) ([]byte, error) { return secret, nil }

	pair, err := GenerateSessionTokens(AppTokenOptions{Subject: "user-1", Type: TypeUser}, lookup)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	checker := func(ctx context.Context, jti string) (bool, error) { return true, nil }

	_, err = RefreshSessionTokens(context.Background(), RefreshOptions{Token: pair.RefreshToken, CheckBlocklist: checker}, resolve, lookup)
	if err != ErrTokenRevoked {
		t.Fatalf("err = %v, want ErrTokenRevoked", err)
	}
}
