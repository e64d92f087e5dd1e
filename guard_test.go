package authcore

import (
	"context"
	"testing"
	"time"

	"github.com/zanix-dev/auth-core/jwtcodec"
	"github.com/zanix-dev/auth-core/keyregistry"
	"github.com/zanix-dev/auth-core/session"
)

func testSource(values map[string]string) keyregistry.Source {
	return func(name string) (string, bool) {
		v, ok := values[name]
		return v, ok
	}
}

func newTestGuard(t *testing.T, source keyregistry.Source) *Guard {
	t.Helper()
	guard, err := New().WithKeySource(source).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return guard
}

func TestAuthenticateValidHMACToken(t *testing.T) {
	guard := newTestGuard(t, testSource(map[string]string{"JWT_KEY": "my-secret"}))

	token, err := jwtcodec.Create(jwtcodec.Payload{
		Sub: "user-1",
		Aud: []string{"read"},
		Exp: time.Now().Add(time.Hour).Unix(),
	}, []byte("my-secret"), jwtcodec.CreateOptions{Algorithm: jwtcodec.HS256, Issuer: DefaultIssuer})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	session, err := guard.Authenticate(context.Background(), token, GuardOptions{})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if session.Subject != "user-1" || session.Status != StatusActive {
		t.Fatalf("session = %+v, want active session for user-1", session)
	}
}

func TestAuthenticateMissingBearerToken(t *testing.T) {
	guard := newTestGuard(t, testSource(nil))

	_, err := guard.Authenticate(context.Background(), "", GuardOptions{})
	ae := AsAuthError(err)
	if ae.Kind != KindUnauthorized {
		t.Fatalf("kind = %v, want KindUnauthorized", ae.Kind)
	}
}

func TestAuthenticateRejectsTamperedSignature(t *testing.T) {
	guard := newTestGuard(t, testSource(map[string]string{"JWT_KEY": "my-secret"}))

	token, err := jwtcodec.Create(jwtcodec.Payload{
		Sub: "user-1",
		Exp: time.Now().Add(time.Hour).Unix(),
	}, []byte("my-secret"), jwtcodec.CreateOptions{Algorithm: jwtcodec.HS256, Issuer: DefaultIssuer})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = guard.Authenticate(context.Background(), token+"tamper", GuardOptions{})
	ae := AsAuthError(err)
	if ae.Kind != KindForbidden {
		t.Fatalf("kind = %v, want KindForbidden", ae.Kind)
	}
}

func TestAuthenticateEnforcesRequiredPermissions(t *testing.T) {
	guard := newTestGuard(t, testSource(map[string]string{"JWT_KEY": "my-secret"}))

	token, err := jwtcodec.Create(jwtcodec.Payload{
		Sub: "user-1",
		Aud: []string{"read"},
		Exp: time.Now().Add(time.Hour).Unix(),
	}, []byte("my-secret"), jwtcodec.CreateOptions{Algorithm: jwtcodec.HS256, Issuer: DefaultIssuer})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = guard.Authenticate(context.Background(), token, GuardOptions{RequiredPermissions: []string{"write"}})
	ae := AsAuthError(err)
	if ae.Kind != KindForbidden {
		t.Fatalf("kind = %v, want KindForbidden for insufficient scope", ae.Kind)
	}
}

func TestAuthenticateBlocklistedTokenDenied(t *testing.T) {
	guard := newTestGuard(t, testSource(map[string]string{"JWT_KEY": "my-secret"}))

	token, err := jwtcodec.Create(jwtcodec.Payload{
		Sub: "user-1",
		Exp: time.Now().Add(time.Hour).Unix(),
	}, []byte("my-secret"), jwtcodec.CreateOptions{Algorithm: jwtcodec.HS256, Issuer: DefaultIssuer})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := guard.revoke(context.Background(), token); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	_, err = guard.Authenticate(context.Background(), token, GuardOptions{})
	ae := AsAuthError(err)
	if ae.Kind != KindForbidden || ae.Code != "TOKEN_REVOKED" {
		t.Fatalf("err = %+v, want TOKEN_REVOKED", ae)
	}
}

func TestAuthenticateRateLimitExceeded(t *testing.T) {
	guard := newTestGuard(t, testSource(map[string]string{"JWT_KEY": "my-secret"}))

	token, err := jwtcodec.Create(jwtcodec.Payload{
		Sub:       "user-1",
		Exp:       time.Now().Add(time.Hour).Unix(),
		RateLimit: 1,
	}, []byte("my-secret"), jwtcodec.CreateOptions{Algorithm: jwtcodec.HS256, Issuer: DefaultIssuer})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	opts := GuardOptions{RateLimitEnabled: true}
	if _, err := guard.Authenticate(context.Background(), token, opts); err != nil {
		t.Fatalf("first Authenticate: %v", err)
	}

	_, err = guard.Authenticate(context.Background(), token, opts)
	ae := AsAuthError(err)
	if ae.Kind != KindTooManyRequests {
		t.Fatalf("kind = %v, want KindTooManyRequests", ae.Kind)
	}
}

func TestGenerateAndRefreshSession(t *testing.T) {
	guard := newTestGuard(t, testSource(map[string]string{"JWT_KEY": "my-secret"}))

	pair, err := guard.GenerateSession(IssueSessionOptions{Subject: "user-1"})
	if err != nil {
		t.Fatalf("GenerateSession: %v", err)
	}

	result, err := guard.RefreshSession(context.Background(), session.RefreshOptions{Token: pair.RefreshToken})
	if err != nil {
		t.Fatalf("RefreshSession: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected a fresh access/refresh pair")
	}
}
