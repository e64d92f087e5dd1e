package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zanix-dev/auth-core"
)

func TestRateLimitMiddlewareRejectsZeroAnonymousLimit(t *testing.T) {
	guard := newTestGuard(t)

	handler := RateLimit(guard, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run with anonymousLimit zero")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if got := rec.Header().Get(authcore.UserSessionStatusHeader); got != "failed" {
		t.Fatalf("%s = %q, want %q", authcore.UserSessionStatusHeader, got, "failed")
	}
}

func TestRateLimitMiddlewareAllowsAnonymousUnderLimit(t *testing.T) {
	guard := newTestGuard(t)

	var reachedHandler bool
	handler := RateLimit(guard, 100)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reachedHandler = true
		sess := authcore.SessionFromContext(r.Context())
		if sess == nil || sess.Type != authcore.SessionAnonymous {
			t.Fatalf("session = %+v, want an anonymous session", sess)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-real-ip", "203.0.113.5")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !reachedHandler {
		t.Fatal("expected the wrapped handler to run")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get(authcore.RateLimitLimitHeader); got != "100" {
		t.Fatalf("%s = %q, want %q", authcore.RateLimitLimitHeader, got, "100")
	}
}
