package middleware

import (
	"net/http"

	"github.com/zanix-dev/auth-core"
)

// RateLimit wraps next with authcore.Guard.GuardRateLimit for routes that
// have no Guard in front of them. With anonymousLimit zero it rejects
// every request with KindUnauthorized; otherwise it derives an anonymous
// session from the request, rate-limits it, and attaches it to the
// context like Guard does, writing the same §4.9 header/cookie set on
// both the success and denial paths.
func RateLimit(guard *authcore.Guard, anonymousLimit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &sessionHeaderWriter{ResponseWriter: w}
			headers, cookies := requestHeaderMap(r), requestCookieMap(r)
			// Anonymous sessions are reported under the user header names;
			// the header table has no entry of its own for them.
			typ := authcore.SessionUser

			ctx := withRequestMetadata(r)

			session, err := guard.GuardRateLimit(ctx, authcore.RateLimitGuardOptions{
				Headers:        requestHeadersFromRequest(r),
				AnonymousLimit: anonymousLimit,
			})
			if err != nil {
				writeFailure(rw, r, authcore.AsAuthError(err), typ, headers, cookies)
				return
			}

			rw.pending = func() {
				applySessionHeaders(rw, authcore.GetSessionHeaders(authcore.SessionHeadersOptions{
					CookiesAccepted: authcore.CheckAcceptedCookies(headers, cookies),
					SessionStatus:   session.Status,
					Type:            typ,
					Subject:         session.Subject,
				}))
				for k, v := range session.Headers {
					rw.Header().Set(k, v)
				}
			}
			defer rw.inject()

			ctx = authcore.WithSession(ctx, session)
			next.ServeHTTP(rw, r.WithContext(ctx))
		})
	}
}
