package authcore

import (
	"context"
	"strconv"

	"github.com/zanix-dev/auth-core/ratelimit"
)

// DefaultAnonymousRateLimit is a quota callers can pass as
// RateLimitGuardOptions.AnonymousLimit. GuardRateLimit does not apply it by
// itself: an AnonymousLimit left at zero rejects the request.
const DefaultAnonymousRateLimit = 100

// RateLimitGuardOptions configures GuardRateLimit.
type RateLimitGuardOptions struct {
	// Session is the already-authenticated session to rate-limit. Leave
	// nil for an unauthenticated route; GuardRateLimit then derives an
	// AnonymousSession from Headers.
	Session *Session
	Headers RequestHeaders
	// AnonymousLimit caps an unauthenticated caller's quota. Zero rejects
	// the request outright with KindUnauthorized; DefaultAnonymousRateLimit
	// is a reasonable default for routes that want to allow it through.
	AnonymousLimit int64
}

// GuardRateLimit is the standalone rate-limit guard for unauthenticated
// routes: with no session and a zero AnonymousLimit it fails
// KindUnauthorized; otherwise it derives (or reuses) a session and
// consults the limiter keyed by "rate-limit:<sessionId>", returning the
// session carrying X-Znx-RateLimit-* headers on success or a
// KindTooManyRequests error with Retry-After on denial.
//
//	Docs: spec §4.10.
func (g *Guard) GuardRateLimit(ctx context.Context, opts RateLimitGuardOptions) (*Session, error) {
	sess := opts.Session
	if sess == nil {
		if opts.AnonymousLimit == 0 {
			return nil, newAuthError(KindUnauthorized, "UNAUTHORIZED", ErrMissingBearerToken, nil)
		}
		anon := AnonymousSession(opts.AnonymousLimit, opts.Headers)
		sess = &anon
	}

	result, headers, err := g.checkRateLimit(ctx, sess.ID, sess.RateLimit)
	if err != nil {
		return nil, newAuthError(KindInternal, "INTERNAL_SERVER_ERROR", err, nil)
	}
	sess.Headers = headers

	if !result.CanContinue {
		return sess, newAuthError(KindTooManyRequests, "TOO_MANY_REQUESTS", nil, map[string]any{
			"retryAfter": g.config.RateLimit.WindowSeconds,
			"headers":    headers,
		})
	}

	return sess, nil
}

// checkRateLimit runs the fixed-window check for key and builds the
// X-Znx-RateLimit-* response headers both Authenticate's rate-limit step
// and the standalone GuardRateLimit forward upstream.
func (g *Guard) checkRateLimit(ctx context.Context, key string, sessionRateLimit int64) (ratelimit.Result, map[string]string, error) {
	max := ratelimit.PlanLookup(g.config.RateLimit.Plans, sessionRateLimit)

	result, err := ratelimit.Check(ctx, ratelimit.Options{
		Key:               key,
		MaxRequests:       max,
		WindowSeconds:     g.config.RateLimit.WindowSeconds,
		MaxFailedAttempts: g.config.RateLimit.MaxFailedAttempts,
		Distributed:       g.distributed,
		Local:             g.local,
	})
	if err != nil {
		return ratelimit.Result{}, nil, err
	}

	return result, rateLimitHeaders(result, max, g.config.RateLimit.WindowSeconds), nil
}

func rateLimitHeaders(result ratelimit.Result, max, windowSeconds int64) map[string]string {
	remaining := max - result.Count
	if remaining < 0 {
		remaining = 0
	}
	if windowSeconds <= 0 {
		windowSeconds = ratelimit.DefaultWindowSeconds
	}

	return map[string]string{
		RateLimitLimitHeader:     strconv.FormatInt(max, 10),
		RateLimitRemainingHeader: strconv.FormatInt(remaining, 10),
		RateLimitResetHeader:     strconv.FormatInt(result.CreatedAt+windowSeconds, 10),
	}
}
