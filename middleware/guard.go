// Package middleware adapts [authcore.Guard] to net/http: it extracts the
// bearer token and request metadata, runs Authenticate, and on every
// outcome — success or failure — writes the response headers/cookies
// described by spec §4.9 before the wrapped handler's own response (or,
// on failure, before the error body this package writes itself) reaches
// the wire.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/zanix-dev/auth-core"
)

// Guard wraps next with authcore.Guard.Authenticate using opts for every
// request.
//
// On failure it never calls next: it maps the returned [authcore.AuthError]
// Kind to a status code and attaches default session headers (subject
// falling back to an anonymous id, status "failed", or "blocked" for a
// rate-limit denial, per spec §4.10 steps 1/8).
//
// On success it attaches the session to the request context — via a
// derived request, so it never leaks back onto the caller's own
// *http.Request — appends the subject/status/token headers and cookies
// and forwards any rate-limit headers, then calls next. Both paths defer
// the header write until the first byte actually leaves the handler, so a
// wrapped handler's own headers and body are unaffected.
func Guard(guard *authcore.Guard, opts authcore.GuardOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &sessionHeaderWriter{ResponseWriter: w}
			headers, cookies := requestHeaderMap(r), requestCookieMap(r)
			typ := opts.Type
			if typ == "" {
				typ = authcore.SessionUser
			}

			if guard == nil {
				writeFailure(rw, r, authcore.AsAuthError(authcore.ErrMissingBearerToken), typ, headers, cookies)
				return
			}

			token, ok := bearerToken(r.Header.Get(authcore.AuthorizationHeader))
			if !ok {
				token, ok = bearerToken(r.Header.Get(authcore.ZnxAuthorizationHeader))
			}
			if !ok {
				missing := &authcore.AuthError{Kind: authcore.KindUnauthorized, Code: "UNAUTHORIZED", Cause: authcore.ErrMissingBearerToken}
				writeFailure(rw, r, missing, typ, headers, cookies)
				return
			}

			ctx := withRequestMetadata(r)

			session, err := guard.Authenticate(ctx, token, opts)
			if err != nil {
				writeFailure(rw, r, authcore.AsAuthError(err), typ, headers, cookies)
				return
			}

			rw.pending = func() {
				applySessionHeaders(rw, authcore.GetSessionHeaders(authcore.SessionHeadersOptions{
					CookiesAccepted: authcore.CheckAcceptedCookies(headers, cookies),
					SessionStatus:   session.Status,
					Type:            session.Type,
					Subject:         session.Subject,
					RefreshToken:    session.Token,
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

// sessionHeaderWriter defers the session-header write described above
// until the first WriteHeader/Write call (or, if the wrapped handler
// writes nothing at all, until the request finishes and Guard's own
// deferred inject runs) so the headers always precede the response they
// describe instead of racing a handler-written status line.
type sessionHeaderWriter struct {
	http.ResponseWriter
	pending  func()
	injected bool
}

func (w *sessionHeaderWriter) inject() {
	if w.injected {
		return
	}
	w.injected = true
	if w.pending != nil {
		w.pending()
	}
}

func (w *sessionHeaderWriter) WriteHeader(code int) {
	w.inject()
	w.ResponseWriter.WriteHeader(code)
}

func (w *sessionHeaderWriter) Write(b []byte) (int, error) {
	w.inject()
	return w.ResponseWriter.Write(b)
}

func writeFailure(rw *sessionHeaderWriter, r *http.Request, authErr *authcore.AuthError, typ authcore.SessionType, headers, cookies map[string]string) {
	status := http.StatusUnauthorized
	sessionStatus := authcore.StatusFailed

	switch authErr.Kind {
	case authcore.KindForbidden:
		status = http.StatusForbidden
	case authcore.KindTooManyRequests:
		status = http.StatusTooManyRequests
		sessionStatus = authcore.StatusBlocked
		if retryAfter, ok := authErr.Meta["retryAfter"].(int64); ok {
			rw.Header().Set(authcore.RetryAfterHeader, strconv.FormatInt(retryAfter, 10))
		}
	case authcore.KindInternal:
		status = http.StatusInternalServerError
	}
	if v, ok := authErr.Meta["sessionStatus"].(authcore.SessionStatus); ok {
		sessionStatus = v
	}
	rateLimitHeaders, _ := authErr.Meta["headers"].(map[string]string)

	rw.pending = func() {
		anon := authcore.AnonymousSession(0, requestHeadersFromRequest(r))
		applySessionHeaders(rw, authcore.GetDefaultSessionHeaders(authcore.DefaultSessionHeadersOptions{
			CookiesAccepted: authcore.CheckAcceptedCookies(headers, cookies),
			SessionStatus:   sessionStatus,
			Type:            typ,
			Headers:         headers,
			Cookies:         cookies,
			AnonymousID:     anon.ID,
		}))
		for k, v := range rateLimitHeaders {
			rw.Header().Set(k, v)
		}
	}

	http.Error(rw, errorMessage(authErr), status)
}

// errorMessage renders authErr as the human-readable sentence spec §8's
// failure scenarios expect in the response body, falling back to the
// bare error code for an AuthError with no wrapped cause.
func errorMessage(authErr *authcore.AuthError) string {
	msg := authErr.Code
	if authErr.Cause != nil {
		msg = authErr.Cause.Error()
	}
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func applySessionHeaders(w http.ResponseWriter, out authcore.SessionHeaders) {
	for k, v := range out.Headers {
		w.Header().Set(k, v)
	}
	for _, cookie := range out.SetCookies {
		w.Header().Add("Set-Cookie", cookie)
	}
}

// withRequestMetadata attaches the raw x-forwarded-for value (as the client
// IP) and the user-agent to ctx so downstream handlers can read them back.
// AnonymousSession does not read these; it is given RequestHeaders instead.
func withRequestMetadata(r *http.Request) context.Context {
	h := requestHeadersFromRequest(r)
	ctx := r.Context()
	ctx = authcore.WithClientIP(ctx, h.ForwardedFor)
	ctx = authcore.WithUserAgent(ctx, h.UserAgent)
	return ctx
}

func requestHeadersFromRequest(r *http.Request) authcore.RequestHeaders {
	return authcore.RequestHeaders{
		ForwardedFor:   r.Header.Get("x-forwarded-for"),
		CFConnectingIP: r.Header.Get("cf-connecting-ip"),
		RealIP:         r.Header.Get("x-real-ip"),
		UserAgent:      r.UserAgent(),
	}
}

func requestHeaderMap(r *http.Request) map[string]string {
	return map[string]string{
		authcore.UserIDHeader:          r.Header.Get(authcore.UserIDHeader),
		authcore.APIIDHeader:           r.Header.Get(authcore.APIIDHeader),
		authcore.CookiesAcceptedHeader: r.Header.Get(authcore.CookiesAcceptedHeader),
	}
}

func requestCookieMap(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.Cookies()))
	for _, c := range r.Cookies() {
		out[c.Name] = c.Value
	}
	return out
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
