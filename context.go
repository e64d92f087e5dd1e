package authcore

import "context"

type clientIPContextKey struct{}
type userAgentContextKey struct{}
type sessionContextKey struct{}

// WithClientIP attaches the caller's IP address to ctx for downstream
// readers. Anonymous-session derivation and rate-limit keys do not read it;
// they work from RequestHeaders.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithUserAgent attaches the HTTP User-Agent string to ctx as given.
// AnonymousSession does not read it; it truncates RequestHeaders.UserAgent
// itself.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, userAgentContextKey{}, userAgent)
}

// ClientIP reads back the value set by WithClientIP, or "" if unset.
func ClientIP(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

// UserAgent reads back the value set by WithUserAgent, or "" if unset.
func UserAgent(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ua, _ := ctx.Value(userAgentContextKey{}).(string)
	return ua
}

// WithSession assigns sess to ctx. Per spec §3/§5 a session is assigned at
// most once per request and treated as immutable afterward; callers that
// need to replace it (refresh, revoke) must derive a new context rather
// than mutate in place. A second call on the same context chain panics
// with ErrSessionAlreadyAssigned instead of silently overwriting.
func WithSession(ctx context.Context, sess *Session) context.Context {
	if ctx.Value(sessionContextKey{}) != nil {
		panic(ErrSessionAlreadyAssigned)
	}
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext returns the session assigned to ctx, or nil if none
// has been assigned yet.
func SessionFromContext(ctx context.Context) *Session {
	if ctx == nil {
		return nil
	}
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
