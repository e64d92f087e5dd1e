package authcore

import (
	"net/http"
	"time"
)

// Response and request header/cookie names, per spec §6.
const (
	UserIDHeader            = "X-Znx-User-Id"
	APIIDHeader             = "X-Znx-Api-Id"
	UserSessionStatusHeader = "X-Znx-User-Session-Status"
	APISessionStatusHeader  = "X-Znx-Api-Session-Status"
	AppTokenHeader          = "X-Znx-App-Token"
	CookiesAcceptedHeader   = "X-Znx-Cookies-Accepted"

	RateLimitLimitHeader     = "X-Znx-RateLimit-Limit"
	RateLimitRemainingHeader = "X-Znx-RateLimit-Remaining"
	RateLimitResetHeader     = "X-Znx-RateLimit-Reset"
	RetryAfterHeader         = "Retry-After"

	AuthorizationHeader    = "Authorization"
	ZnxAuthorizationHeader = "X-Znx-Authorization"
)

// typeHeaders is the per-session-type header table from spec §4.9.
type typeHeaders struct {
	subjectHeader string
	statusHeader  string
	tokenHeader   string // empty means the type carries no token header
}

var headerTable = map[SessionType]typeHeaders{
	SessionUser: {subjectHeader: UserIDHeader, statusHeader: UserSessionStatusHeader, tokenHeader: AppTokenHeader},
	SessionAPI:  {subjectHeader: APIIDHeader, statusHeader: APISessionStatusHeader},
}

// SessionHeadersOptions configures GetSessionHeaders.
type SessionHeadersOptions struct {
	CookiesAccepted bool
	SessionStatus   SessionStatus // default StatusUnconfirmed
	Type            SessionType
	Subject         string
	Expiration      int64 // unix seconds; 0 means "now" (Max-Age 0)
	RefreshToken    string
}

// SessionHeaders is the result of GetSessionHeaders: response headers plus
// an ordered list of Set-Cookie lines (possibly empty).
type SessionHeaders struct {
	Headers    map[string]string
	SetCookies []string
}

// GetSessionHeaders builds the deterministic header/cookie set described
// in spec §4.9: the status and subject headers are always present; cookies
// are only emitted when CookiesAccepted is true.
func GetSessionHeaders(opts SessionHeadersOptions) SessionHeaders {
	table := headerTable[opts.Type]

	status := opts.SessionStatus
	if status == "" {
		status = StatusUnconfirmed
	}

	out := SessionHeaders{
		Headers: map[string]string{
			table.statusHeader:  string(status),
			table.subjectHeader: opts.Subject,
		},
	}

	if !opts.CookiesAccepted {
		return out
	}

	maxAge := 0
	if opts.Expiration > 0 {
		if remaining := opts.Expiration - time.Now().Unix(); remaining > 0 {
			maxAge = int(remaining)
		}
	}

	out.SetCookies = append(out.SetCookies,
		cookieLine(table.statusHeader, string(status), maxAge),
		cookieLine(table.subjectHeader, opts.Subject, maxAge),
	)
	if table.tokenHeader != "" && opts.RefreshToken != "" {
		out.SetCookies = append(out.SetCookies, cookieLine(table.tokenHeader, opts.RefreshToken, maxAge))
	}
	out.SetCookies = append(out.SetCookies, cookieLine(CookiesAcceptedHeader, "true", maxAge))

	return out
}

// cookieLine renders name/value with the fixed attribute set spec §4.9/§8
// require. http.Cookie.String omits Max-Age entirely when MaxAge == 0 (it
// only renders "Max-Age=0" for a negative value), so a non-positive maxAge
// is passed through as -1 to force the explicit "Max-Age=0" spec §8's
// failure scenarios require.
func cookieLine(name, value string, maxAge int) string {
	if maxAge <= 0 {
		maxAge = -1
	}
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
	return c.String()
}

// GetClientSubject prefers the cookie matching typ's subject header key,
// falling back to the header of the same name.
func GetClientSubject(headers, cookies map[string]string, typ SessionType) string {
	table := headerTable[typ]
	if v, ok := cookies[table.subjectHeader]; ok && v != "" {
		return v
	}
	return headers[table.subjectHeader]
}

// CheckAcceptedCookies reports whether X-Znx-Cookies-Accepted is literally
// "true" in either headers or cookies.
func CheckAcceptedCookies(headers, cookies map[string]string) bool {
	return headers[CookiesAcceptedHeader] == "true" || cookies[CookiesAcceptedHeader] == "true"
}

// DefaultSessionHeadersOptions configures GetDefaultSessionHeaders.
type DefaultSessionHeadersOptions struct {
	CookiesAccepted bool
	SessionStatus   SessionStatus // default StatusUnconfirmed
	Type            SessionType
	Headers         map[string]string
	Cookies         map[string]string
	AnonymousID     string // subject fallback when neither header nor cookie carries one
	Expiration      int64
	RefreshToken    string
}

// GetDefaultSessionHeaders computes a default subject via GetClientSubject,
// falling back to AnonymousID, and delegates to GetSessionHeaders with
// SessionStatus defaulting to StatusUnconfirmed. The guard uses this to
// attach a response header set to every request it handles, authenticated
// or not.
func GetDefaultSessionHeaders(opts DefaultSessionHeadersOptions) SessionHeaders {
	subject := GetClientSubject(opts.Headers, opts.Cookies, opts.Type)
	if subject == "" {
		subject = opts.AnonymousID
	}

	status := opts.SessionStatus
	if status == "" {
		status = StatusUnconfirmed
	}

	return GetSessionHeaders(SessionHeadersOptions{
		CookiesAccepted: opts.CookiesAccepted,
		SessionStatus:   status,
		Type:            opts.Type,
		Subject:         subject,
		Expiration:      opts.Expiration,
		RefreshToken:    opts.RefreshToken,
	})
}
