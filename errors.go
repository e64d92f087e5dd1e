package authcore

import (
	"errors"
	"fmt"
)

// Kind classifies an [AuthError] the way a host framework needs to pick an
// HTTP status code, without forcing the core to depend on net/http status
// constants directly.
type Kind string

const (
	// KindUnauthorized covers a missing/malformed bearer, a missing refresh
	// token on revoke/refresh, and anonymous access blocked by policy.
	KindUnauthorized Kind = "UNAUTHORIZED"
	// KindForbidden covers signature/claim failures, blocklisted tokens,
	// OTP mismatches, and insufficient scope.
	KindForbidden Kind = "FORBIDDEN"
	// KindTooManyRequests covers rate-limit denial; callers should read
	// Meta["retryAfter"] for the Retry-After value in seconds.
	KindTooManyRequests Kind = "TOO_MANY_REQUESTS"
	// KindInternal covers missing signing/verification keys and
	// encode/decode failures that are configuration or environment bugs.
	KindInternal Kind = "INTERNAL_SERVER_ERROR"
)

// AuthError is the (kind, code, cause, meta) record required by the
// guard's error-handling contract: a failure always carries enough
// information for the caller to pick a status code and to build the
// default session headers, and Unwrap keeps errors.Is working against the
// sentinel it wraps.
type AuthError struct {
	Kind  Kind
	Code  string
	Cause error
	Meta  map[string]any
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}
	return e.Code
}

func (e *AuthError) Unwrap() error { return e.Cause }

func newAuthError(kind Kind, code string, cause error, meta map[string]any) *AuthError {
	return &AuthError{Kind: kind, Code: code, Cause: cause, Meta: meta}
}

// Sentinel errors returned by the root package and its leaf packages.
// Leaf packages (jwtcodec, session, otp, keyregistry, storage) declare
// their own narrower sentinels and the guard translates them into an
// [AuthError] of the appropriate [Kind]; these are the ones the guard and
// session flows raise directly.
var (
	// ErrMissingBearerToken is returned when the Authorization header is
	// absent or does not carry a "Bearer " prefix.
	ErrMissingBearerToken = errors.New("authorization token is missing or invalid")
	// ErrPermissionDenied specializes KindForbidden: used by the JWT codec
	// and the guards to trigger the failure-header path.
	ErrPermissionDenied = errors.New("the provided token has been revoked or is blocklisted")
	// ErrRefreshTokenMissing is returned when a refresh/revoke flow has no
	// token argument and none is found in the request cookie.
	ErrRefreshTokenMissing = errors.New("refresh token is missing")
	// ErrRefreshPayloadNotRefresh is returned when a token presented to the
	// refresh flow lacks the embedded "access" options, i.e. it is an
	// access token, not a refresh token.
	ErrRefreshPayloadNotRefresh = errors.New("token is not a refresh token")
	// ErrExpirationTooLong is returned when an access-token expiration
	// exceeds the 1h hard cap, and also when a refresh-token expiration is
	// shorter than the 24h minimum.
	ErrExpirationTooLong = errors.New("requested expiration is outside the allowed range")
	// ErrSecureDataRequiresEncryptionKey is returned when an api-type token
	// carries secureData without an explicit encryption key.
	ErrSecureDataRequiresEncryptionKey = errors.New("secureData on an api token requires an explicit encryption key")
	// ErrSessionAlreadyAssigned guards the context-immutability invariant:
	// a session may be attached to a request context at most once.
	ErrSessionAlreadyAssigned = errors.New("a session is already assigned to this context")
)

// AsAuthError unwraps err looking for an [*AuthError]. If none is found it
// wraps err as an internal error so the guard always has something to read
// a Kind/Code off of.
func AsAuthError(err error) *AuthError {
	if err == nil {
		return nil
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae
	}
	return newAuthError(KindInternal, "INTERNAL_ERROR", err, nil)
}
