package session

import "errors"

var (
	// ErrUnknownTokenType is returned when Type is neither "user" nor "api".
	ErrUnknownTokenType = errors.New("unknown token type")
	// ErrAccessExpirationTooLong is returned by CreateAccessToken when the
	// requested expiration exceeds one hour.
	ErrAccessExpirationTooLong = errors.New("access token expiration exceeds the 3600s cap")
	// ErrRefreshExpirationTooShort is returned by CreateRefreshToken when
	// the requested expiration is shorter than the admissible minimum.
	ErrRefreshExpirationTooShort = errors.New("refresh token expiration must be at least 24h")
	// ErrSecureDataRequiresEncryptionKey is returned by CreateAppToken for
	// an api-type token carrying secureData with no EncryptionKey set.
	ErrSecureDataRequiresEncryptionKey = errors.New("api tokens with secureData require an encryption key")
	// ErrRefreshTokenMissing is returned when no refresh token can be
	// sourced from either the call argument or the fallback cookie.
	ErrRefreshTokenMissing = errors.New("refresh token is missing")
	// ErrNotARefreshToken is returned when a token presented for refresh
	// has no embedded "access" sub-object (i.e. it is an access token).
	ErrNotARefreshToken = errors.New("token is not a refresh token")
	// ErrTokenRevoked is returned when a refresh token is found on the
	// blocklist.
	ErrTokenRevoked = errors.New("token has been revoked")
)
