package authcore

import (
	"context"
	"errors"

	"github.com/zanix-dev/auth-core/blocklist"
	"github.com/zanix-dev/auth-core/jwtcodec"
	"github.com/zanix-dev/auth-core/session"
)

// IssueSessionOptions configures GenerateSession.
type IssueSessionOptions struct {
	Subject       string
	Type          session.TokenType
	Payload       map[string]any
	EncryptionKey string
	SecureData    string
}

// GenerateSession issues a fresh access/refresh token pair for subject,
// per spec §4.7's two-token session model.
func (g *Guard) GenerateSession(opts IssueSessionOptions) (session.Pair, error) {
	tokenType := opts.Type
	if tokenType == "" {
		tokenType = session.TypeUser
	}

	pair, err := session.GenerateSessionTokens(session.AppTokenOptions{
		Subject:       opts.Subject,
		Issuer:        g.config.JWT.Issuer,
		Type:          tokenType,
		Payload:       opts.Payload,
		EncryptionKey: opts.EncryptionKey,
		SecureData:    opts.SecureData,
	}, g.keyLookup)
	if err != nil {
		return session.Pair{}, g.translateSessionError(err)
	}
	return pair, nil
}

// RefreshSession exchanges a refresh token for a fresh access/refresh
// pair, checking the blocklist and routing key resolution through the
// same resolver Authenticate uses (spec §9).
func (g *Guard) RefreshSession(ctx context.Context, opts session.RefreshOptions) (session.RefreshResult, error) {
	if opts.CheckBlocklist == nil {
		opts.CheckBlocklist = g.checkBlocklist
	}
	result, err := session.RefreshSessionTokens(ctx, opts, g.keyResolver, g.keyLookup)
	if err != nil {
		return session.RefreshResult{}, g.translateSessionError(err)
	}
	return result, nil
}

// RevokeSession adds the caller's refresh/access tokens to the blocklist.
func (g *Guard) RevokeSession(ctx context.Context, opts session.RevokeSessionOptions) ([]jwtcodec.Payload, error) {
	payloads, err := session.RevokeSessionToken(ctx, opts, g.revoke)
	if err != nil {
		return payloads, g.translateSessionError(err)
	}
	return payloads, nil
}

func (g *Guard) checkBlocklist(ctx context.Context, jti string) (bool, error) {
	return blocklist.Check(ctx, jti, g.blocklistOptions())
}

func (g *Guard) revoke(ctx context.Context, token string) (jwtcodec.Payload, error) {
	return blocklist.Add(ctx, token, g.blocklistOptions())
}

// translateSessionError maps package session's narrower sentinels, plus any
// jwtcodec verification failure RefreshSessionTokens surfaces unwrapped,
// onto the root package's (kind, code, cause) contract, so GenerateSession/
// RefreshSession/RevokeSession callers only ever need to inspect an
// *AuthError, the same as Authenticate.
func (g *Guard) translateSessionError(err error) error {
	switch {
	case errors.Is(err, session.ErrRefreshTokenMissing):
		return newAuthError(KindUnauthorized, "REFRESH_TOKEN_MISSING", ErrRefreshTokenMissing, nil)
	case errors.Is(err, session.ErrNotARefreshToken):
		return newAuthError(KindForbidden, "INVALID_TOKEN", ErrRefreshPayloadNotRefresh, nil)
	case errors.Is(err, session.ErrTokenRevoked):
		return newAuthError(KindForbidden, "TOKEN_REVOKED", ErrPermissionDenied, nil)
	case errors.Is(err, session.ErrAccessExpirationTooLong), errors.Is(err, session.ErrRefreshExpirationTooShort):
		return newAuthError(KindForbidden, "INVALID_EXPIRATION", ErrExpirationTooLong, nil)
	case errors.Is(err, session.ErrSecureDataRequiresEncryptionKey):
		return newAuthError(KindForbidden, "SECURE_DATA_REQUIRES_ENCRYPTION_KEY", ErrSecureDataRequiresEncryptionKey, nil)
	case errorIsExpired(err) || errors.Is(err, jwtcodec.ErrInvalidTokenSignature) || errors.Is(err, jwtcodec.ErrInvalidToken) ||
		errors.Is(err, jwtcodec.ErrInvalidTokenIssuer) || errors.Is(err, jwtcodec.ErrInvalidTokenSubject) || errors.Is(err, jwtcodec.ErrInvalidTokenPermissions):
		return g.verifyFailure(err)
	default:
		return newAuthError(KindInternal, "INTERNAL_SERVER_ERROR", err, nil)
	}
}
