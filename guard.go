package authcore

import (
	"context"

	"github.com/zanix-dev/auth-core/blocklist"
	"github.com/zanix-dev/auth-core/internal/cryptoutil"
	"github.com/zanix-dev/auth-core/jwtcodec"
	"github.com/zanix-dev/auth-core/scope"
	"github.com/zanix-dev/auth-core/session"
)

// GuardOptions configures a single Authenticate call.
type GuardOptions struct {
	Type                SessionType // defaults to SessionUser
	RequiredPermissions []string
	RateLimitEnabled    bool
	RateLimitKey        string // defaults to the verified payload's subject
}

// Authenticate runs the full verify → blocklist → rate-limit pipeline
// described in spec §2's data flow and returns the session to assign to
// the request context. On any failure it returns a nil session and an
// [*AuthError] whose Kind the caller maps to a status code;
// GetDefaultSessionHeaders builds the accompanying response headers.
//
//	Docs: spec §4.7 (guard composition), §7 (error handling).
func (g *Guard) Authenticate(ctx context.Context, bearerToken string, opts GuardOptions) (*Session, error) {
	if opts.Type == "" {
		opts.Type = SessionUser
	}

	if bearerToken == "" {
		return nil, newAuthError(KindUnauthorized, "UNAUTHORIZED", ErrMissingBearerToken, nil)
	}

	algorithm := g.algorithmFor(opts.Type)

	decoded, err := jwtcodec.Decode(bearerToken)
	if err != nil {
		return nil, newAuthError(KindForbidden, "INVALID_TOKEN", err, nil)
	}

	key, err := g.resolveVerificationKey(algorithm, decoded.KeyID())
	if err != nil {
		return nil, newAuthError(KindInternal, "INTERNAL_SERVER_ERROR", err, nil)
	}

	payload, err := jwtcodec.Verify(bearerToken, key, jwtcodec.VerifyOptions{
		Algorithm:     algorithm,
		Issuer:        g.config.JWT.Issuer,
		Audience:      opts.RequiredPermissions,
		EncryptionKey: g.config.JWT.EncryptionKey,
	})
	if err != nil {
		return nil, g.verifyFailure(err)
	}

	revoked, err := blocklist.Check(ctx, payload.JTI, g.blocklistOptions())
	if err != nil {
		return nil, newAuthError(KindInternal, "INTERNAL_SERVER_ERROR", err, nil)
	}
	if revoked {
		return nil, newAuthError(KindForbidden, "TOKEN_REVOKED", ErrPermissionDenied, nil)
	}

	if len(opts.RequiredPermissions) > 0 {
		if res := scope.Validate(opts.RequiredPermissions, payload.Aud); !res.OK {
			return nil, newAuthError(KindForbidden, "PERMISSION_DENIED", ErrPermissionDenied, map[string]any{"reason": res.Reason})
		}
	}

	var rlHeaders map[string]string
	if opts.RateLimitEnabled {
		limitKey := opts.RateLimitKey
		if limitKey == "" {
			limitKey = payload.Sub
		}

		result, headers, err := g.checkRateLimit(ctx, limitKey, int64(payload.RateLimit))
		if err != nil {
			return nil, newAuthError(KindInternal, "INTERNAL_SERVER_ERROR", err, nil)
		}
		rlHeaders = headers
		if !result.CanContinue {
			return nil, newAuthError(KindTooManyRequests, "TOO_MANY_REQUESTS", nil, map[string]any{
				"retryAfter":    g.config.RateLimit.WindowSeconds,
				"headers":       headers,
				"sessionStatus": StatusBlocked,
			})
		}
	}

	return &Session{
		ID:        payload.JTI,
		Type:      opts.Type,
		Subject:   payload.Sub,
		RateLimit: int64(payload.RateLimit),
		Scope:     payload.Aud,
		Status:    StatusActive,
		Payload:   payload.Extra,
		Headers:   rlHeaders,
	}, nil
}

func (g *Guard) verifyFailure(err error) *AuthError {
	switch {
	case err == jwtcodec.ErrInvalidTokenSignature:
		return newAuthError(KindForbidden, "INVALID_TOKEN_SIGNATURE", err, nil)
	case errorIsExpired(err):
		tokErr, _ := err.(*jwtcodec.TokenError)
		var meta map[string]any
		if tokErr != nil {
			meta = tokErr.Meta
		}
		return newAuthError(KindForbidden, "EXPIRED_TOKEN", err, meta)
	case err == jwtcodec.ErrInvalidTokenIssuer, err == jwtcodec.ErrInvalidTokenSubject:
		return newAuthError(KindForbidden, "INVALID_TOKEN", err, nil)
	case err == jwtcodec.ErrInvalidTokenPermissions:
		return newAuthError(KindForbidden, "PERMISSION_DENIED", err, nil)
	default:
		return newAuthError(KindForbidden, "INVALID_TOKEN", err, nil)
	}
}

func errorIsExpired(err error) bool {
	_, ok := err.(*jwtcodec.TokenError)
	return ok
}

func (g *Guard) algorithmFor(t SessionType) jwtcodec.Algorithm {
	if t == SessionAPI {
		return jwtcodec.RS256
	}
	return jwtcodec.HS256
}

func (g *Guard) resolveVerificationKey(algorithm jwtcodec.Algorithm, kid string) ([]byte, error) {
	prefix := g.config.JWT.KeyEnvPrefix
	if algorithm.IsRSA() {
		prefix = g.config.JWT.PublicKeyEnvPrefix
	}

	raw, err := g.keyRegistry.GetByKid(prefix, kid)
	if err != nil {
		return nil, err
	}
	if !algorithm.IsRSA() {
		return []byte(raw), nil
	}
	return decodeBase64Key(raw)
}

// keyLookup adapts the registry's rotation-aware active-key selection
// into the session package's KeyLookup shape, for token issuance.
func (g *Guard) keyLookup(t session.TokenType) (session.Key, error) {
	prefix := g.config.JWT.KeyEnvPrefix
	algorithm := g.algorithmFor(SessionUser)
	if t == session.TypeAPI {
		prefix = g.config.JWT.PrivateKeyEnvPrefix
		algorithm = jwtcodec.RS256
	}

	entry, err := g.keyRegistry.GetActive(prefix)
	if err != nil {
		return session.Key{}, err
	}

	value := []byte(entry.Value)
	if algorithm.IsRSA() {
		decoded, err := decodeBase64Key(entry.Value)
		if err != nil {
			return session.Key{}, err
		}
		value = decoded
	}

	return session.Key{Value: value, KeyID: entry.Version}, nil
}

// keyResolver adapts the registry's kid-based resolution into the session
// package's KeyResolver shape, for refresh-token verification.
func (g *Guard) keyResolver(algorithm jwtcodec.Algorithm, kid string) ([]byte, error) {
	return g.resolveVerificationKey(algorithm, kid)
}

func (g *Guard) blocklistOptions() blocklist.Options {
	return blocklist.Options{LocalCache: g.local, KV: g.kv, Distributed: g.distributed}
}

func decodeBase64Key(value string) ([]byte, error) {
	return cryptoutil.DecodeBase64(value)
}
