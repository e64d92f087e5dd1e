package session

import (
	"context"

	"github.com/zanix-dev/auth-core/jwtcodec"
)

// KeyResolver resolves the verification key for a token given the
// algorithm from its header and its "kid" hint (empty when the token
// carries none). Per spec §9's open question, refresh verification must
// use the same key-resolution path as the guard's own verification so a
// token survives key rotation between issuance and refresh.
type KeyResolver func(algorithm jwtcodec.Algorithm, kid string) ([]byte, error)

// BlocklistChecker reports whether a jti is revoked. Callers typically
// implement this over package blocklist.
type BlocklistChecker func(ctx context.Context, jti string) (bool, error)

// RefreshOptions configures RefreshSessionTokens.
type RefreshOptions struct {
	Token          string // explicit refresh token; falls back to CookieToken when empty
	CookieToken    string // sourced from the request's X-Znx-App-Token cookie/header
	CheckBlocklist BlocklistChecker
}

// RefreshResult is the outcome of RefreshSessionTokens.
type RefreshResult struct {
	Pair
	OldToken string
	Payload  jwtcodec.Payload
}

// RefreshSessionTokens sources a refresh token, verifies it, rejects
// access tokens presented as refresh tokens, consults the blocklist when
// configured, and mints a fresh pair via GenerateSessionTokens.
//
//	Docs: spec §4.7.
func RefreshSessionTokens(ctx context.Context, opts RefreshOptions, resolve KeyResolver, lookup KeyLookup) (RefreshResult, error) {
	token := opts.Token
	if token == "" {
		token = opts.CookieToken
	}
	if token == "" {
		return RefreshResult{}, ErrRefreshTokenMissing
	}

	decoded, err := jwtcodec.Decode(token)
	if err != nil {
		return RefreshResult{}, err
	}

	algorithm, err := algorithmFromHeader(decoded.Header)
	if err != nil {
		return RefreshResult{}, err
	}

	key, err := resolve(algorithm, decoded.KeyID())
	if err != nil {
		return RefreshResult{}, err
	}

	payload, err := jwtcodec.Verify(token, key, jwtcodec.VerifyOptions{Algorithm: algorithm})
	if err != nil {
		return RefreshResult{}, err
	}

	accessRaw, ok := payload.Extra["access"].(map[string]any)
	if !ok {
		return RefreshResult{}, ErrNotARefreshToken
	}

	if opts.CheckBlocklist != nil {
		revoked, err := opts.CheckBlocklist(ctx, payload.JTI)
		if err != nil {
			return RefreshResult{}, err
		}
		if revoked {
			return RefreshResult{}, ErrTokenRevoked
		}
	}

	pair, err := GenerateSessionTokens(appTokenOptionsFromMap(accessRaw), lookup)
	if err != nil {
		return RefreshResult{}, err
	}

	return RefreshResult{Pair: pair, OldToken: token, Payload: payload}, nil
}

func algorithmFromHeader(header map[string]any) (jwtcodec.Algorithm, error) {
	alg, _ := header["alg"].(string)
	switch jwtcodec.Algorithm(alg) {
	case jwtcodec.HS256, jwtcodec.HS384, jwtcodec.HS512, jwtcodec.RS256, jwtcodec.RS384, jwtcodec.RS512:
		return jwtcodec.Algorithm(alg), nil
	default:
		return "", jwtcodec.ErrUnsupportedAlgorithm
	}
}
