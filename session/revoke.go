package session

import (
	"context"
	"sync"

	"github.com/zanix-dev/auth-core/jwtcodec"
)

// Revoker adds a single token to the blocklist and returns its decoded
// payload. Callers typically implement this over blocklist.Add.
type Revoker func(ctx context.Context, token string) (jwtcodec.Payload, error)

// RevokeAppTokens blocklists one or many tokens concurrently and returns
// their decoded payloads in input order. If any token fails, the error of
// the first failing token in input order is returned, together with the
// payloads of every token that succeeded.
//
//	Docs: spec §4.7.
func RevokeAppTokens(ctx context.Context, tokens []string, revoke Revoker) ([]jwtcodec.Payload, error) {
	payloads := make([]jwtcodec.Payload, len(tokens))
	errs := make([]error, len(tokens))

	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			payload, err := revoke(ctx, token)
			payloads[i] = payload
			errs[i] = err
		}(i, token)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return payloads, err
		}
	}
	return payloads, nil
}

// RevokeSessionOptions configures RevokeSessionToken.
type RevokeSessionOptions struct {
	Token        string // explicit refresh token; falls back to CookieToken
	CookieToken  string
	ContextToken string // the refresh token already known to the in-context session, if any
}

// RevokeSessionToken sources the refresh token the same way
// RefreshSessionTokens does, collects it alongside any context-known
// refresh token, and blocklists all of them.
//
//	Docs: spec §4.7.
func RevokeSessionToken(ctx context.Context, opts RevokeSessionOptions, revoke Revoker) ([]jwtcodec.Payload, error) {
	token := opts.Token
	if token == "" {
		token = opts.CookieToken
	}

	tokens := make([]string, 0, 2)
	if token != "" {
		tokens = append(tokens, token)
	}
	if opts.ContextToken != "" && opts.ContextToken != token {
		tokens = append(tokens, opts.ContextToken)
	}
	if len(tokens) == 0 {
		return nil, ErrRefreshTokenMissing
	}

	return RevokeAppTokens(ctx, tokens, revoke)
}
