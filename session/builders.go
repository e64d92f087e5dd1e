package session

import (
	"github.com/zanix-dev/auth-core/jwtcodec"
)

// CreateAppToken selects the algorithm from opts.Type, resolves the
// active key via lookup, promotes payload.permissions into aud, defaults
// rateLimit to 100, and delegates to package jwtcodec.
//
//	Docs: spec §4.7.
func CreateAppToken(opts AppTokenOptions, lookup KeyLookup) (string, jwtcodec.Payload, error) {
	opts = opts.withDefaults()

	isHMAC, err := algorithmFor(opts.Type)
	if err != nil {
		return "", jwtcodec.Payload{}, err
	}

	if !isHMAC && opts.SecureData != "" && opts.EncryptionKey == "" {
		return "", jwtcodec.Payload{}, ErrSecureDataRequiresEncryptionKey
	}

	key, err := lookup(opts.Type)
	if err != nil {
		return "", jwtcodec.Payload{}, err
	}

	algorithm := jwtcodec.RS256
	if isHMAC {
		algorithm = jwtcodec.HS256
	}

	rateLimit := defaultRateLimit
	if v, ok := opts.Payload["rateLimit"]; ok {
		if n, ok := v.(int); ok {
			rateLimit = n
		}
	}

	extra := make(map[string]any, len(opts.Payload))
	for k, v := range opts.Payload {
		if k == "permissions" || k == "rateLimit" {
			continue
		}
		extra[k] = v
	}

	payload := jwtcodec.Payload{
		Sub:        opts.Subject,
		Aud:        permissionsFrom(opts.Payload),
		RateLimit:  rateLimit,
		SecureData: opts.SecureData,
		Extra:      extra,
	}

	token, err := jwtcodec.Create(payload, key.Value, jwtcodec.CreateOptions{
		Algorithm:     algorithm,
		KeyID:         key.KeyID,
		Issuer:        opts.Issuer,
		Expiration:    opts.Expiration,
		EncryptionKey: opts.EncryptionKey,
	})
	if err != nil {
		return "", jwtcodec.Payload{}, err
	}

	decoded, err := jwtcodec.Decode(token)
	if err != nil {
		return "", jwtcodec.Payload{}, err
	}

	return token, decoded.Payload, nil
}

// CreateAccessToken is CreateAppToken with a hard cap: expirations beyond
// one hour are rejected.
//
//	Docs: spec §4.7.
func CreateAccessToken(opts AppTokenOptions, lookup KeyLookup) (string, jwtcodec.Payload, error) {
	if opts.Expiration != "" {
		d, err := parseTTL(opts.Expiration)
		if err != nil {
			return "", jwtcodec.Payload{}, err
		}
		if d > accessCap {
			return "", jwtcodec.Payload{}, ErrAccessExpirationTooLong
		}
	}
	return CreateAppToken(opts, lookup)
}

// CreateRefreshToken is a thin wrapper over CreateAppToken that rejects
// short-lived expirations; refresh tokens are meant to outlive the access
// tokens they mint.
//
//	Docs: spec §4.7.
func CreateRefreshToken(opts AppTokenOptions, lookup KeyLookup) (string, jwtcodec.Payload, error) {
	if opts.Expiration != "" {
		d, err := parseTTL(opts.Expiration)
		if err != nil {
			return "", jwtcodec.Payload{}, err
		}
		if d < refreshMinLifetime {
			return "", jwtcodec.Payload{}, ErrRefreshExpirationTooShort
		}
	}
	return CreateAppToken(opts, lookup)
}

// Pair is the result of GenerateSessionTokens.
type Pair struct {
	AccessToken    string
	RefreshToken   string
	AccessPayload  jwtcodec.Payload
	RefreshPayload jwtcodec.Payload
}

// GenerateSessionTokens atomically produces an access/refresh pair: access
// with a 1h expiration, refresh with a 1y expiration embedding the
// original opts under "access" so RefreshSessionTokens can reconstruct an
// equivalent pair later.
//
//	Docs: spec §4.7.
func GenerateSessionTokens(opts AppTokenOptions, lookup KeyLookup) (Pair, error) {
	accessOpts := opts
	accessOpts.Expiration = accessExpiration

	accessToken, accessPayload, err := CreateAccessToken(accessOpts, lookup)
	if err != nil {
		return Pair{}, err
	}

	refreshOpts := opts
	refreshOpts.Expiration = refreshExpiration
	if refreshOpts.Payload == nil {
		refreshOpts.Payload = map[string]any{}
	}
	refreshOpts.Payload = cloneMap(refreshOpts.Payload)
	refreshOpts.Payload["access"] = appTokenOptionsToMap(opts)

	refreshToken, refreshPayload, err := CreateRefreshToken(refreshOpts, lookup)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:    accessToken,
		RefreshToken:   refreshToken,
		AccessPayload:  accessPayload,
		RefreshPayload: refreshPayload,
	}, nil
}

func appTokenOptionsToMap(opts AppTokenOptions) map[string]any {
	return map[string]any{
		"subject":       opts.Subject,
		"issuer":        opts.Issuer,
		"type":          string(opts.Type),
		"payload":       opts.Payload,
		"encryptionKey": opts.EncryptionKey,
	}
}

func appTokenOptionsFromMap(m map[string]any) AppTokenOptions {
	opts := AppTokenOptions{}
	if v, ok := m["subject"].(string); ok {
		opts.Subject = v
	}
	if v, ok := m["issuer"].(string); ok {
		opts.Issuer = v
	}
	if v, ok := m["type"].(string); ok {
		opts.Type = TokenType(v)
	}
	if v, ok := m["payload"].(map[string]any); ok {
		opts.Payload = v
	}
	if v, ok := m["encryptionKey"].(string); ok {
		opts.EncryptionKey = v
	}
	return opts
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
