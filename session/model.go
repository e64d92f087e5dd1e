// Package session implements the token builders described in spec §4.7:
// issuance of access/refresh JWT pairs, the refresh flow, and bulk
// revocation via package blocklist. It has no dependency on package
// authcore — callers own assigning the resulting payload onto whatever
// session/context representation they use.
package session

import (
	"time"

	"github.com/zanix-dev/auth-core/internal/ttl"
)

// TokenType selects the algorithm, key prefix, and header key used for a
// token (spec §9's "polymorphism across token types").
type TokenType string

const (
	TypeUser TokenType = "user"
	TypeAPI  TokenType = "api"
)

const (
	accessCap          = time.Hour
	refreshMinLifetime = 24 * time.Hour
	accessExpiration   = "1h"
	refreshExpiration  = "1y"
	defaultRateLimit   = 100
)

// Key is the resolved signing/verification material for a token type.
type Key struct {
	Value []byte // HMAC secret for TypeUser, PEM-encoded RSA key for TypeAPI
	KeyID string // header "kid", empty when the key has no version
}

// KeyLookup resolves the active signing key for a token type. Callers
// typically implement this over package keyregistry.
type KeyLookup func(t TokenType) (Key, error)

// AppTokenOptions configures CreateAppToken and its wrappers.
type AppTokenOptions struct {
	Subject       string
	Issuer        string // default iss; empty falls back to jwtcodec.DefaultIssuer
	Expiration    string // TTL string or bare seconds
	Type          TokenType
	Payload       map[string]any // "permissions" is promoted into aud; everything else rides in Extra
	EncryptionKey string
	SecureData    string
}

func (o AppTokenOptions) withDefaults() AppTokenOptions {
	if o.Payload == nil {
		o.Payload = map[string]any{}
	}
	return o
}

func algorithmFor(t TokenType) (isHMAC bool, err error) {
	switch t {
	case TypeUser:
		return true, nil
	case TypeAPI:
		return false, nil
	default:
		return false, ErrUnknownTokenType
	}
}

func permissionsFrom(payload map[string]any) []string {
	raw, ok := payload["permissions"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func parseTTL(s string) (time.Duration, error) {
	return ttl.Parse(s)
}
