// Package jwtcodec implements JWT issuance and verification with support
// for HS256/384/512 and RS256/384/512, kid-based key hinting, and an
// optional encrypted "secureData" payload field. Signing and parsing
// mechanics are delegated to github.com/golang-jwt/jwt/v5; claim
// validation (exp/iss/aud/sub) is implemented here so the audience check
// can use package scope's any-overlap semantics instead of
// golang-jwt's subset check.
package jwtcodec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zanix-dev/auth-core/internal/cryptoutil"
	"github.com/zanix-dev/auth-core/internal/ttl"
	"github.com/zanix-dev/auth-core/scope"
)

// Algorithm names a supported signing algorithm.
type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
	RS512 Algorithm = "RS512"
)

// DefaultIssuer is the fallback "iss" claim (DEFAULT_JWT_ISSUER).
const DefaultIssuer = "zanix-auth"

func signingMethod(alg Algorithm) jwt.SigningMethod {
	switch alg {
	case HS256:
		return jwt.SigningMethodHS256
	case HS384:
		return jwt.SigningMethodHS384
	case HS512:
		return jwt.SigningMethodHS512
	case RS256:
		return jwt.SigningMethodRS256
	case RS384:
		return jwt.SigningMethodRS384
	case RS512:
		return jwt.SigningMethodRS512
	default:
		return nil
	}
}

// IsRSA reports whether alg is one of the RS* family.
func (a Algorithm) IsRSA() bool { return strings.HasPrefix(string(a), "RS") }

// CreateOptions configures Create.
type CreateOptions struct {
	Algorithm     Algorithm
	KeyID         string // header "kid", if the caller wants the resulting key hinted
	Issuer        string // default iss when Payload.Iss is empty; falls back to DefaultIssuer
	Expiration    string // TTL string or bare seconds; empty means no exp claim
	EncryptionKey string // combined with secret to derive the secureData AES key
	Logger        *log.Logger
}

func (o CreateOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// Create issues a signed token for payload under key (an HMAC secret for
// HS*, or a PEM-encoded RSA private key for RS*).
//
//	Docs: spec §4.2.
func Create(payload Payload, key []byte, opts CreateOptions) (string, error) {
	method := signingMethod(opts.Algorithm)
	if method == nil {
		return "", ErrUnsupportedAlgorithm
	}

	out := payload.Clone()
	if out.JTI == "" {
		out.JTI = cryptoutil.NewID()
	}
	if out.Iss == "" {
		out.Iss = opts.Issuer
		if out.Iss == "" {
			out.Iss = DefaultIssuer
		}
	}

	if opts.Expiration != "" {
		d, err := ttl.Parse(opts.Expiration)
		if err != nil {
			return "", err
		}
		if d <= 0 {
			return "", ErrNonPositiveExpiration
		}
		out.Exp = time.Now().Add(d).Unix()
	}

	if out.SecureData != "" {
		if opts.Algorithm.IsRSA() && opts.EncryptionKey == "" {
			opts.logger().Printf("authcore: jwt: dropping secureData on RSA token %q without an explicit encryption key", out.JTI)
			out.SecureData = ""
		} else {
			secret := opts.EncryptionKey + string(key)
			aesKey := cryptoutil.DeriveKey(secret + out.JTI)
			ciphertext, err := cryptoutil.Encrypt(aesKey, []byte(out.SecureData))
			if err != nil {
				return "", err
			}
			out.SecureData = ciphertext
		}
	}

	signKey, err := signingKey(opts.Algorithm, key)
	if err != nil {
		return "", err
	}

	claims := payloadToMapClaims(out)
	token := jwt.NewWithClaims(method, claims)
	if opts.KeyID != "" {
		token.Header["kid"] = opts.KeyID
	}

	return token.SignedString(signKey)
}

// VerifyOptions configures Verify.
type VerifyOptions struct {
	Algorithm     Algorithm
	Issuer        string   // expected iss; empty skips the check
	Audience      []string // required permissions; empty skips the check
	Subject       string   // expected sub; empty skips the check
	EncryptionKey string   // combined with key to decrypt secureData, if present
	Logger        *log.Logger
}

func (o VerifyOptions) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.Default()
}

// Verify checks signature and claims, returning the decoded Payload.
//
//	Docs: spec §4.2.
func Verify(token string, key []byte, opts VerifyOptions) (Payload, error) {
	method := signingMethod(opts.Algorithm)
	if method == nil {
		return Payload{}, ErrUnsupportedAlgorithm
	}

	verifyKey, err := verificationKey(opts.Algorithm, key)
	if err != nil {
		return Payload{}, err
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := jwt.MapClaims{}
	_, err = parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return verifyKey, nil
	})
	if err != nil {
		if isSignatureError(err) {
			return Payload{}, ErrInvalidTokenSignature
		}
		return Payload{}, ErrInvalidToken
	}

	var payload Payload
	if err := payload.fromMap(claims); err != nil {
		return Payload{}, ErrInvalidToken
	}

	now := time.Now().Unix()
	if payload.Exp != 0 && now > payload.Exp {
		return Payload{}, &TokenError{
			Sentinel: ErrExpiredToken,
			Meta: map[string]any{
				"currentTime":    now,
				"expirationTime": payload.Exp,
			},
		}
	}

	if opts.Issuer != "" && payload.Iss != opts.Issuer {
		return Payload{}, ErrInvalidTokenIssuer
	}

	if len(opts.Audience) > 0 {
		if res := scope.Validate(opts.Audience, payload.Aud); !res.OK {
			return Payload{}, ErrInvalidTokenPermissions
		}
	}

	if opts.Subject != "" && payload.Sub != opts.Subject {
		return Payload{}, ErrInvalidTokenSubject
	}

	if payload.SecureData != "" {
		secret := opts.EncryptionKey + string(key)
		aesKey := cryptoutil.DeriveKey(secret + payload.JTI)
		plaintext, decErr := cryptoutil.Decrypt(aesKey, payload.SecureData)
		if decErr != nil {
			opts.logger().Printf("authcore: jwt: secureData decryption failed for %q: %v", payload.JTI, decErr)
		} else {
			payload.SecureData = string(plaintext)
		}
	}

	return payload, nil
}

// DecodedToken is the result of Decode: the raw header and payload with
// no signature verification performed.
type DecodedToken struct {
	Header    map[string]any
	Payload   Payload
	Signature []byte
}

// KeyID returns the "kid" header value, if present.
func (d DecodedToken) KeyID() string {
	kid, _ := d.Header["kid"].(string)
	return kid
}

// Decode splits token into its three segments and base64url-decodes the
// header and payload without verifying the signature. Used to read kid
// before key selection, and to re-read an already-validated token.
func Decode(token string) (DecodedToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return DecodedToken{}, ErrInvalidToken
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return DecodedToken{}, ErrInvalidToken
	}
	payloadJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return DecodedToken{}, ErrInvalidToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return DecodedToken{}, ErrInvalidToken
	}

	var header map[string]any
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return DecodedToken{}, ErrInvalidToken
	}

	var payload Payload
	var rawPayload map[string]any
	if err := json.Unmarshal(payloadJSON, &rawPayload); err != nil {
		return DecodedToken{}, ErrInvalidToken
	}
	if err := payload.fromMap(rawPayload); err != nil {
		return DecodedToken{}, ErrInvalidToken
	}
	if payload.JTI == "" {
		return DecodedToken{}, ErrMissingJTI
	}

	return DecodedToken{Header: header, Payload: payload, Signature: sig}, nil
}

func payloadToMapClaims(p Payload) jwt.MapClaims {
	raw, _ := p.MarshalJSON()
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	return jwt.MapClaims(m)
}

func signingKey(alg Algorithm, key []byte) (interface{}, error) {
	if alg.IsRSA() {
		return jwt.ParseRSAPrivateKeyFromPEM(key)
	}
	return key, nil
}

func verificationKey(alg Algorithm, key []byte) (interface{}, error) {
	if alg.IsRSA() {
		return jwt.ParseRSAPublicKeyFromPEM(key)
	}
	return key, nil
}

func isSignatureError(err error) bool {
	return errors.Is(err, jwt.ErrTokenSignatureInvalid)
}
