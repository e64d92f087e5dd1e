// Package cryptoutil is the crypto primitives adapter shared by the root
// package and its leaf packages: AES-GCM for encrypted JWT payloads, SHA-256
// for key derivation, RSA keygen for asymmetric signing keys, and a UUID
// wrapper for token identifiers. It performs no I/O and holds no state.
//
// # What this package must NOT do
//
//   - Know about JWT, sessions, or HTTP.
//   - Cache or retain key material beyond the call that was given it.
package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrCiphertextTooShort is returned by Decrypt when the input is shorter
// than the AES-GCM nonce it must have been encrypted with.
var ErrCiphertextTooShort = errors.New("ciphertext shorter than gcm nonce")

// NewID returns a new random token identifier (the JWT "jti" claim).
func NewID() string {
	return uuid.NewString()
}

// DeriveKey derives a symmetric AES key from arbitrary secret material by
// hashing it with SHA-256. Used to turn an encryptionKey/secret pair plus a
// token's jti into a per-token AES-256 key, per the JWT codec's secureData
// contract.
func DeriveKey(material string) [32]byte {
	return sha256.Sum256([]byte(material))
}

// Encrypt seals plaintext with AES-GCM under key, returning nonce||ciphertext
// base64url-encoded.
func Encrypt(key [32]byte, plaintext []byte) (string, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. It returns an error if the payload cannot be
// base64-decoded, is shorter than the GCM nonce, or fails authentication.
func Decrypt(key [32]byte, encoded string) ([]byte, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(raw) < nonceSize {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := raw[:nonceSize], raw[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// GenerateRSAKeyPair generates an RSA key pair of the given bit size,
// delegated entirely to crypto/rsa; used by operators provisioning a new
// asymmetric key-registry version.
func GenerateRSAKeyPair(bits int) (*rsa.PrivateKey, error) {
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("generate rsa key: %w", err)
	}
	return key, nil
}

// DecodeBase64 decodes key material stored base64-encoded at rest (the
// key registry's on-disk/env representation for RSA keys).
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
