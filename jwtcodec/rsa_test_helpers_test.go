package jwtcodec

import (
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/zanix-dev/auth-core/internal/cryptoutil"
)

func generateTestRSAKeys(t *testing.T) (priv, pub []byte) {
	t.Helper()

	key, err := cryptoutil.GenerateRSAKeyPair(2048)
	if err != nil {
		t.Fatalf("generate rsa key: %v", err)
	}

	privDER := x509.MarshalPKCS1PrivateKey(key)
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: privDER})

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		t.Fatalf("marshal public key: %v", err)
	}
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	return privPEM, pubPEM
}
