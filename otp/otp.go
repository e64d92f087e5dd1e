// Package otp issues and verifies single-use numeric codes bound to a
// target identifier, stored in an injected cache with a TTL.
//
// Digits are sampled with crypto/rand.Int against a modulus of 10 rather
// than reduced from a random byte mod 10: the byte-mod-10 reduction is
// slightly biased toward digits 0-5 (256 is not a multiple of 10), and
// rand.Int's rejection sampling removes that bias at negligible cost.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/zanix-dev/auth-core/storage"
)

// ErrInvalidLength is returned by Generate for a code length outside the
// supported range.
var ErrInvalidLength = errors.New("invalid otp length")

const (
	keyPrefix     = "zanix:otp:"
	DefaultTTL    = 300 * time.Second
	DefaultLength = 6
	minLength     = 4
	maxLength     = 10
)

// Stores supplies the collaborators Generate/Verify read and write
// through, the same local/distributed tier split package blocklist uses:
// Distributed, when non-nil, is consulted exclusively for write and read;
// otherwise LocalCache carries the code. Verify deletes the entry from
// whichever tiers are configured regardless of which one it read from, so
// a deployment that switches tiers between generate and verify can't
// leave a stale code behind.
type Stores struct {
	LocalCache  storage.LocalCache
	Distributed storage.DistributedStore
}

// Options configures Generate.
type Options struct {
	Target string // required
	TTL    time.Duration
	Length int
}

// Generate produces a Length-digit numeric code, stores it under
// "zanix:otp:<target>" with the given TTL, and returns the code.
//
//	Docs: spec §4.4.
func Generate(ctx context.Context, stores Stores, opts Options) (string, error) {
	length := opts.Length
	if length == 0 {
		length = DefaultLength
	}
	if length < minLength || length > maxLength {
		return "", ErrInvalidLength
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	code, err := newCode(length)
	if err != nil {
		return "", err
	}

	k := key(opts.Target)
	if stores.Distributed != nil {
		if err := stores.Distributed.SaveToCaches(ctx, k, code, ttl); err != nil {
			return "", err
		}
		return code, nil
	}

	if err := stores.LocalCache.Set(ctx, k, code, ttl); err != nil {
		return "", err
	}

	return code, nil
}

// Verify compares code against the stored value for target. A match
// deletes the entry from every configured tier so a second call with the
// same code returns false. An empty code always returns false without
// touching any tier.
//
//	Docs: spec §4.4.
func Verify(ctx context.Context, stores Stores, target, code string) (bool, error) {
	if code == "" {
		return false, nil
	}

	k := key(target)

	var stored string
	var found bool
	var err error
	switch {
	case stores.Distributed != nil:
		stored, found, err = stores.Distributed.Get(ctx, k)
	case stores.LocalCache != nil:
		stored, found, err = stores.LocalCache.Get(ctx, k)
	}
	if err != nil {
		return false, err
	}
	if !found || stored != code {
		return false, nil
	}

	if stores.Distributed != nil {
		if err := stores.Distributed.Delete(ctx, k); err != nil {
			return false, err
		}
	}
	if stores.LocalCache != nil {
		if err := stores.LocalCache.Delete(ctx, k); err != nil {
			return false, err
		}
	}

	return true, nil
}

func key(target string) string {
	return keyPrefix + target
}

func newCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)

	max := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}
