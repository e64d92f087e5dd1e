// Package blocklist records revoked token identifiers with a TTL tied to
// the token's own expiration, and answers membership queries across a
// local/durable/distributed storage tier.
package blocklist

import (
	"context"
	"time"

	"github.com/zanix-dev/auth-core/jwtcodec"
	"github.com/zanix-dev/auth-core/storage"
)

const keyPrefix = "zanix:jwt-block-list:"

// Options supplies the collaborators Add/Check read and write through.
// Distributed, when non-nil, is consulted exclusively; otherwise
// LocalCache is primary and KV (if non-nil) backfills/mirrors it.
type Options struct {
	LocalCache  storage.LocalCache
	KV          storage.KV
	Distributed storage.DistributedStore
}

// Add decodes token without verifying its signature, and — unless it is
// already expired — records its jti as revoked for the remainder of its
// natural lifetime. A token with no exp claim is not recorded. Returns the
// decoded payload either way.
//
//	Docs: spec §4.5.
func Add(ctx context.Context, token string, opts Options) (jwtcodec.Payload, error) {
	decoded, err := jwtcodec.Decode(token)
	if err != nil {
		return jwtcodec.Payload{}, err
	}
	payload := decoded.Payload

	if payload.Exp == 0 {
		return payload, nil
	}
	ttl := time.Until(time.Unix(payload.Exp, 0))
	if ttl <= 0 {
		return payload, nil
	}

	key := keyPrefix + payload.JTI

	if opts.Distributed != nil {
		if err := opts.Distributed.SaveToCaches(ctx, key, "true", ttl); err != nil {
			return jwtcodec.Payload{}, err
		}
		return payload, nil
	}

	if opts.LocalCache != nil {
		if err := opts.LocalCache.Set(ctx, key, "true", ttl); err != nil {
			return jwtcodec.Payload{}, err
		}
	}
	if opts.KV != nil {
		if err := opts.KV.Set(ctx, key, "true", ttl); err != nil {
			return jwtcodec.Payload{}, err
		}
	}

	return payload, nil
}

// Check reports whether jti is currently revoked.
//
//	Docs: spec §4.5.
func Check(ctx context.Context, jti string, opts Options) (bool, error) {
	key := keyPrefix + jti

	if opts.Distributed != nil {
		_, found, err := opts.Distributed.Get(ctx, key)
		return found, err
	}

	if opts.LocalCache != nil {
		if _, found, err := opts.LocalCache.Get(ctx, key); err != nil {
			return false, err
		} else if found {
			return true, nil
		}
	}

	if opts.KV != nil {
		value, found, err := opts.KV.Get(ctx, key)
		if err != nil {
			return false, err
		}
		if found && opts.LocalCache != nil {
			_ = opts.LocalCache.Set(ctx, key, value, 0)
		}
		return found, nil
	}

	return false, nil
}
