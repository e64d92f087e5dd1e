package authcore

import (
	"context"

	"github.com/zanix-dev/auth-core/otp"
)

// IssueOTP generates and stores a single-use numeric code for target,
// preferring the guard's distributed store when one is configured (spec
// §4.4), falling back to the local cache otherwise.
func (g *Guard) IssueOTP(ctx context.Context, opts otp.Options) (string, error) {
	return otp.Generate(ctx, g.otpStores(), opts)
}

// VerifyOTP checks code against the stored value for target, consuming it
// from every configured tier on a match.
func (g *Guard) VerifyOTP(ctx context.Context, target, code string) (bool, error) {
	return otp.Verify(ctx, g.otpStores(), target, code)
}

func (g *Guard) otpStores() otp.Stores {
	return otp.Stores{LocalCache: g.local, Distributed: g.distributed}
}
