// Package authcore provides the core of a server-side authentication and
// authorization pipeline: JWT issuance and verification with key rotation
// and optional payload encryption, a two-token session model backed by a
// revocation blocklist, a fixed-window rate limiter, single-use OTPs, a
// request guard that composes all of the above, and a generic OAuth2
// user-info bootstrap.
//
// # Architecture boundaries
//
// authcore is the public surface together with its leaf packages
// (jwtcodec, keyregistry, scope, otp, blocklist, ratelimit, session,
// oauth2connector, storage, middleware). The HTTP server framework,
// logging sink, cache/KV providers, and OAuth2 REST transport are external
// collaborators reached only through the interfaces in package storage.
//
// # What this package must NOT do
//
//   - Store user accounts, hash passwords, or orchestrate MFA.
//   - Issue OAuth2 authorization codes (it is a relying party, not an
//     identity provider).
//   - Perform I/O outside of methods that accept a context.Context.
package authcore

// DefaultIssuer is the "iss" claim used when no JWTConfig.Issuer is set
// (DEFAULT_JWT_ISSUER, spec §6). Matches jwtcodec.DefaultIssuer so a
// self-issued token always verifies against the guard's own default
// configuration.
const DefaultIssuer = "zanix-auth"
