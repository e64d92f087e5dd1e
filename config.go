package authcore

import (
	"os"

	"github.com/zanix-dev/auth-core/internal/ttl"
)

// Config defines the tunables the Builder wires into a Guard. The defaults
// noted on each field are the values DefaultConfig sets; a zero field in a
// Config passed to Builder.WithConfig is used as given, except that the
// rate-limit window and failed-attempt ceiling fall back to 60 and 3.
// LoadConfigFromEnv populates a Config from the environment variables in
// spec §6.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable once passed to Builder.WithConfig.
type Config struct {
	JWT        JWTConfig
	RateLimit  RateLimitConfig
	OAuth2     OAuth2Config
	CookieName string // name of the refresh cookie; defaults to AppTokenHeader. Nothing in this module reads the cookie: callers pass its value as RefreshOptions/RevokeSessionOptions.CookieToken
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig controls key resolution and the default issuer.
type JWTConfig struct {
	Issuer string // default DefaultIssuer

	KeyEnvPrefix        string // env prefix for the user/HMAC secret; default "JWT_KEY"
	PrivateKeyEnvPrefix string // env prefix for the api/RSA private key; default "JWK_PRI"
	PublicKeyEnvPrefix  string // env prefix for the api/RSA public key; default "JWK_PUB"

	RotationCycle string // TTL string for key rotation; default "30d"; "0" disables

	EncryptionKey string // combined with the signing secret to derive the secureData AES key
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig controls the fixed-window limiter's defaults.
type RateLimitConfig struct {
	WindowSeconds     int64  // default 60
	MaxFailedAttempts int64  // default 3
	Plans             string // "idx:max;idx:max;…"
}

/*
====================================
OAUTH2 CONFIG
====================================
*/

// OAuth2Config carries the relying-party inputs for package
// oauth2connector.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// DefaultConfig returns a Config with every field set to its documented
// default; callers typically start here and override only what they need.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			Issuer:              DefaultIssuer,
			KeyEnvPrefix:        "JWT_KEY",
			PrivateKeyEnvPrefix: "JWK_PRI",
			PublicKeyEnvPrefix:  "JWK_PUB",
			RotationCycle:       "30d",
		},
		RateLimit: RateLimitConfig{
			WindowSeconds:     60,
			MaxFailedAttempts: 3,
		},
		CookieName: AppTokenHeader,
	}
}

// LoadConfigFromEnv starts from DefaultConfig and overrides fields that
// have a corresponding environment variable set, per spec §6.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("JWK_ROTATION_CYCLE"); ok {
		cfg.JWT.RotationCycle = v
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_WINDOW_SECONDS"); ok {
		cfg.RateLimit.WindowSeconds = ttl.Seconds(v, cfg.RateLimit.WindowSeconds)
	}
	if v, ok := os.LookupEnv("RATE_LIMIT_PLANS"); ok {
		cfg.RateLimit.Plans = v
	}
	if v, ok := os.LookupEnv("GOOGLE_OAUTH2_CLIENT_ID"); ok {
		cfg.OAuth2.ClientID = v
	}
	if v, ok := os.LookupEnv("GOOGLE_OAUTH2_CLIENT_SECRET"); ok {
		cfg.OAuth2.ClientSecret = v
	}
	if v, ok := os.LookupEnv("GOOGLE_OAUTH2_REDIRECT_URI"); ok {
		cfg.OAuth2.RedirectURI = v
	}

	return cfg
}

func cloneConfig(cfg Config) Config {
	return cfg
}
