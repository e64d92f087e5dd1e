package authcore

import (
	"errors"

	"github.com/zanix-dev/auth-core/internal/ttl"
	"github.com/zanix-dev/auth-core/keyregistry"
	"github.com/zanix-dev/auth-core/storage"
)

// Guard is the built, ready-to-use authentication pipeline: it owns the
// key registry and whichever storage collaborators were wired in and
// exposes Authenticate as its request-authentication entry point, alongside
// GuardRateLimit, the session, OTP and OAuth2 helpers.
//
// Guard instances are intended to be built once during initialization and
// then used concurrently; all of its state is either immutable or backed
// by a concurrency-safe collaborator.
type Guard struct {
	config      Config
	keyRegistry *keyregistry.Registry

	local       storage.LocalStore
	distributed storage.DistributedStore
	kv          storage.KV
	httpClient  storage.HTTPClient
}

// Builder assembles a Guard from a Config plus the storage collaborators
// the host application provides.
type Builder struct {
	config Config

	local       storage.LocalStore
	distributed storage.DistributedStore
	kv          storage.KV
	httpClient  storage.HTTPClient
	keySource   keyregistry.Source

	built bool
}

// New starts a Builder with DefaultConfig and an in-process MemoryCache as
// the local storage tier; callers override either with WithConfig /
// WithLocalCache.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
		local:  storage.NewMemoryCache(),
	}
}

// WithConfig overrides the default configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithLocalCache overrides the local cache collaborator. It must also
// support Lock, since the local rate-limit path acquires a per-key lock
// from it directly (spec §4.6); storage.NewMemoryCache satisfies this.
func (b *Builder) WithLocalCache(c storage.LocalStore) *Builder {
	b.local = c
	return b
}

// WithDistributedStore sets the exclusive distributed store (Redis or
// equivalent). When set it takes precedence over LocalCache for blocklist
// and rate-limit operations, per spec §4.5/§4.6.
func (b *Builder) WithDistributedStore(s storage.DistributedStore) *Builder {
	b.distributed = s
	return b
}

// WithKV sets the durable KV mirror consulted when no DistributedStore is
// configured.
func (b *Builder) WithKV(kv storage.KV) *Builder {
	b.kv = kv
	return b
}

// WithHTTPClient overrides the outbound HTTP collaborator used by package
// oauth2connector. Defaults to storage.DefaultHTTPClient.
func (b *Builder) WithHTTPClient(c storage.HTTPClient) *Builder {
	b.httpClient = c
	return b
}

// WithKeySource overrides where the key registry reads named values from.
// Defaults to the process environment.
func (b *Builder) WithKeySource(source keyregistry.Source) *Builder {
	b.keySource = source
	return b
}

// Build validates the accumulated configuration and returns a ready Guard.
// A Builder can only be built once.
func (b *Builder) Build() (*Guard, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	rotationCycle, err := ttl.Parse(cfg.JWT.RotationCycle)
	if err != nil {
		return nil, err
	}

	if b.local == nil {
		b.local = storage.NewMemoryCache()
	}
	if b.httpClient == nil {
		b.httpClient = storage.NewDefaultHTTPClient(0)
	}

	guard := &Guard{
		config:      cfg,
		keyRegistry: keyregistry.New(b.keySource, rotationCycle),
		local:       b.local,
		distributed: b.distributed,
		kv:          b.kv,
		httpClient:  b.httpClient,
	}

	b.built = true
	return guard, nil
}
