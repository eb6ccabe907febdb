package tenant

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/secrets"
)

// Headers exchanged with clients and with the analytics service.
const (
	HeaderTenantID = "X-Tenant-Cnpj"
	HeaderDBConfig = "X-Tenant-Db-Config"
	HeaderDBToken  = "X-Tenant-Db-Token"
)

// DefaultTokenTTL bounds how long a sealed config token stays valid.
const DefaultTokenTTL = 2 * time.Minute

// Request carries the request metadata the resolver looks at.
type Request struct {
	TenantID    string
	ConfigHint  string
	SealedToken string
}

// RequestFromHTTP reads the tenant headers from r.
func RequestFromHTTP(r *http.Request) Request {
	return Request{
		TenantID:    r.Header.Get(HeaderTenantID),
		ConfigHint:  r.Header.Get(HeaderDBConfig),
		SealedToken: r.Header.Get(HeaderDBToken),
	}
}

// Source names the tier that produced a binding.
type Source string

const (
	SourceCache     Source = "cache"
	SourceHint      Source = "hint"
	SourceDirectory Source = "directory"
)

// Binding is the resolved tenant for one request.
type Binding struct {
	Identity Identity
	Config   ConnConfig
	Pool     Pool
	Source   Source
}

// Resolver turns request metadata into a Binding: registry first, then the
// credential hint, then the master directory.
type Resolver struct {
	registry  *Registry
	directory Directory
	sealKey   []byte
	logger    *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

func WithResolverLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger.OrDiscard(l)
	}
}

// WithSealingKey makes the resolver accept only sealed hints
// (x-tenant-db-token) opened with key. Plaintext hints are then ignored.
func WithSealingKey(key []byte) ResolverOption {
	return func(r *Resolver) {
		r.sealKey = key
	}
}

// NewResolver creates a resolver. A nil directory disables the third tier.
func NewResolver(registry *Registry, directory Directory, opts ...ResolverOption) *Resolver {
	if registry == nil {
		panic("tenant: nil registry")
	}
	r := &Resolver{
		registry:  registry,
		directory: directory,
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("tenant.resolver"))
	return r
}

// Resolve returns the binding for req, or nil when no tenant can be
// identified. Unknown tenants, bad hints and directory failures are logged,
// never returned.
func (r *Resolver) Resolve(ctx context.Context, req Request) *Binding {
	if req.TenantID == "" {
		return nil
	}

	id, err := ParseIdentity(req.TenantID)
	if err != nil {
		r.logger.DebugContext(ctx, "ignoring tenant header", logger.Error(err))
		return nil
	}

	if e, ok := r.registry.Get(id.Key); ok {
		return &Binding{Identity: id, Config: e.Config, Pool: e.Pool, Source: SourceCache}
	}

	cfg, err := r.hint(id, req)
	switch {
	case err == nil:
		if b := r.bind(ctx, id, cfg, SourceHint); b != nil {
			return b
		}
	case errors.Is(err, errHintAbsent):
	default:
		r.logger.DebugContext(ctx, "ignoring tenant config hint", logger.Tenant(id.Key), logger.Error(err))
	}

	if r.directory == nil {
		return nil
	}

	cfg, err = r.directory.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			r.logger.InfoContext(ctx, "tenant not found in directory", logger.Tenant(id.Key))
		} else {
			r.logger.ErrorContext(ctx, "tenant directory lookup failed", logger.Tenant(id.Key), logger.Error(err))
		}
		return nil
	}

	return r.bind(ctx, id, cfg, SourceDirectory)
}

func (r *Resolver) hint(id Identity, req Request) (ConnConfig, error) {
	var data []byte
	if r.sealKey != nil {
		if req.SealedToken == "" {
			return ConnConfig{}, errHintAbsent
		}
		opened, err := secrets.Open(r.sealKey, id.Key, req.SealedToken)
		if err != nil {
			return ConnConfig{}, errors.Join(ErrHintInvalid, err)
		}
		data = opened
	} else {
		if req.ConfigHint == "" {
			return ConnConfig{}, errHintAbsent
		}
		data = []byte(req.ConfigHint)
	}

	cfg, err := ParseConnConfig(data)
	if err != nil {
		return ConnConfig{}, errors.Join(ErrHintInvalid, err)
	}
	return cfg, nil
}

func (r *Resolver) bind(ctx context.Context, id Identity, cfg ConnConfig, src Source) *Binding {
	pool, err := r.registry.Upsert(ctx, id.Key, cfg)
	if err != nil {
		r.logger.ErrorContext(ctx, "tenant pool unavailable",
			logger.Tenant(id.Key), logger.Source(string(src)), logger.Error(err))
		return nil
	}
	r.logger.DebugContext(ctx, "tenant resolved", logger.Tenant(id.Key), logger.Source(string(src)))
	return &Binding{Identity: id, Config: cfg, Pool: pool, Source: src}
}
