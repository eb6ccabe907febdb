package tenant

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/requestid"
	"github.com/dmitrymomot/tenantdb/pkg/secrets"
)

// Forwarder copies the resolved tenant onto requests sent to the analytics
// service, so that service can open the same tenant database on its own.
type Forwarder struct {
	sealKey  []byte
	tokenTTL time.Duration
	logger   *slog.Logger
}

// ForwarderOption configures a Forwarder.
type ForwarderOption func(*Forwarder)

func WithForwarderLogger(l *slog.Logger) ForwarderOption {
	return func(f *Forwarder) {
		f.logger = logger.OrDiscard(l)
	}
}

// WithForwardSealing sends the config as a sealed x-tenant-db-token valid
// for ttl instead of the plaintext x-tenant-db-config header.
// A non-positive ttl uses DefaultTokenTTL.
func WithForwardSealing(key []byte, ttl time.Duration) ForwarderOption {
	return func(f *Forwarder) {
		f.sealKey = key
		if ttl > 0 {
			f.tokenTTL = ttl
		}
	}
}

func NewForwarder(opts ...ForwarderOption) *Forwarder {
	f := &Forwarder{
		tokenTTL: DefaultTokenTTL,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With(logger.Component("tenant.forwarder"))
	return f
}

// Apply rewrites out for a proxied request. Inbound credential headers are
// always dropped. When in names a tenant, the identity is forwarded as is,
// together with the config bound to ctx. A missing binding is logged and the
// identity goes out alone.
func (f *Forwarder) Apply(ctx context.Context, in, out http.Header) {
	out.Del(HeaderDBConfig)
	out.Del(HeaderDBToken)
	requestid.Propagate(ctx, out)

	raw := in.Get(HeaderTenantID)
	if raw == "" {
		out.Del(HeaderTenantID)
		return
	}
	out.Set(HeaderTenantID, raw)

	b, ok := BindingFromContext(ctx)
	if !ok {
		f.logger.WarnContext(ctx, "forwarding tenant identity without config", slog.String("tax_id", raw))
		return
	}

	payload, err := json.Marshal(b.Config)
	if err != nil {
		f.logger.ErrorContext(ctx, "failed to encode tenant config", logger.Tenant(b.Identity.Key), logger.Error(err))
		return
	}

	if f.sealKey == nil {
		out.Set(HeaderDBConfig, string(payload))
		return
	}

	token, err := secrets.Seal(f.sealKey, b.Identity.Key, payload, f.tokenTTL)
	if err != nil {
		f.logger.ErrorContext(ctx, "failed to seal tenant config", logger.Tenant(b.Identity.Key), logger.Error(err))
		return
	}
	out.Set(HeaderDBToken, token)
}

// NewProxy returns a reverse proxy to target that applies fwd to every
// request. Upstream failures answer 502.
func NewProxy(target *url.URL, fwd *Forwarder, l *slog.Logger) *httputil.ReverseProxy {
	if fwd == nil {
		fwd = NewForwarder(WithForwarderLogger(l))
	}
	log := logger.OrDiscard(l).With(logger.Component("tenant.proxy"))

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			fwd.Apply(pr.In.Context(), pr.In.Header, pr.Out.Header)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.ErrorContext(r.Context(), "analytics upstream failed",
				slog.String("path", r.URL.Path), logger.Error(err))
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}
