package tenant

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/tenantdb/pkg/logger"
)

// Middleware resolves the tenant once per request and binds the result to
// the request context. Requests without a resolvable tenant continue with
// an empty binding; RequireTenant decides which routes reject them.
func Middleware(resolver *Resolver, opts ...Option) func(http.Handler) http.Handler {
	if resolver == nil {
		panic("tenant: nil resolver")
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	log := logger.OrDiscard(cfg.logger).With(logger.Component("tenant.middleware"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			req := RequestFromHTTP(r)
			b := resolver.Resolve(r.Context(), req)
			if b == nil && req.TenantID != "" {
				log.DebugContext(r.Context(), "request continues without tenant binding")
			}

			next.ServeHTTP(w, r.WithContext(WithBinding(r.Context(), b)))
		})
	}
}

// RequireTenant rejects requests whose context carries no tenant pool.
// A nil errorHandler uses DefaultErrorHandler.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := CurrentPool(r.Context()); !ok {
				errorHandler(w, r, ErrCompanyNotIdentified)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
