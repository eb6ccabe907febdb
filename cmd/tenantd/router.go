package main

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/tenantdb/pkg/httpserver"
	"github.com/dmitrymomot/tenantdb/pkg/pg"
	"github.com/dmitrymomot/tenantdb/pkg/requestid"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
	"github.com/dmitrymomot/tenantdb/svc/orders"
)

type routerDeps struct {
	log           *slog.Logger
	master        tenant.Pool
	resolver      *tenant.Resolver
	forwarder     *tenant.Forwarder
	analytics     *url.URL
	healthTimeout time.Duration
}

// newRouter wires the HTTP surface. Health probes never resolve a tenant;
// everything under /api and /analytics does.
func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(d.log, d.healthTimeout,
		httpserver.Check{Name: "master", Run: pg.Healthcheck(d.master)},
	))

	r.Group(func(r chi.Router) {
		r.Use(tenant.Middleware(d.resolver, tenant.WithLogger(d.log)))

		r.Route("/api", orders.NewHandler(tenant.NewDB(d.master), d.log).Routes)

		if d.analytics != nil {
			proxy := tenant.NewProxy(d.analytics, d.forwarder, d.log)
			r.Handle("/analytics/*", http.StripPrefix("/analytics", proxy))
		}
	})

	return r
}
