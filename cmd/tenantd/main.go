// Command tenantd serves the multi-tenant API. It resolves each request's
// tenant database from the X-Tenant-Cnpj header and proxies /analytics to
// the analytics service with the resolved tenant attached.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/tenantdb/pkg/config"
	"github.com/dmitrymomot/tenantdb/pkg/httpserver"
	"github.com/dmitrymomot/tenantdb/pkg/logger"
	"github.com/dmitrymomot/tenantdb/pkg/pg"
	"github.com/dmitrymomot/tenantdb/pkg/requestid"
	"github.com/dmitrymomot/tenantdb/pkg/secrets"
	"github.com/dmitrymomot/tenantdb/pkg/tenant"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tenantd:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(
		logger.WithEnvironment(cfg.Env, cfg.Service),
		logger.WithContextExtractors(requestid.LoggerExtractor(), tenant.LoggerExtractor()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hintKey, err := secrets.ParseKey(cfg.HintKey)
	if err != nil {
		return errors.Join(errors.New("TENANT_HINT_KEY"), err)
	}
	forwardKey, err := secrets.ParseKey(cfg.ForwardKey)
	if err != nil {
		return errors.Join(errors.New("TENANT_FORWARD_KEY"), err)
	}

	var analytics *url.URL
	if cfg.AnalyticsURL != "" {
		if analytics, err = url.Parse(cfg.AnalyticsURL); err != nil {
			return errors.Join(errors.New("ANALYTICS_URL"), err)
		}
	}

	master, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer master.Close()

	if cfg.AutoMigrate {
		if err := pg.Migrate(ctx, master, cfg.PG, log); err != nil {
			return err
		}
	}

	registry := tenant.NewRegistry(tenant.NewPoolFactory(cfg.TenantPool), tenant.WithRegistryLogger(log))
	resolver := tenant.NewResolver(registry, tenant.NewPgDirectory(master),
		tenant.WithResolverLogger(log),
		tenant.WithSealingKey(hintKey),
	)

	fwdOpts := []tenant.ForwarderOption{tenant.WithForwarderLogger(log)}
	if forwardKey != nil {
		fwdOpts = append(fwdOpts, tenant.WithForwardSealing(forwardKey, cfg.ForwardTTL))
	}

	router := newRouter(routerDeps{
		log:           log,
		master:        master,
		resolver:      resolver,
		forwarder:     tenant.NewForwarder(fwdOpts...),
		analytics:     analytics,
		healthTimeout: cfg.HealthTimeout,
	})

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(func(ctx context.Context) {
			log.InfoContext(ctx, "closing tenant pools", slog.Int("pools", registry.Len()))
			registry.Close()
		}),
	)

	return srv.Run(ctx, router)
}
