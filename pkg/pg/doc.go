// Package pg opens PostgreSQL connection pools on top of pgx/v5.
//
// Two kinds of pool are produced:
//
//   - The master pool, opened once at startup with [Connect]. It is pinged
//     and retried because the process cannot serve tenants without it.
//   - Tenant pools, opened on demand with [NewPool]. They are lazy: no
//     connection is made until the first query, and [PoolConfig] bounds their
//     size, idle time and connect timeout.
//
// [Migrate] applies goose migrations for the master schema and [Healthcheck]
// adapts any pool into a readiness probe.
//
// # Usage
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
//	master, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer master.Close()
//
//	if err := pg.Migrate(ctx, master, cfg, log); err != nil {
//		return err
//	}
//
//	pool, err := pg.NewPool(ctx, dsn, pg.DefaultPoolConfig())
//
// # Error Handling
//
// Errors are sentinel values joined with the underlying driver error, so
// callers test them with errors.Is. [IsNotFoundError] and
// [IsConnectionError] classify pgx errors.
package pg
