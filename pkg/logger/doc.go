// Package logger builds *slog.Logger instances with environment defaults and
// context-driven attributes.
//
// New wraps the chosen slog handler (text or JSON) in a LogHandlerDecorator
// that runs every registered ContextExtractor on each record. The tenant and
// requestid packages ship extractors, so a single log call made deep inside a
// request automatically carries the request id and the tenant key:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "tenantd"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//	log.InfoContext(ctx, "order loaded", logger.Duration(time.Since(start)))
//
// Attribute helpers (Error, Component, Tenant, ...) keep key names consistent
// and return an empty Attr for empty input, so calls need no nil checks.
package logger
