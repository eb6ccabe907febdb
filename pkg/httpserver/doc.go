// Package httpserver runs an http.Handler with graceful shutdown.
//
// Server binds its listener before reporting start, stops on context
// cancellation, SIGINT or SIGTERM, drains in-flight requests within the
// shutdown timeout and then runs stop hooks, which is where callers close
// database pools:
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithStopHook(func(context.Context) { registry.Close() }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// LivenessHandler and ReadinessHandler serve the probe endpoints.
// Run wraps listen errors with ErrStart and Shutdown wraps drain errors
// with ErrShutdown.
package httpserver
