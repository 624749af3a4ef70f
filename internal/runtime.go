package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// runtimeConfig holds configuration for running the HTTP server.
type runtimeConfig struct {
	handler         http.Handler
	address         string
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

// runServer starts the HTTP server and blocks until shutdown.
// This is the shared implementation for both app.Run() and anvil.Run().
func runServer(cfg runtimeConfig) error {
	if cfg.address == "" {
		cfg.address = ":8080"
	}
	if cfg.shutdownTimeout == 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	baseCtx := cfg.baseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	server := &http.Server{
		Addr:              cfg.address,
		Handler:           cfg.handler,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		// Request contexts descend from the caller's context, not the signal
		// context: a shutdown signal must not cancel in-flight requests while
		// they drain.
		BaseContext: func(net.Listener) context.Context { return baseCtx },
		ErrorLog:    slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	ctx, stop := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Startup hooks run before the listener opens; a failing hook keeps the
	// port closed.
	for _, hook := range cfg.startupHooks {
		if err := hook(ctx); err != nil {
			logger.Error("startup hook failed", slog.Any("error", err))
			return err
		}
	}

	// Listen first to get the actual address
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	return drain(server, cfg, logger)
}

// drain runs the graceful shutdown sequence: stop accepting connections and
// wait out in-flight requests, then run shutdown hooks (close DB pools, stop
// janitors). Hook errors are collected, not short-circuited, so every hook
// gets its chance to clean up.
func drain(server *http.Server, cfg runtimeConfig, logger *slog.Logger) error {
	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer cancel()

	var errs []error

	if err := server.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	for _, hook := range cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			logger.Error("shutdown hook failed", slog.Any("error", err))
		}
	}

	if len(errs) > 0 {
		logger.Error("shutdown completed with errors")
		return errors.Join(errs...)
	}

	logger.Info("shutdown completed")
	return nil
}
