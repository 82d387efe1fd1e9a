// Package server owns the application lifecycle: start the HTTP server,
// wait for a shutdown signal, stop gracefully and release resources.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"EarnPull/pkg/cache"
	"EarnPull/pkg/config"
	xhttp "EarnPull/pkg/http"
	applogger "EarnPull/pkg/logger"
)

// App encapsulates the running application.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	cache      cache.Service
	httpServer *xhttp.Server
}

// New creates an App. The handler carries every API route; cache is closed
// on shutdown.
func New(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler, c cache.Service) *App {
	return &App{cfg: cfg, log: log, handler: handler, cache: c}
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	}
	if !a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(""))
	} else if a.cfg.Metrics.Path != "" {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(a.handler, a.log, opts...)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start failed", applogger.Error(err))
		return err
	}
	a.log.Info("earnpull started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http server stop failed", applogger.Error(err))
		firstErr = err
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Error("cache close failed", applogger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	a.log.Info("shutdown complete")
	return firstErr
}
