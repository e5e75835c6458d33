package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CandleVault/pkg/config"
	xhttp "CandleVault/pkg/http"
	applogger "CandleVault/pkg/logger"
)

// App encapsulates the query server lifecycle: HTTP serving plus ordered
// teardown of infrastructure clients.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	httpServer *xhttp.Server
	closers    []func() error
}

// New creates an App serving the given handler.
func New(cfg *config.Config, logger *applogger.Logger, handler xhttp.Handler) *App {
	if logger == nil {
		logger = applogger.Nop()
	}

	srv := xhttp.NewServer(handler, logger,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(cfg.Metrics.Path),
	)

	return &App{
		cfg:        cfg,
		logger:     logger,
		httpServer: srv,
	}
}

// AddCloser registers a teardown hook. Hooks run in registration order
// after the HTTP server has drained.
func (a *App) AddCloser(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.logger.Info("query server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.logger.Warn("close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
