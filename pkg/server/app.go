package server

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"SignalFusion/pkg/config"
	xhttp "SignalFusion/pkg/http"
	pkgkafka "SignalFusion/pkg/kafka"
	applogger "SignalFusion/pkg/logger"
)

// Closer is a resource released on shutdown.
type Closer interface {
	Close() error
}

type namedCloser struct {
	name string
	c    Closer
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	kh         pkgkafka.MessageHandler
	closers    []namedCloser
}

type Option func(*App)

// WithConsumer runs kh on consumer while the app is up.
func WithConsumer(consumer *pkgkafka.Consumer, kh pkgkafka.MessageHandler) Option {
	return func(a *App) {
		a.consumer = consumer
		a.kh = kh
	}
}

// WithCloser registers a resource to release on shutdown. Closers run in
// registration order after the HTTP server and consumer have stopped.
func WithCloser(name string, c Closer) Option {
	return func(a *App) { a.closers = append(a.closers, namedCloser{name: name, c: c}) }
}

// New creates a new App serving handler over HTTP.
func New(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler, opts ...Option) *App {
	if l == nil {
		l = applogger.Nop()
	}
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	a := &App{
		cfg: cfg,
		l:   l,
		httpServer: xhttp.NewServer(handler,
			xhttp.WithPort(cfg.Server.Port),
			xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
			xhttp.WithAllowOrigins(cfg.Server.AllowOrigins),
			xhttp.WithMetricsPath(metricsPath),
			xhttp.WithLogger(l),
		),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HTTP returns the underlying HTTP server.
func (a *App) HTTP() *xhttp.Server { return a.httpServer }

// Run starts the application and blocks until ctx is done or the process is
// interrupted.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			return fmt.Errorf("kafka consumer: %w", err)
		}
		a.l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("signal fusion started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout+5*time.Second)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	for _, nc := range a.closers {
		if err := nc.c.Close(); err != nil {
			a.l.Warn("close error", applogger.String("resource", nc.name), applogger.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	a.l.Info("shutdown complete")
	return firstErr
}
