package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"YieldDesk/internal/middleware"
	"YieldDesk/internal/service/ratelimit"
	"YieldDesk/pkg/config"
	xhttp "YieldDesk/pkg/http"
	pkgkafka "YieldDesk/pkg/kafka"
	applogger "YieldDesk/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server

	// Optional components, nil when disabled.
	Pipeline        *middleware.ArchivePipeline
	Consumer        *pkgkafka.Consumer
	ConsumerHandler pkgkafka.MessageHandler
	Limiter         *ratelimit.Limiter

	// Closers run in order after everything else has stopped.
	Closers []io.Closer
}

// New creates a new App instance.
func New(cfg *config.Config, log *applogger.Logger, httpServer *xhttp.Server) *App {
	return &App{cfg: cfg, log: log, httpServer: httpServer}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.Pipeline != nil {
		a.Pipeline.Start(ctx)
		a.log.Info("archive pipeline started", applogger.String("backend", a.cfg.Archive.Backend))
	}

	if a.Consumer != nil && a.ConsumerHandler != nil {
		a.Consumer.RegisterHandler(a.ConsumerHandler)
		go func() {
			if err := a.Consumer.Start(); err != nil {
				a.log.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		a.log.Info("kafka consumer started", applogger.String("topic", a.ConsumerHandler.Topic()))
	}

	if a.Limiter != nil {
		go a.pruneLimiter(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) pruneLimiter(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := a.Limiter.Prune(10 * time.Minute); n > 0 {
				a.log.Debug("rate limiter pruned", applogger.Int("buckets", n))
			}
		}
	}
}

// shutdown stops the HTTP server first so no new fetches reach the archive,
// then flushes the pipeline before closing its backends.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.Pipeline != nil {
		if err := a.Pipeline.Stop(ctx); err != nil {
			a.log.Warn("archive pipeline stop error", applogger.Error(err))
		}
	}

	if a.Consumer != nil {
		if err := a.Consumer.Stop(ctx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	a.log.RemoveCollector()

	for _, c := range a.Closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			a.log.Warn("close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
