package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"AgriPulse/internal/domain/repository"
	"AgriPulse/internal/services/timeseries"
	"AgriPulse/internal/usecase"
	pkgch "AgriPulse/pkg/clickhouse"
	"AgriPulse/pkg/config"
	xhttp "AgriPulse/pkg/http"
	pkgkafka "AgriPulse/pkg/kafka"
	applogger "AgriPulse/pkg/logger"
	"AgriPulse/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	collector *usecase.FeedCollector
	consumer  *pkgkafka.Consumer
	kh        pkgkafka.MessageHandler
	chClient  *pkgch.Client
	obsStore  repository.ObservationStore
	series    *timeseries.Store
	queue     *queue.RedisQueue

	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.FeedCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	obsStore repository.ObservationStore,
	series *timeseries.Store,
	q *queue.RedisQueue,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		collector:   collector,
		consumer:    consumer,
		kh:          kh,
		chClient:    chClient,
		obsStore:    obsStore,
		series:      series,
		queue:       q,
		httpHandler: httpHandler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	// Hydrate the in-memory series store from durable storage so
	// analytics and training have history available immediately.
	if err := a.hydrate(ctx); err != nil {
		l.Warn("series hydrate failed, starting empty", applogger.Error(err))
	} else {
		l.Info("series store hydrated", applogger.Int("points", a.series.Len()))
	}

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithRequestMetrics(l, 500*time.Millisecond),
	)

	// Start the job queue
	if a.queue != nil && a.cfg.Queue.Enabled {
		if err := a.queue.Start(); err != nil {
			l.Error("queue start error", applogger.Error(err))
			return err
		}
		l.Info("job queue started", applogger.Int("workers", a.cfg.Queue.Workers))
	}

	// Start the live feed collector
	if a.collector != nil && a.cfg.Feed.Enabled {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("collector error", applogger.Error(err))
			}
		}()
		l.Info("feed collector started", applogger.Strings("commodities", a.cfg.Feed.Commodities))
	}

	// Start consumer when observations flow through Kafka
	if a.consumer != nil && a.kh != nil && a.cfg.Backend.Type == "kafka" {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) hydrate(ctx context.Context) error {
	if a.obsStore == nil {
		return nil
	}
	hydrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	since := time.Now().AddDate(0, 0, -a.cfg.Forecast.HydrateDays)
	points, err := a.obsStore.LoadSince(hydrateCtx, since)
	if err != nil {
		return err
	}
	a.series.Ingest(points...)
	return nil
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger

	if a.collector != nil && a.cfg.Feed.Enabled {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil && a.cfg.Backend.Type == "kafka" {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.queue != nil && a.cfg.Queue.Enabled {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			l.Warn("queue stop error", applogger.Error(err))
		}
	}

	// Close processor resources (publisher/storage)
	if a.collector != nil {
		a.collector.Processor().Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
