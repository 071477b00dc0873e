package di

import (
	"context"
	"fmt"
	"time"

	"AgriPulse/internal/domain/repository"
	"AgriPulse/internal/handler/api"
	"AgriPulse/internal/jobs"
	mid "AgriPulse/internal/middleware"
	internalrepo "AgriPulse/internal/repository"
	"AgriPulse/internal/service/feed"
	"AgriPulse/internal/services/advisor"
	"AgriPulse/internal/services/analytics"
	"AgriPulse/internal/services/forecast"
	"AgriPulse/internal/services/timeseries"
	"AgriPulse/internal/usecase"
	pkgcache "AgriPulse/pkg/cache"
	pkgch "AgriPulse/pkg/clickhouse"
	"AgriPulse/pkg/config"
	pkgkafka "AgriPulse/pkg/kafka"
	applogger "AgriPulse/pkg/logger"
	"AgriPulse/pkg/metrics"
	"AgriPulse/pkg/queue"
	"AgriPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: cfg.Logger.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.SchemaStatements); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisCache creates the Redis cache layer.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return c, nil
}

// ProvideLayeredCache layers an in-process cache over Redis.
func ProvideLayeredCache(redisCache *pkgcache.RedisCache) pkgcache.Service {
	return pkgcache.NewLayeredCache(redisCache)
}

// ProvideArtifactStore persists trained models through the layered cache.
func ProvideArtifactStore(c pkgcache.Service, cfg *config.Config) repository.ArtifactStore {
	return internalrepo.NewCacheArtifactStore(c, cfg.Forecast.ArtifactTTL)
}

// ProvideObservationStore creates ClickHouse observation storage.
func ProvideObservationStore(chClient *pkgch.Client, cfg *config.Config) repository.ObservationStore {
	return internalrepo.NewClickHousePriceStore(chClient.DB(), cfg.ClickHouse.Database+".mandi_prices")
}

// ProvidePricePublisher creates the Kafka price publisher.
func ProvidePricePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPricePublisher(producer, cfg.Kafka.Topic)
}

// ProvideSeriesStore creates the in-memory observation store.
func ProvideSeriesStore() *timeseries.Store {
	return timeseries.NewStore()
}

// ProvideAnalyzer creates the market analytics service.
func ProvideAnalyzer(series *timeseries.Store, l *applogger.Logger) *analytics.Analyzer {
	return analytics.NewAnalyzer(series, l)
}

// ProvideForecaster creates the ensemble forecaster.
func ProvideForecaster(store repository.ArtifactStore, l *applogger.Logger) *forecast.Forecaster {
	return forecast.NewForecaster(store, l)
}

// ProvideEstimator creates the confidence estimator.
func ProvideEstimator() *forecast.Estimator {
	return forecast.NewEstimator()
}

// ProvidePolicy creates the recommendation policy.
func ProvidePolicy() *advisor.Policy {
	return advisor.NewPolicy()
}

// ProvideMarketAdvisor creates the advisory usecase.
func ProvideMarketAdvisor(
	series *timeseries.Store,
	analyzer *analytics.Analyzer,
	forecaster *forecast.Forecaster,
	estimator *forecast.Estimator,
	policy *advisor.Policy,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.MarketAdvisor {
	return usecase.NewMarketAdvisor(series, analyzer, forecaster, estimator, policy, m, l)
}

// ProvidePriceFeed creates the WebSocket mandi price feed.
func ProvidePriceFeed(cfg *config.Config) repository.PriceFeed {
	return feed.New(
		cfg.Feed.APIKey,
		cfg.Feed.URL,
		cfg.Feed.Commodities,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
		cfg.Feed.BufferSize,
	)
}

// ProvidePriceProcessor creates the ingest routing usecase.
func ProvidePriceProcessor(
	pub repository.Publisher,
	store repository.ObservationStore,
	series *timeseries.Store,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.PriceProcessor {
	return usecase.NewPriceProcessor(pub, store, series, m, cfg.Backend.Type)
}

// ProvideFeedCollector creates the feed collector with the ingest pipeline
// between the WebSocket and the backend.
func ProvideFeedCollector(
	pfeed repository.PriceFeed,
	processor *usecase.PriceProcessor,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.FeedCollector {
	pipe := mid.NewIngestPipeline(processor, m,
		mid.WithMaxRPS(cfg.Feed.MaxRPS),
		mid.WithBufferSize(cfg.Feed.BufferSize),
	)
	return usecase.NewFeedCollector(pfeed, processor, m, pipe)
}

// ProvideKafkaPricesHandler registers the handler for the prices topic.
func ProvideKafkaPricesHandler(
	store repository.ObservationStore,
	series *timeseries.Store,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.KafkaPricesHandler {
	return usecase.NewKafkaPricesHandler(cfg.Kafka.Topic, store, series, m)
}

// ProvideMarketHandler creates the HTTP handler.
func ProvideMarketHandler(l *applogger.Logger, adv *usecase.MarketAdvisor) *api.MarketEchoHandler {
	return api.NewMarketEchoHandler(l, adv)
}

// ProvideQueue creates the Redis-backed job queue with the training jobs
// registered.
func ProvideQueue(
	cfg *config.Config,
	l *applogger.Logger,
	redisCache *pkgcache.RedisCache,
	adv *usecase.MarketAdvisor,
) *queue.RedisQueue {
	q := queue.NewRedisQueue(l, &queue.QueueConfig{
		Workers:    cfg.Queue.Workers,
		RetryLimit: cfg.Queue.RetryLimit,
		RetryDelay: cfg.Queue.RetryDelay,
	}, redisCache.Client(), queue.ModeProducerConsumer)

	q.RegisterJobs([]queue.Job{
		jobs.NewTrainJob(adv, l),
		jobs.NewBulkTrainJob(adv, l),
	})
	return q
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.FeedCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaPricesHandler,
	chClient *pkgch.Client,
	obsStore repository.ObservationStore,
	series *timeseries.Store,
	q *queue.RedisQueue,
	handler *api.MarketEchoHandler,
) *server.App {
	if cfg.Queue.Enabled {
		handler.SetQueue(q)
	}
	return server.New(cfg, l, collector, consumer, kh, chClient, obsStore, series, q, handler)
}
