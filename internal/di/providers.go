package di

import (
	"context"
	"fmt"
	"time"

	"SignalFusion/internal/domain/repository"
	domsvc "SignalFusion/internal/domain/service"
	"SignalFusion/internal/handler/api"
	internalrepo "SignalFusion/internal/repository"
	icache "SignalFusion/internal/service/cache"
	"SignalFusion/internal/service/ratelimit"
	"SignalFusion/internal/services/analytics"
	"SignalFusion/internal/services/engine"
	"SignalFusion/internal/services/timeline"
	"SignalFusion/internal/usecase"
	pkgch "SignalFusion/pkg/clickhouse"
	"SignalFusion/pkg/config"
	pkgkafka "SignalFusion/pkg/kafka"
	applogger "SignalFusion/pkg/logger"
	"SignalFusion/pkg/metrics"
	"SignalFusion/pkg/server"
)

const initTimeout = 10 * time.Second

// ProvideLogger builds the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideBarStore exposes the bars table as the market-data provider.
func ProvideBarStore(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) (repository.BarStore, error) {
	if ch == nil {
		return nil, nil
	}
	store, err := internalrepo.NewCHBarStore(ch, qualified(cfg, cfg.ClickHouse.BarsTable), l)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("bar store: %w", err)
	}
	return store, nil
}

// ProvideSignalStorage creates the timeline history table when enabled.
func ProvideSignalStorage(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger) (repository.SignalStorage, error) {
	if ch == nil || !cfg.Analysis.StoreTimeline {
		return nil, nil
	}
	storage, err := internalrepo.NewCHSignalStorage(ch, qualified(cfg, cfg.ClickHouse.SignalsTable), l)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()
	if err := storage.Init(ctx); err != nil {
		return nil, fmt.Errorf("signal storage: %w", err)
	}
	return storage, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
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

// ProvideBundlePublisher publishes bundles to the bundle topic.
func ProvideBundlePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.BundlePublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaBundlePublisher(producer, cfg.Kafka.BundleTopic)
}

// ProvidePredictionClient creates the breaker-guarded prediction client.
func ProvidePredictionClient(cfg *config.Config) *analytics.HTTPPredictionClient {
	if !cfg.Prediction.Enabled {
		return nil
	}
	return analytics.NewHTTPPredictionClient(cfg.Prediction.URL, cfg.Prediction.Timeout, cfg.Prediction.MaxFailures, cfg.Prediction.BreakerTimeout)
}

func ProvideEngine(cfg *config.Config) *engine.Engine {
	return engine.New(cfg.Engine)
}

// ProvideAnalysisUseCase assembles the analysis pipeline from whatever
// collaborators are enabled.
func ProvideAnalysisUseCase(
	cfg *config.Config,
	eng *engine.Engine,
	bars repository.BarStore,
	prediction *analytics.HTTPPredictionClient,
	storage repository.SignalStorage,
	publisher repository.BundlePublisher,
	m repository.Metrics,
	l *applogger.Logger,
) *usecase.AnalysisUseCase {
	opts := []usecase.AnalysisOption{
		usecase.WithMetrics(m),
		usecase.WithLogger(l),
		usecase.WithTimeout(cfg.Analysis.Timeout),
		usecase.WithDefaultBars(cfg.Analysis.DefaultBars),
		usecase.WithTimelineMerger(timeline.NewMerger(cfg.Engine.Timeline)),
	}
	if bars != nil {
		opts = append(opts, usecase.WithBarStore(bars))
	}
	if prediction != nil {
		var p domsvc.PredictionProvider = prediction
		opts = append(opts, usecase.WithPredictionProvider(p))
	}
	if storage != nil {
		opts = append(opts, usecase.WithSignalStorage(storage))
	}
	if publisher != nil {
		opts = append(opts, usecase.WithPublisher(publisher, cfg.Analysis.PublishBundles))
	}
	return usecase.NewAnalysisUseCase(eng, opts...)
}

func ProvideMultiTickerUseCase(cfg *config.Config, uc *usecase.AnalysisUseCase, l *applogger.Logger) *usecase.MultiTickerUseCase {
	return usecase.NewMultiTickerUseCase(uc, cfg.Analysis.MaxConcurrency, l)
}

// ProvideCache creates the response cache selected by cache.type.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	switch cfg.Cache.Type {
	case "redis":
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
	case "memory":
		return icache.NewTTLCache(cfg.Cache.MaxEntries)
	default:
		return nil
	}
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
}

// ProvideAnalysisHandler creates the HTTP handler with health checks for the
// enabled dependencies.
func ProvideAnalysisHandler(
	cfg *config.Config,
	uc *usecase.AnalysisUseCase,
	multi *usecase.MultiTickerUseCase,
	cache icache.BytesCache,
	rl *ratelimit.Limiter,
	ch *pkgch.Client,
	prediction *analytics.HTTPPredictionClient,
	l *applogger.Logger,
) *api.AnalysisHandler {
	opts := []api.Option{api.WithLogger(l)}
	if cache != nil {
		opts = append(opts, api.WithCache(cache, cfg.Cache.TTL))
	}
	if rl != nil {
		opts = append(opts, api.WithRateLimiter(rl))
	}
	if ch != nil {
		opts = append(opts, api.WithHealthCheck("clickhouse", ch.Health))
	}
	if rc, ok := cache.(*icache.RedisCache); ok {
		opts = append(opts, api.WithHealthCheck("redis", rc.Ping))
	}
	if prediction != nil {
		opts = append(opts, api.WithHealthCheck("prediction", func(context.Context) error {
			if state := prediction.BreakerState(); state == "open" {
				return fmt.Errorf("circuit breaker %s", state)
			}
			return nil
		}))
	}
	return api.NewAnalysisHandler(uc, multi, opts...)
}

// ProvideKafkaConsumer creates a Kafka consumer, or nil when disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.TraceHook(), pkgkafka.LoggingHook(l)))
	return consumer, nil
}

// ProvideAnalysisRequestHandler handles the analysis request topic.
func ProvideAnalysisRequestHandler(cfg *config.Config, uc *usecase.AnalysisUseCase, m repository.Metrics, l *applogger.Logger) *usecase.AnalysisRequestHandler {
	return usecase.NewAnalysisRequestHandler(cfg.Kafka.RequestTopic, uc, m, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler *api.AnalysisHandler,
	consumer *pkgkafka.Consumer,
	kh *usecase.AnalysisRequestHandler,
	publisher repository.BundlePublisher,
	storage repository.SignalStorage,
	cache icache.BytesCache,
	ch *pkgch.Client,
) *server.App {
	opts := []server.Option{}
	if consumer != nil {
		opts = append(opts, server.WithConsumer(consumer, kh))
	}
	if publisher != nil {
		opts = append(opts, server.WithCloser("bundle publisher", publisher))
	}
	if storage != nil {
		opts = append(opts, server.WithCloser("signal storage", storage))
	}
	if rc, ok := cache.(*icache.RedisCache); ok {
		opts = append(opts, server.WithCloser("redis cache", rc))
	}
	if ch != nil {
		opts = append(opts, server.WithCloser("clickhouse", ch))
	}
	return server.New(cfg, l, handler, opts...)
}

func qualified(cfg *config.Config, table string) string {
	return cfg.ClickHouse.Database + "." + table
}
