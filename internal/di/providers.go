package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"YieldDesk/internal/domain/catalog"
	"YieldDesk/internal/domain/repository"
	"YieldDesk/internal/handler/api"
	mid "YieldDesk/internal/middleware"
	internalrepo "YieldDesk/internal/repository"
	svccache "YieldDesk/internal/service/cache"
	"YieldDesk/internal/service/fred"
	"YieldDesk/internal/service/newsapi"
	"YieldDesk/internal/service/ratelimit"
	"YieldDesk/internal/usecase"
	pkgcache "YieldDesk/pkg/cache"
	pkgch "YieldDesk/pkg/clickhouse"
	"YieldDesk/pkg/config"
	xhttp "YieldDesk/pkg/http"
	pkgkafka "YieldDesk/pkg/kafka"
	"YieldDesk/pkg/logger"
	"YieldDesk/pkg/metrics"
	"YieldDesk/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideRegisterer returns the registry every collector is added to.
func ProvideRegisterer() prometheus.Registerer {
	pkgkafka.SetMetricsRegisterer(prometheus.DefaultRegisterer)
	return prometheus.DefaultRegisterer
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg prometheus.Registerer) repository.Metrics {
	return metrics.New(reg)
}

func ProvideCatalog() *catalog.Catalog {
	return catalog.Treasury()
}

// ProvideRedisCache connects to Redis when enabled. It returns nil otherwise.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rc, err := pkgcache.NewRedisCache(ctx,
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix+":memo"),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return rc, nil
}

// ProvideMemoStore backs the memo with memory, layered over Redis when available.
func ProvideMemoStore(cfg *config.Config, rc *pkgcache.RedisCache) pkgcache.Service {
	opts := []pkgcache.MemoryOption{
		pkgcache.WithMemoryMaxEntries(cfg.Memo.MaxEntries),
		pkgcache.WithMemoryDefaultTTL(cfg.Memo.TTL),
	}
	if rc != nil {
		return pkgcache.NewLayeredCache(rc, cfg.Memo.TTL, opts...)
	}
	return pkgcache.NewMemoryCache(opts...)
}

func ProvideMemo(store pkgcache.Service, cfg *config.Config, m repository.Metrics, log *logger.Logger) *usecase.Memo {
	return usecase.NewMemo(store, cfg.Memo.TTL, m, log)
}

// ProvideNewsCache caches raw news responses in Redis when available.
func ProvideNewsCache(cfg *config.Config, rc *pkgcache.RedisCache) svccache.BytesCache {
	if rc != nil {
		return svccache.NewRedisCache(rc.Client(), cfg.Redis.Prefix+":news")
	}
	return svccache.NewTTLCache(256)
}

func ProvideMacroProvider(cfg *config.Config, log *logger.Logger) repository.MacroProvider {
	return fred.New(cfg, log)
}

func ProvideNewsProvider(cfg *config.Config) repository.NewsProvider {
	return newsapi.New(cfg)
}

// ProvideClickHouseClient connects to ClickHouse when the archive is enabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(context.Background(),
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
	return client, nil
}

// ProvideObservationStorage creates the archive table and returns its storage.
func ProvideObservationStorage(ch *pkgch.Client) (repository.Storage, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseStorage(ch.DB(), internalrepo.ObservationsTable)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a producer when brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

func ProvideObservationPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates the archive consumer when Kafka carries the
// archive and a consumer group is configured.
func ProvideKafkaConsumer(cfg *config.Config, log *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Archive.Enabled || cfg.Archive.Backend != usecase.BackendKafka || cfg.Kafka.Consumer.GroupID == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
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
	consumer.WithConsumerHook(pkgkafka.LoggingHook{Log: log, Slow: time.Second})
	return consumer, nil
}

func ProvideKafkaObservationsHandler(store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.KafkaObservationsHandler {
	if store == nil {
		return nil
	}
	return usecase.NewKafkaObservationsHandler(cfg.Kafka.Topic, store, m)
}

func ProvideObservationProcessor(pub repository.Publisher, store repository.Storage, m repository.Metrics, cfg *config.Config) *usecase.ObservationProcessor {
	return usecase.NewObservationProcessor(pub, store, m, cfg.Archive.Backend)
}

// ProvideArchivePipeline returns nil when the archive is disabled.
func ProvideArchivePipeline(proc *usecase.ObservationProcessor, m repository.Metrics, log *logger.Logger, cfg *config.Config) *mid.ArchivePipeline {
	if !cfg.Archive.Enabled {
		return nil
	}
	return mid.NewArchivePipeline(proc, m, log,
		mid.WithBufferSize(cfg.Archive.BufferSize),
		mid.WithRetry(3, 100*time.Millisecond, cfg.Archive.RetryEvery),
	)
}

func ProvideSeriesFetcher(
	cat *catalog.Catalog,
	provider repository.MacroProvider,
	pipe *mid.ArchivePipeline,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.SeriesFetcher {
	var archive usecase.Archiver
	if pipe != nil {
		archive = pipe
	}
	return usecase.NewSeriesFetcher(cat, provider, archive, m, log)
}

func ProvideCurveUseCase(
	cat *catalog.Catalog,
	fetcher *usecase.SeriesFetcher,
	memo *usecase.Memo,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.CurveUseCase {
	return usecase.NewCurveUseCase(cat, fetcher, memo, m, log, cfg.Fred.LookbackDays)
}

func ProvideHistoricalUseCase(fetcher *usecase.SeriesFetcher, memo *usecase.Memo, m repository.Metrics, log *logger.Logger) *usecase.HistoricalUseCase {
	return usecase.NewHistoricalUseCase(fetcher, memo, m, log)
}

func ProvideNewsUseCase(
	provider repository.NewsProvider,
	c svccache.BytesCache,
	m repository.Metrics,
	log *logger.Logger,
	cfg *config.Config,
) *usecase.NewsUseCase {
	return usecase.NewNewsUseCase(provider, c, cfg.News.CacheTTL, cfg.News.DefaultQuery, m, log)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit.Rate, cfg.Server.RateLimit.Burst)
}

// ProvideHTTPHandler registers the API and health routes.
func ProvideHTTPHandler(
	log *logger.Logger,
	cat *catalog.Catalog,
	curve *usecase.CurveUseCase,
	history *usecase.HistoricalUseCase,
	news *usecase.NewsUseCase,
	rl *ratelimit.Limiter,
	store repository.Storage,
	rc *pkgcache.RedisCache,
) xhttp.Handler {
	checks := map[string]api.HealthCheck{}
	if store != nil {
		checks["clickhouse"] = store.Health
	}
	if rc != nil {
		checks["redis"] = func(ctx context.Context) error { return rc.Client().Ping(ctx).Err() }
	}
	return xhttp.Handlers{
		api.NewYieldsEchoHandler(log, cat, curve, history, news, rl),
		api.NewHealthHandler(checks),
	}
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	reg prometheus.Registerer,
	handler xhttp.Handler,
	pipe *mid.ArchivePipeline,
	proc *usecase.ObservationProcessor,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaObservationsHandler,
	producer *pkgkafka.Producer,
	ch *pkgch.Client,
	memoStore pkgcache.Service,
	rl *ratelimit.Limiter,
) *server.App {
	if producer != nil && cfg.Kafka.LogTopic != "" {
		log.AddCollector(&logger.CollectionConfig{
			TimeInterval: 30 * time.Second,
			Levels:       []string{"warn", "error"},
			Topic:        cfg.Kafka.LogTopic,
			Publisher:    producer,
		})
	}

	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetrics(cfg.Metrics.Path, reg, prometheus.DefaultGatherer))
	}

	app := server.New(cfg, log, xhttp.NewServer(handler, log, opts...))
	app.Limiter = rl
	app.Closers = append(app.Closers, memoStore)
	if pipe != nil {
		app.Pipeline = pipe
		app.Closers = append(app.Closers, proc)
	}
	if consumer != nil && kh != nil {
		app.Consumer = consumer
		app.ConsumerHandler = kh
	}
	if producer != nil && pipe == nil {
		app.Closers = append(app.Closers, producer)
	}
	if ch != nil {
		app.Closers = append(app.Closers, ch)
	}
	return app
}
