package di

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CandleVault/internal/domain/models"
	drepo "CandleVault/internal/domain/repository"
	"CandleVault/internal/handler/api"
	internalrepo "CandleVault/internal/repository"
	"CandleVault/internal/service/credentials"
	"CandleVault/internal/service/fyers"
	"CandleVault/internal/usecase"
	"CandleVault/pkg/breaker"
	"CandleVault/pkg/cache"
	pkgch "CandleVault/pkg/clickhouse"
	"CandleVault/pkg/config"
	xhttp "CandleVault/pkg/http"
	pkgkafka "CandleVault/pkg/kafka"
	applogger "CandleVault/pkg/logger"
	"CandleVault/pkg/metrics"
	"CandleVault/pkg/objstore"
	"CandleVault/pkg/retry"
	"CandleVault/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideObjectStore creates the S3-compatible object store client.
func ProvideObjectStore(cfg *config.Config) (objstore.Store, error) {
	store, err := objstore.NewMinioStore(cfg.Storage.Endpoint, cfg.Storage.Bucket,
		objstore.WithCredentials(cfg.Storage.AccessKey, cfg.Storage.SecretKey),
		objstore.WithRegion(cfg.Storage.Region),
		objstore.WithSSL(cfg.Storage.UseSSL),
	)
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}
	return store, nil
}

// ProvidePartitionStore creates the candle partition store, cached when
// configured.
func ProvidePartitionStore(store objstore.Store, m drepo.Metrics, log *applogger.Logger, cfg *config.Config) drepo.PartitionStore {
	ps := internalrepo.NewObjectPartitionStore(store, cfg.Storage.PartitionPrefix, log,
		internalrepo.WithMetrics(m),
	)
	if !cfg.Cache.Enabled {
		return ps
	}
	mc := cache.NewMemoryCache(
		cache.WithMaxSize(cfg.Cache.MaxSize),
		cache.WithDefaultTTL(cfg.Cache.TTL),
	)
	return internalrepo.NewCachedPartitionStore(ps, mc, cfg.Cache.TTL)
}

// ProvideQueryEngine creates the analytics query engine.
func ProvideQueryEngine(store drepo.PartitionStore, m drepo.Metrics, log *applogger.Logger, cfg *config.Config) *usecase.QueryEngine {
	return usecase.NewQueryEngine(store, m, log, usecase.QueryConfig{
		MaxRangeDays: cfg.Query.MaxRangeDays,
		MoversLimit:  cfg.Query.MoversLimit,
	})
}

// ProvideQueryHandler creates the HTTP query handler.
func ProvideQueryHandler(log *applogger.Logger, engine *usecase.QueryEngine) xhttp.Handler {
	return api.NewQueryHandler(log, engine)
}

// ProvideApp creates the query server application.
func ProvideApp(cfg *config.Config, log *applogger.Logger, handler xhttp.Handler) *server.App {
	return server.New(cfg, log, handler)
}

// ProvideSecretStore creates the Redis-backed credential store.
func ProvideSecretStore(cfg *config.Config) (drepo.CredentialStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Secrets.Addr,
		Password: cfg.Secrets.Password,
		DB:       cfg.Secrets.DB,
	})
	store := internalrepo.NewRedisSecretStore(client, cfg.Secrets.Prefix)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("secret store: %w", err)
	}
	return store, nil
}

// ProvideFyersClient creates the provider client with credentials loaded
// from the secret store.
func ProvideFyersClient(cfg *config.Config, store drepo.CredentialStore) (*fyers.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clientID, err := store.GetSecret(ctx, credentials.SecretClientID)
	if err != nil {
		return nil, fmt.Errorf("load client id: %w", err)
	}
	accessToken, err := store.GetSecret(ctx, credentials.SecretAccessToken)
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}

	return fyers.New(cfg.Provider.BaseURL, cfg.Provider.TokenURL,
		fyers.WithCredentials(clientID, accessToken),
		fyers.WithRequestDelay(cfg.Provider.RequestDelay),
		fyers.WithHTTPClient(newProviderHTTPClient(cfg.Provider.RequestTimeout)),
	), nil
}

func newProviderHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// ProvideQuoteProvider exposes the client as the domain interface.
func ProvideQuoteProvider(c *fyers.Client) drepo.QuoteProvider {
	return c
}

// ProvideRefresher creates the token refresher.
func ProvideRefresher(store drepo.CredentialStore, c *fyers.Client, log *applogger.Logger) drepo.TokenRefresher {
	return credentials.NewRefresher(store, c, log)
}

// ProvideBreaker creates the upstream circuit breaker. Only transient and
// auth failures count toward tripping it.
func ProvideBreaker(cfg *config.Config) *breaker.Breaker {
	return breaker.New(cfg.Provider.Breaker.FailureThreshold, cfg.Provider.Breaker.Timeout,
		breaker.WithClassifier(upstreamFailure),
	)
}

// upstreamFailure reports whether err says something about upstream health.
// Permanent rejections of a single request (bad symbol, malformed response)
// must not take the provider offline for the rest of the run.
func upstreamFailure(err error) bool {
	var authErr *models.AuthError
	return models.IsTransient(err) || errors.As(err, &authErr)
}

// ProvideRetryPolicy creates the per-request retry policy.
func ProvideRetryPolicy(cfg *config.Config) retry.Policy {
	p := retry.Default()
	if cfg.Provider.Retry.Attempts > 0 {
		p.Attempts = cfg.Provider.Retry.Attempts
	}
	if cfg.Provider.Retry.BaseDelay > 0 {
		p.BaseDelay = cfg.Provider.Retry.BaseDelay
	}
	if cfg.Provider.Retry.MaxDelay > 0 {
		p.MaxDelay = cfg.Provider.Retry.MaxDelay
	}
	if cfg.Provider.Retry.Jitter > 0 {
		p.Jitter = cfg.Provider.Retry.Jitter
	}
	return p
}

// ProvideFetcher creates the symbol fetcher.
func ProvideFetcher(
	provider drepo.QuoteProvider,
	refresher drepo.TokenRefresher,
	brk *breaker.Breaker,
	policy retry.Policy,
	m drepo.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.Fetcher {
	return usecase.NewFetcher(provider, refresher, brk, policy, m, log, usecase.FetcherConfig{
		Resolution:   cfg.Provider.Resolution,
		BatchSize:    cfg.Provider.BatchSize,
		BatchDelay:   cfg.Provider.BatchDelay,
		LookbackDays: int(cfg.Provider.LookbackWindow.Hours() / 24),
		Exchange:     cfg.Provider.Exchange,
		Series:       cfg.Provider.Series,
	})
}

// ProvideRawStore creates the raw-zone archive store.
func ProvideRawStore(store objstore.Store, log *applogger.Logger, cfg *config.Config) drepo.RawStore {
	return internalrepo.NewRawObjectStore(store, cfg.Storage.RawPrefix, log)
}

// ProvideCandleSink creates the optional ClickHouse analytics mirror.
// Returns a nil sink when disabled.
func ProvideCandleSink(cfg *config.Config, log *applogger.Logger) (drepo.CandleSink, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return nil, func() {}, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	sink := internalrepo.NewClickHouseCandleSink(client.DB(), cfg.ClickHouse.Table, log,
		internalrepo.WithInsertTimeout(cfg.ClickHouse.WriteTimeout),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sink.Init(ctx); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return sink, func() { _ = client.Close() }, nil
}

// ProvideRunNotifier creates the optional Kafka run notifier. Returns a
// nil notifier when disabled.
func ProvideRunNotifier(cfg *config.Config, log *applogger.Logger) (drepo.RunNotifier, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}

	notifier := internalrepo.NewKafkaRunNotifier(producer, cfg.Kafka.Topic, log)
	return notifier, func() { _ = producer.Close() }, nil
}

// ProvideIngestRunner creates the end-to-end ingestion runner.
func ProvideIngestRunner(
	fetcher *usecase.Fetcher,
	raw drepo.RawStore,
	store drepo.PartitionStore,
	sink drepo.CandleSink,
	notifier drepo.RunNotifier,
	log *applogger.Logger,
) *usecase.IngestRunner {
	return usecase.NewIngestRunner(fetcher, raw, store, sink, notifier, log)
}
