package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/ReviewModerationGo/internal/config"
	"github.com/utafrali/ReviewModerationGo/internal/event"
	handler "github.com/utafrali/ReviewModerationGo/internal/handler/http"
	"github.com/utafrali/ReviewModerationGo/internal/profanity"
	repopostgres "github.com/utafrali/ReviewModerationGo/internal/repository/postgres"
	"github.com/utafrali/ReviewModerationGo/internal/sentiment"
	"github.com/utafrali/ReviewModerationGo/internal/service"
	storagepostgres "github.com/utafrali/ReviewModerationGo/internal/storage/postgres"
	"github.com/utafrali/ReviewModerationGo/internal/textproc"
	"github.com/utafrali/ReviewModerationGo/migrations"
	"github.com/utafrali/ReviewModerationGo/pkg/database"
	"github.com/utafrali/ReviewModerationGo/pkg/health"
	pkgkafka "github.com/utafrali/ReviewModerationGo/pkg/kafka"
	"github.com/utafrali/ReviewModerationGo/pkg/tracing"
)

// App wires together all dependencies and runs the moderation service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redisClient    *redis.Client
	producer       *pkgkafka.Producer
	dlq            *pkgkafka.DLQProducer
	consumers      []*pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    "moderation",
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Duration(cfg.DBMaxConnLifetimeMins) * time.Minute,
		MaxConnIdleTime: time.Duration(cfg.DBMaxConnIdleTimeMins) * time.Minute,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "moderation")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Event-id dedup stores for the stage consumers. With a Redis address
	// configured the processed sets are shared across instances; otherwise
	// each instance keeps its own in-memory set and the conditional SQL
	// transitions remain the correctness layer.
	dedupTTL := time.Duration(cfg.DedupTTLHours) * time.Hour
	var redisClient *redis.Client
	newDedupStore := func(group string) pkgkafka.IdempotencyStore {
		return pkgkafka.NewMemoryIdempotencyStore(dedupTTL)
	}
	if cfg.RedisHost != "" {
		redisCfg := database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
		redisClient, err = database.NewRedisClient(ctx, redisCfg)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", redisCfg.Addr()))
		newDedupStore = func(group string) pkgkafka.IdempotencyStore {
			return pkgkafka.NewRedisIdempotencyStore(redisClient, group, dedupTTL)
		}
	}

	// Initialize Kafka producer and DLQ.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	dlq := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	blobs := storagepostgres.New(pool)
	reviewRepo := repopostgres.NewReviewRepository(pool, cfg.ReviewsTable)
	customerRepo := repopostgres.NewCustomerRepository(pool, cfg.CustomersTable)
	moderationRepo := repopostgres.NewModerationRepository(pool, cfg.ReviewsTable, cfg.CustomersTable)

	eventProducer := event.NewProducer(producer, logger)

	preprocessService := service.NewPreprocessService(
		reviewRepo, customerRepo, blobs,
		textproc.NewNLPCanonicalizer(),
		eventProducer,
		cfg.RawBucket, cfg.ProcessedBucket,
		logger,
	)
	profanityService := service.NewProfanityService(
		moderationRepo, blobs,
		profanity.NewDetector(),
		cfg.ProfanityThreshold,
		logger,
	)
	sentimentService := service.NewSentimentService(
		reviewRepo, blobs,
		sentiment.NewVADERScorer(),
		logger,
	)

	// Stage consumers, one consumer group per stage.
	consumers := []*pkgkafka.Consumer{
		event.NewStageConsumer(
			cfg.KafkaBrokers, event.GroupProfanityStage,
			event.NewProfanityHandler(profanityService, logger).Handle,
			newDedupStore(event.GroupProfanityStage), dlq, logger,
		),
		event.NewStageConsumer(
			cfg.KafkaBrokers, event.GroupSentimentStage,
			event.NewSentimentHandler(sentimentService, logger).Handle,
			newDedupStore(event.GroupSentimentStage), dlq, logger,
		),
	}

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	// HTTP router.
	router := handler.NewRouter(preprocessService, healthHandler, logger, cfg.PprofAllowedCIDRs)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:            cfg,
		logger:         logger,
		pool:           pool,
		redisClient:    redisClient,
		producer:       producer,
		dlq:            dlq,
		consumers:      consumers,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Run starts the HTTP server and Kafka consumers, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	// Start the stage consumers.
	for _, consumer := range a.consumers {
		c := consumer
		go func() {
			if err := c.Start(ctx); err != nil {
				a.logger.Error("kafka consumer error", slog.String("error", err.Error()))
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	// Close Kafka consumers.
	for _, consumer := range a.consumers {
		if err := consumer.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
		}
	}

	// Close Kafka producers.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}
	if err := a.dlq.Close(); err != nil {
		a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
	}

	// Close Redis client.
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	// Close PostgreSQL pool.
	a.pool.Close()

	// Flush tracing spans.
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
