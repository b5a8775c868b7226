/**
 * @description
 * This is the main entry point for the campaign service. It is responsible
 * for initializing all components of the service, including configuration,
 * database connection, the OpenAI client, the message broker, repositories,
 * the core application service, and the HTTP server. It wires everything
 * together and starts the service.
 *
 * @dependencies
 * - log/slog, net/http: Standard Go libraries for logging and HTTP serving.
 * - github.com/jackc/pgx/v5: PostgreSQL driver and connection pooling.
 * - github.com/redis/go-redis/v9: Redis client for rate limiting.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages.
 * - pkg/openaiclient: Client for the OpenAI completions API.
 * - pkg/rabbitmq: Event producer for RabbitMQ.
 */

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/umaremlyn/Adstreamai/internal/api"
	"github.com/umaremlyn/Adstreamai/internal/app"
	"github.com/umaremlyn/Adstreamai/internal/config"
	"github.com/umaremlyn/Adstreamai/internal/store"
	"github.com/umaremlyn/Adstreamai/pkg/openaiclient"
	"github.com/umaremlyn/Adstreamai/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load and validate application configuration. A missing OPENAI_API_KEY
	// or DATABASE_URL fails here, not on the first request.
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	logger.Info("starting campaign service", "port", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database url parse failed", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	// Disable prepared statement caching to prevent conflicts behind poolers.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connected")

	// The broker is optional: without it domain events are logged and dropped.
	var events app.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) != "" {
		producer, prodErr := rabbitmq.NewEventProducer(cfg.RabbitMQURL, logger)
		if prodErr != nil {
			logger.Warn("rabbitmq producer unavailable, using fallback", "error", prodErr)
			events = &rabbitmq.EventProducerFallback{Logger: logger}
		} else {
			defer producer.Close()
			events = producer
			logger.Info("rabbitmq producer connected")
		}
	}

	// Redis is also optional; without it the generation endpoint is simply
	// not rate limited.
	var limiter api.RateLimiter
	if cfg.GenerateRateLimitPerMinute > 0 && strings.TrimSpace(cfg.RedisURL) != "" {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			logger.Warn("redis url parse failed, rate limiting disabled", "error", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
			pingErr := redisClient.Ping(pingCtx).Err()
			cancelPing()
			if pingErr != nil {
				logger.Warn("redis ping failed, rate limiting disabled", "error", pingErr)
				redisClient.Close()
			} else {
				defer redisClient.Close()
				limiter = app.NewRedisGenerationRateLimiter(
					redisClient,
					cfg.RedisRateLimitPrefix,
					cfg.GenerateRateLimitPerMinute,
					time.Minute,
				)
				logger.Info("redis connected", "generate_rate_limit_per_minute", cfg.GenerateRateLimitPerMinute)
			}
		}
	}

	generator := openaiclient.NewClient(
		cfg.OpenAIBaseURL,
		cfg.OpenAIAPIKey,
		cfg.OpenAIModel,
		cfg.GenerationTemperature,
	)

	repository := store.NewRepository(dbpool)

	service := app.NewService(repository, generator, events, logger, app.Options{
		DefaultCredits:    cfg.DefaultCredits,
		GenerationTimeout: time.Duration(cfg.GenerationTimeoutSeconds) * time.Second,
	})

	handler := api.NewHandler(service, limiter, logger)
	router := api.NewRouter(handler, cfg.ClerkJWKSURL)

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutdown started")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	logger.Info("shutdown complete")
}
