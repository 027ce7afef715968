package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpadapter "github.com/iho/vestflow/internal/adapter/http"
	"github.com/iho/vestflow/internal/adapter/http/handler"
	filerepo "github.com/iho/vestflow/internal/adapter/repository/file"
	memoryrepo "github.com/iho/vestflow/internal/adapter/repository/memory"
	pgrepo "github.com/iho/vestflow/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/vestflow/internal/adapter/repository/redis"
	sqliterepo "github.com/iho/vestflow/internal/adapter/repository/sqlite"
	"github.com/iho/vestflow/internal/infrastructure/auth"
	"github.com/iho/vestflow/internal/infrastructure/config"
	"github.com/iho/vestflow/internal/infrastructure/logger"
	"github.com/iho/vestflow/internal/infrastructure/metrics"
	"github.com/iho/vestflow/internal/infrastructure/postgres"
	redisinfra "github.com/iho/vestflow/internal/infrastructure/redis"
	"github.com/iho/vestflow/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, pool, redisClient, cleanup, err := newCounterStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	m := metrics.New()
	idGen := usecase.NewVTGenerator(store, log, m)

	pipeline := usecase.NewPipelineUseCase(
		usecase.NewOutflowUseCase(log, m),
		usecase.NewTransferUseCase(idGen, log, m),
		usecase.NewRewardUseCase(idGen, log, m),
		usecase.NewSuppressionUseCase(log, m),
		log,
		m,
	)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		if cfg.JWTSecret == "" {
			return fmt.Errorf("AUTH_ENABLED requires JWT_SECRET")
		}
		jwtManager = auth.NewJWTManager(cfg.JWTSecret)
	}

	router := httpadapter.NewRouter(httpadapter.RouterConfig{
		PipelineHandler: handler.NewPipelineHandler(pipeline, cfg.MaxUploadBytes, log),
		HealthHandler:   handler.NewHealthHandler(pool, redisClient),
		Logger:          log,
		JWTManager:      jwtManager,
		AuthEnabled:     cfg.AuthEnabled,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.HTTPPort).
			Str("counter_backend", cfg.CounterBackend).
			Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// newCounterStore builds the configured id counter backend. The pool
// and redis client are returned for the readiness probe; they stay nil
// for the local backends.
func newCounterStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (usecase.CounterStore, *pgxpool.Pool, *goredis.Client, func(), error) {
	noop := func() {}

	switch cfg.CounterBackend {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			return nil, nil, nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			pool.Close()
			return nil, nil, nil, noop, fmt.Errorf("run migrations: %w", err)
		}
		store := pgrepo.NewCounterStore(pool, pgrepo.NewRetrier(log))
		return store, pool, nil, pool.Close, nil

	case "redis":
		client, err := redisinfra.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, noop, fmt.Errorf("connect redis: %w", err)
		}
		store := redisrepo.NewCounterStore(client, cfg.CounterRedisKey)
		return store, nil, client, func() { client.Close() }, nil

	case "sqlite":
		store, err := sqliterepo.Open(cfg.CounterSQLitePath)
		if err != nil {
			return nil, nil, nil, noop, fmt.Errorf("open sqlite counter: %w", err)
		}
		return store, nil, nil, func() { store.Close() }, nil

	case "file":
		return filerepo.NewCounterStore(cfg.CounterFilePath), nil, nil, noop, nil

	case "memory":
		return memoryrepo.NewCounterStore(), nil, nil, noop, nil

	default:
		return nil, nil, nil, noop, fmt.Errorf("unknown counter backend %q", cfg.CounterBackend)
	}
}
