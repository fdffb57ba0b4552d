package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Satyam216/todo-collab/internal/api"
	"github.com/Satyam216/todo-collab/internal/api/middleware"
	"github.com/Satyam216/todo-collab/internal/auth"
	"github.com/Satyam216/todo-collab/internal/config"
	"github.com/Satyam216/todo-collab/internal/handlers"
	"github.com/Satyam216/todo-collab/internal/hub"
	"github.com/Satyam216/todo-collab/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the data store: PostgreSQL when configured, SQLite
	// otherwise.
	var dataStore store.DataStore
	if cfg.DatabaseURL != "" {
		logger.Info().Msg("running database migrations...")
		if err := store.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Msg("migrations completed")

		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		dataStore = pgStore
		logger.Info().Msg("connected to PostgreSQL")
	} else {
		sqliteStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		dataStore = sqliteStore
		logger.Info().Msg("using SQLite store")
	}
	defer dataStore.Close()

	// Initialize Redis (sessions, rate limiting, auth event fanout)
	var redisStore *store.RedisStore
	if cfg.RedisURL != "" {
		var err error
		redisStore, err = store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		logger.Info().Msg("connected to Redis")
	}

	// Session layer: Redis-backed when available, in-memory otherwise
	var sessions auth.SessionStore
	var bus auth.Bus
	if redisStore != nil {
		sessions = redisStore
		bus = redisStore
	} else {
		sessions = auth.NewMemorySessions()
		logger.Warn().Msg("no Redis configured, sessions are in-memory")
	}

	broker := auth.NewBroker(bus, logger)
	authService := auth.NewService(dataStore, sessions, broker, cfg.SessionSecret, cfg.SessionTTL, logger)

	// Relay auth events published by other instances into the broker
	if redisStore != nil {
		pubsub := redisStore.SubscribeAuthEvents(ctx)
		defer pubsub.Close()
		go func() {
			for msg := range pubsub.Channel() {
				broker.DispatchRemote([]byte(msg.Payload))
			}
		}()
	}

	// Live task-change fanout
	liveHub := hub.New(logger)
	go liveHub.Run(ctx)
	unwatch := liveHub.WatchAuth(broker)
	defer unwatch()

	// Wire HTTP layer
	h := handlers.NewHandler(dataStore, authService, liveHub, pinger(redisStore), logger)
	guard := middleware.NewGuard(authService)
	limiter := middleware.NewRateLimiter(counter(redisStore), logger)
	router := api.NewRouter(logger, h, guard, limiter)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting todo-collab server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// pinger avoids handing handlers a typed-nil interface when Redis is
// not configured.
func pinger(s *store.RedisStore) handlers.Pinger {
	if s == nil {
		return nil
	}
	return s
}

// counter does the same for the rate limiter.
func counter(s *store.RedisStore) middleware.Counter {
	if s == nil {
		return nil
	}
	return s
}
