package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/alert-feed/pkg/cache"
	"github.com/Sternrassler/alert-feed/pkg/client"
	"github.com/Sternrassler/alert-feed/pkg/logging"
	"github.com/Sternrassler/alert-feed/pkg/pagination"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logging.Setup(logging.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Output:  os.Stderr,
		Service: "alert-feed",
	})
	logger := logging.NewLogger("main")

	// Setup Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("redis", cfg.RedisURL).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("redis", cfg.RedisURL).Msg("Connected to Redis")

	// Create alerts API client
	clientCfg := client.DefaultConfig(cfg.Endpoint, cfg.UserAgent)
	clientCfg.APIKey = cfg.APIKey
	clientCfg.Redis = redisClient

	apiClient, err := client.New(clientCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create alerts client")
	}

	srv := newServer(cfg, redisClient, apiClient.Fetcher())

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().
			Str("addr", httpServer.Addr).
			Str("endpoint", cfg.Endpoint).
			Str("user_agent", cfg.UserAgent).
			Dur("cache_ttl", cfg.CacheTTL).
			Msg("Starting alert-feed server")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-shutdownCtx.Done()
	logger.Info().Msg("Shutting down")

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(timeoutCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// newServer wires the page cache in front of the API fetcher.
func newServer(cfg config, redisClient *redis.Client, fetcher pagination.Fetcher[client.Alert]) *server {
	manager := cache.NewManager(redisClient)
	return &server{
		cfg:     cfg,
		redis:   redisClient,
		cache:   manager,
		fetcher: cache.NewCachingFetcher(fetcher, manager, client.OperationListAlerts, cfg.CacheTTL),
		logger:  logging.NewLogger("http"),
	}
}
