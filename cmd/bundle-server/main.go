package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/merchkit/image-bundler/internal/api"
	"github.com/merchkit/image-bundler/pkg/archive"
	"github.com/merchkit/image-bundler/pkg/bundle"
	"github.com/merchkit/image-bundler/pkg/config"
	"github.com/merchkit/image-bundler/pkg/history"
	"github.com/merchkit/image-bundler/pkg/logging"
	"github.com/merchkit/image-bundler/pkg/resolver"
	"github.com/merchkit/image-bundler/pkg/shop"
	"github.com/merchkit/image-bundler/pkg/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		log.Fatal().Err(err).Msg("Configuration error")
	}

	logging.Setup(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	// Storage sink
	sink, err := storage.Open(ctx, cfg.BucketURL)
	if err != nil {
		log.Fatal().Err(err).Str("bucket", cfg.BucketURL).Msg("Failed to open bucket")
	}
	defer sink.Close()

	// Shop API client
	shopClient, err := shop.New(shop.DefaultConfig(cfg.BaseURL(), cfg.AccessToken))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create shop client")
	}

	// Archive streamer
	streamer, err := archive.New(archive.DefaultConfig(sink))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create archive streamer")
	}

	// Optional redis-backed bundle history
	var historyStore *history.Store
	var historyRecorder bundle.HistoryRecorder
	var historyReader api.HistoryReader
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to redis")
		}
		defer redisClient.Close()
		historyStore = history.NewStore(redisClient)
		historyRecorder = historyStore
		historyReader = historyStore
		log.Info().Str("addr", cfg.RedisAddr).Msg("Bundle history enabled")
	}

	service, err := bundle.NewService(bundle.Config{
		Orders:   shopClient,
		Resolver: resolver.New(shopClient),
		Archiver: streamer,
		History:  historyRecorder,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bundle service")
	}

	server := api.NewServer(service, historyReader)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: server,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("shop", cfg.ShopDomain).
			Msg("Starting bundle server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Shutdown incomplete")
	}
}
