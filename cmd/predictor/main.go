package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/AviatorPredictor/internal/api/rounds"
	"github.com/Alias1177/AviatorPredictor/internal/cache"
	"github.com/Alias1177/AviatorPredictor/internal/config"
	"github.com/Alias1177/AviatorPredictor/internal/database"
	"github.com/Alias1177/AviatorPredictor/internal/feed"
	"github.com/Alias1177/AviatorPredictor/internal/logger"
	"github.com/Alias1177/AviatorPredictor/internal/metrics"
	"github.com/Alias1177/AviatorPredictor/internal/notify"
	"github.com/Alias1177/AviatorPredictor/internal/server"
	"github.com/Alias1177/AviatorPredictor/internal/service"
)

func main() {
	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandling(cancel)

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("Starting Aviator Predictor")
	printConfig(cfg)

	// 3. Storage
	db, err := database.New(ctx, database.ConnectionParams{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// 4. Sinks
	var store cache.Store = cache.NewMemory()
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      time.Hour,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rc.Close()
		store = rc
	}

	var notifier notify.Notifier
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Telegram bot")
		}
		notifier = tg
	}

	recorder := metrics.New(prometheus.DefaultRegisterer)

	svc := service.New(service.Options{
		Params:              cfg.Params,
		NotifyMinConfidence: cfg.NotifyMinConfidence,
		LinkRounds:          cfg.FeedURL == "",
	}, service.Deps{
		Store:    db,
		Cache:    store,
		Metrics:  recorder,
		Notifier: notifier,
	})

	if err := svc.Restore(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to restore pending prediction")
	}

	// 5. Round source
	var source feed.Source = feed.RoundStore{Rounds: db}
	if cfg.FeedURL != "" {
		source = rounds.NewClient(rounds.ClientOptions{
			FeedURL:        cfg.FeedURL,
			RequestTimeout: cfg.Timeout(),
			RequestsPerSec: cfg.RequestsPerSec,
			MaxRetries:     3,
		})
		log.Info().Str("url", cfg.FeedURL).Msg("Using HTTP round feed")
	}

	buffer := feed.NewBuffer(cfg.HistorySize)
	poller := feed.NewPoller(source, buffer, svc.HandleUpdate, feed.PollerOptions{
		Interval: cfg.PollEvery(),
		Limit:    cfg.HistorySize,
	})

	// 6. HTTP API
	handler := server.NewHandler(server.HandlerDeps{
		Rounds:      db,
		Predictions: db,
		Latest:      svc,
		Buffer:      buffer,
		Params:      cfg.Params,
		Gatherer:    prometheus.DefaultGatherer,
	})
	srv := server.New(cfg.HTTPAddr, handler.Router())

	// 7. Run until shutdown
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Poller stopped unexpectedly")
		}
	}()

	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("HTTP server failed")
			cancel()
		}
	}()

	wg.Wait()
	log.Info().Msg("Aviator Predictor stopped")
}

// setupSignalHandling cancels ctx on interrupt or termination
func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, stopping...")
		cancel()
	}()
}

// printConfig logs the effective configuration
func printConfig(cfg *config.Config) {
	log.Info().
		Str("DBHost", cfg.DBHost).
		Str("DBName", cfg.DBName).
		Int("HistorySize", cfg.HistorySize).
		Int("PollInterval", cfg.PollInterval).
		Bool("HTTPFeed", cfg.FeedURL != "").
		Str("HTTPAddr", cfg.HTTPAddr).
		Bool("Redis", cfg.RedisAddr != "").
		Bool("Telegram", cfg.TelegramEnabled()).
		Int("NotifyMinConfidence", cfg.NotifyMinConfidence).
		Int("MovingAvgWindow", cfg.Params.MovingAvgWindow).
		Float64("LowThreshold", cfg.Params.LowThreshold).
		Float64("DecayFactor", cfg.Params.DecayFactor).
		Int("ConfidenceBase", cfg.Params.ConfidenceBase).
		Msg("Configuration loaded")
}
