package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"speaker-booking/internal/app"
	"speaker-booking/internal/booking"
	"speaker-booking/internal/config"
	"speaker-booking/internal/events"
	"speaker-booking/internal/logging"
	"speaker-booking/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	store := &app.PGStore{DB: pool}
	if err := store.Migrate(ctx); err != nil {
		logger.Fatal("schema migration failed", zap.Error(err))
	}

	bus, closeBus := newBus(ctx, cfg, logger)
	defer closeBus()

	hub := booking.NewHub(store, bus, logger, booking.Options{
		Location:    cfg.Location(),
		IdleTimeout: cfg.SessionIdleTimeout,
	})
	go func() {
		if err := hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("speaker channel stopped", zap.Error(err))
		}
	}()

	a := &app.App{
		Store:    store,
		Hub:      hub,
		Google:   app.NewGoogleCalendar(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL, cfg.Location()),
		Logger:   logger,
		Location: cfg.Location(),
	}
	if a.Google == nil {
		logger.Info("google calendar mirroring disabled")
	}

	router := server.NewRouter(logger, cfg.AllowedOrigins(), cfg.MaxRequestsPerMin)
	app.RegisterRoutes(router, a, app.AuthMiddleware(cfg.JWTSecret, cfg.Tokens()))

	if err := server.Run(ctx, router, cfg.Addr(), logger); err != nil {
		logger.Fatal("http server failed", zap.Error(err))
	}
}

// newBus picks Redis pub/sub when REDIS_ADDR is set and the in-process bus
// otherwise.
func newBus(ctx context.Context, cfg *config.Config, logger *zap.Logger) (events.Bus, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("speaker channel: in-process")
		return events.NewLocalBus(), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	logger.Info("speaker channel: redis",
		zap.String("addr", cfg.RedisAddr), zap.String("channel", cfg.SpeakerChannel))
	return events.NewRedisBus(client, cfg.SpeakerChannel, logger), func() { _ = client.Close() }
}
