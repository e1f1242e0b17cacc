package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/event-bed-booking/internal/config"
	"github.com/iliyamo/event-bed-booking/internal/database"
	"github.com/iliyamo/event-bed-booking/internal/handler"
	"github.com/iliyamo/event-bed-booking/internal/logger"
	"github.com/iliyamo/event-bed-booking/internal/middleware"
	"github.com/iliyamo/event-bed-booking/internal/queue"
	"github.com/iliyamo/event-bed-booking/internal/repository"
	"github.com/iliyamo/event-bed-booking/internal/router"
	"github.com/iliyamo/event-bed-booking/internal/service"
	"github.com/iliyamo/event-bed-booking/internal/tenant"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "event-bed-booking")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()
	if cfg.DBAutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := database.Migrate(ctx, db)
		cancel()
		if err != nil {
			log.Fatal("database migrate failed", zap.Error(err))
		}
	}

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting, response cache and tenant cache disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	brokerURL := queue.BrokerURL()
	publisher := queue.NewPublisher(brokerURL)
	go func() {
		if err := queue.NewConsumer(brokerURL, log.Named("consumer")).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("booking consumer stopped", zap.Error(err))
		}
	}()

	eventRepo := repository.NewEventRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	waitlistRepo := repository.NewWaitlistRepo(db)

	resolver := tenant.NewResolver(eventRepo, rdb, cfg.TenantCacheTTL, log.Named("tenant"))
	bookings := service.NewBookingService(bookingRepo, publisher, log.Named("bookings"))
	waitlist := service.NewWaitlistService(waitlistRepo, log.Named("waitlist"))

	purge := func(ctx context.Context) error { return middleware.PurgeCache(ctx, cacheCfg, rdb) }
	rooms := handler.NewRoomHandler(roomRepo, eventRepo, purge, log)
	rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log.Named("ratelimit"))

	e := router.New(log)
	router.RegisterRoutes(e)
	router.RegisterEvent(e, router.EventScoped{
		Resolve:   middleware.ResolveEvent(resolver, log),
		RateLimit: rateLimit,
		Cache:     middleware.NewRedisCache(cacheCfg, rdb),
		Bookings:  handler.NewBookingHandler(bookings, log),
		Waitlist:  handler.NewWaitlistHandler(waitlist, log),
		Rooms:     rooms,
	})
	router.RegisterAdmin(e,
		handler.NewAuthHandler(cfg, log),
		handler.NewEventHandler(eventRepo, resolver, log),
		rooms, cfg.JWTSecret, rateLimit)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
