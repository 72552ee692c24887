package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fill11/match-service/config"
	"github.com/fill11/match-service/internal/consumer"
	"github.com/fill11/match-service/internal/events"
	"github.com/fill11/match-service/internal/handler"
	"github.com/fill11/match-service/internal/middleware"
	"github.com/fill11/match-service/internal/payment"
	"github.com/fill11/match-service/internal/repository"
	"github.com/fill11/match-service/internal/service"
	"github.com/fill11/match-service/pkg/database"
	"github.com/fill11/match-service/pkg/rabbitmq"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.NewPostgresDB(cfg.DSN(), log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}

	// Redis backs the rate limiter and, optionally, event fan-out. The service
	// runs without it.
	var rdb *redis.Client
	if cfg.RateLimitPerMinute > 0 || cfg.EventsBackend == "redis" {
		rdb, err = database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("redis unavailable, rate limiting and redis events disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	var publisher events.Publisher = events.Nop{}
	switch cfg.EventsBackend {
	case "rabbitmq":
		mqPublisher, err := rabbitmq.NewPublisher(cfg.RabbitURL, log)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqPublisher.Close()
		publisher = mqPublisher
	case "redis":
		if rdb != nil {
			publisher = events.NewRedisPublisher(rdb, "matches", log)
		}
	}

	// Repositories
	matchRepo := repository.NewMatchRepository(db)
	venueRepo := repository.NewVenueRepository(db)
	vacancyRepo := repository.NewVacancyRepository(db)
	escrowRepo := repository.NewEscrowRepository(db)
	checkinRepo := repository.NewCheckinRepository(db)
	scorecardRepo := repository.NewScorecardRepository(db)
	statsRepo := repository.NewUserStatsRepository(db)

	// Venue sync from the venue owner
	if cfg.VenueSyncEnabled {
		mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL, log)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer mqConsumer.Close()

		msgs, err := mqConsumer.Consume()
		if err != nil {
			log.Fatal("failed to start consuming", zap.Error(err))
		}
		consumer.NewVenueConsumer(venueRepo, log).Start(ctx, msgs)
	}

	// Services
	ledger := service.NewVacancyLedger(vacancyRepo, matchRepo, log)
	escrow := service.NewEscrowEngine(escrowRepo, log)
	verifier := service.NewCheckinVerifier(checkinRepo, matchRepo, venueRepo,
		cfg.CheckinRadiusMeters, cfg.CheckinUniquePerUser, log)

	var orders service.OrderCreator
	if cfg.PaymentOrderURL != "" {
		orders = payment.NewOrderClient(cfg.PaymentOrderURL, cfg.PaymentKeyID, cfg.PaymentKeySecret,
			cfg.PaymentCurrency, cfg.PaymentTimeout, log)
	}

	matchSvc := service.NewMatchService(service.MatchServiceDeps{
		MatchRepo:     matchRepo,
		VenueRepo:     venueRepo,
		VacancyRepo:   vacancyRepo,
		EscrowRepo:    escrowRepo,
		CheckinRepo:   checkinRepo,
		ScorecardRepo: scorecardRepo,
		StatsRepo:     statsRepo,
		Ledger:        ledger,
		Escrow:        escrow,
		Verifier:      verifier,
		Orders:        orders,
		OrderFallback: cfg.PaymentOrderFallback,
		Publisher:     publisher,
		Log:           log,
	})
	venueSvc := service.NewVenueService(venueRepo)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = middleware.ErrorHandler(log)
	e.Use(middleware.RequestID())
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", middleware.GetRequestID(c)),
			)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "match-service"})
	})

	api := e.Group("/api/v1")
	handler.NewVenueHandler(venueSvc).RegisterRoutes(api)

	authed := api.Group("", middleware.Auth(cfg.JWTSecret, log))
	var limited echo.MiddlewareFunc
	if rdb != nil && cfg.RateLimitPerMinute > 0 {
		limited = middleware.RateLimit(rdb, cfg.RateLimitPerMinute, time.Minute)
	}
	handler.NewMatchHandler(matchSvc).RegisterRoutes(authed, limited)
	handler.NewEscrowHandler(escrow).RegisterRoutes(authed)
	handler.NewStatsHandler(statsRepo).RegisterRoutes(authed)

	go func() {
		log.Info("match service starting", zap.String("port", cfg.ServerPort))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
}
