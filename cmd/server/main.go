package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	billingapp "github.com/propman/backend/internal/application/billing"
	contractapp "github.com/propman/backend/internal/application/contract"
	noticeapp "github.com/propman/backend/internal/application/notice"
	domainnotification "github.com/propman/backend/internal/domain/notification"
	"github.com/propman/backend/internal/infrastructure/cache"
	"github.com/propman/backend/internal/infrastructure/config"
	"github.com/propman/backend/internal/infrastructure/logger"
	"github.com/propman/backend/internal/infrastructure/notification"
	"github.com/propman/backend/internal/infrastructure/persistence"
	"github.com/propman/backend/internal/infrastructure/scheduler"
	"github.com/propman/backend/internal/interfaces/http/handler"
	"github.com/propman/backend/internal/interfaces/http/middleware"
	"github.com/propman/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting rental billing engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Repositories
	contractRepo := persistence.NewGormContractRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	warningRepo := persistence.NewGormWarningRepository(db.DB)
	actorDirectory := persistence.NewGormActorDirectory(db.DB)
	billingScope := persistence.NewGormBillingTransactionScope(db.DB)
	noticeScope := persistence.NewGormNoticeTransactionScope(db.DB)

	// Outbound notifications
	var deliverer domainnotification.Deliverer
	switch cfg.Notification.Mode {
	case "webhook":
		deliverer = notification.NewWebhookDeliverer(
			cfg.Notification.Endpoint,
			cfg.Notification.LinkBaseURL,
			cfg.Notification.Timeout,
			log,
		)
		log.Info("Notification webhook enabled", zap.String("endpoint", cfg.Notification.Endpoint))
	default:
		deliverer = notification.NewLogDeliverer(log)
	}

	// Application services
	contractService := contractapp.NewService(contractRepo, log)
	scheduleService := billingapp.NewScheduleService(contractRepo, invoiceRepo, billingScope, deliverer, log)
	warningService := billingapp.NewWarningService(invoiceRepo, warningRepo, log)
	escalationService := billingapp.NewEscalationService(contractRepo, invoiceRepo, warningRepo, deliverer, log)
	noticeService := noticeapp.NewService(noticeScope, actorDirectory, deliverer, log)
	reminderService := noticeapp.NewReminderService(contractRepo, deliverer, log)

	// Sweep trigger with a distributed guard when Redis is reachable,
	// an in-process guard otherwise
	var guard cache.SweepGuard
	redisGuard, err := cache.NewRedisSweepGuard(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("Redis unavailable, sweep guard is process local", zap.Error(err))
		guard = cache.NewInMemorySweepGuard()
	} else {
		defer func() {
			_ = redisGuard.Close()
		}()
		guard = redisGuard
	}

	sweepTrigger := scheduler.NewSweepTrigger(
		scheduler.SweepTriggerConfig{
			EscalationInterval: cfg.Sweep.EscalationInterval,
			ReminderHour:       cfg.Sweep.ReminderHour,
			ReminderMinute:     cfg.Sweep.ReminderMinute,
			CheckInterval:      cfg.Sweep.CheckInterval,
			GuardTTL:           cfg.Sweep.GuardTTL,
		},
		escalationService,
		reminderService,
		guard,
		log,
	)
	if cfg.Sweep.Enabled {
		if err := sweepTrigger.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sweep trigger", zap.Error(err))
		}
	} else {
		log.Info("Scheduled sweeps disabled")
	}

	// HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}

	systemHandler := handler.NewSystemHandler(db, sweepTrigger)
	systemHandler.RegisterHealthRoute(engine)

	router.New(engine,
		router.WithAPIVersion("v1"),
		router.WithGroupMiddleware(middleware.ActorIdentity()),
	).
		Register(handler.NewContractHandler(contractService)).
		Register(handler.NewBillingHandler(scheduleService, warningService)).
		Register(handler.NewNoticeHandler(noticeService)).
		Register(systemHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if cfg.Sweep.Enabled {
		if err := sweepTrigger.Stop(shutdownCtx); err != nil {
			log.Error("Sweep trigger shutdown failed", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	log.Info("Shutdown complete")
}
