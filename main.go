package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"adboard/internal/assist"
	"adboard/internal/auth"
	"adboard/internal/broker"
	"adboard/internal/handler"
	"adboard/internal/infrastructure/repository"
	"adboard/internal/service"
	"adboard/internal/storage"
	"adboard/pkg/config"
	"adboard/pkg/database"
	"adboard/pkg/events"
	"adboard/pkg/health"
	"adboard/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.NewLogger(logging.LogConfig{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
		Output: "stdout",
	})

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", err)
	}

	watcher := config.NewWatcher(30 * time.Second)
	watcher.Start()
	defer watcher.Close()
	go func() {
		for chg := range watcher.Subscribe() {
			if chg.Err != nil {
				logger.Error("config reload failed", chg.Err)
				continue
			}
			logger.Info("configuration reloaded", logging.Any("fields", chg.Fields))
		}
	}()

	db, err := database.NewWithConfig(cfg.DatabaseURL, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", err)
	}
	defer db.Close()

	repo := repository.NewSQLRepository(db)
	uowFactory := repository.NewSQLUnitOfWorkFactory(db)
	bus := events.NewBus(logger)

	authManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	adService := service.NewAdvertisementService(repo, uowFactory, bus, logger, cfg.SearchLimit)
	moderationService := service.NewModerationService(repo, uowFactory, bus, logger)
	categoryService := service.NewCategoryService(repo, logger)
	userService := service.NewUserService(repo, authManager, logger)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ModeratorsFilePath != "" {
		if err := auth.ApplyRoleBootstrap(rootCtx, cfg.ModeratorsFilePath, repo, logger); err != nil {
			logger.Fatal("role bootstrap failed", err)
		}
	}

	var photoStore *storage.PhotoStore
	if cfg.MinioEndpoint != "" {
		photoStore, err = storage.NewPhotoStore(rootCtx, cfg, logger)
		if err != nil {
			logger.Fatal("failed to connect to object storage", err)
		}
	}

	reviewer := assist.NewReviewer(cfg, logger)

	if cfg.KafkaBrokers != "" {
		consumer := broker.NewConsumer(cfg, logger)
		consumer.Register("moderation_decisions",
			broker.TypeIs(broker.TypeModerationDecision),
			broker.NewDecisionHandler(moderationService, repo))
		go func() {
			if err := consumer.Run(rootCtx); err != nil {
				logger.Error("broker consumer stopped", err)
			}
		}()
	}

	checker := health.NewChecker(5 * time.Second)
	checker.Register("database", health.DatabaseCheck(db.Conn()))

	h := handler.New(handler.Deps{
		Advertisements: adService,
		Moderation:     moderationService,
		Categories:     categoryService,
		Users:          userService,
		AuthManager:    authManager,
		Photos:         photoStore,
		Reviewer:       reviewer,
		Config:         cfg,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h.Router(checker),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			logging.String("port", cfg.Port),
			logging.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", err)
		}
	}()

	<-rootCtx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", err)
	}
}
