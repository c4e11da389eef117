package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"todo-planner/internal/config"
	"todo-planner/internal/notify"
	"todo-planner/internal/repository"
	"todo-planner/internal/server"
	"todo-planner/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := newLogger(cfg.Development)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	metaRepo := repository.NewMetaRepository(db)

	emailClient := notify.NewEmailClient(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom, cfg.EmailTemplateID)
	pushClient := notify.NewPushClient(cfg.PushAPIURL, cfg.PushAPIKey)

	taskSvc := service.NewTaskService(taskRepo, categoryRepo)
	categorySvc := service.NewCategoryService(categoryRepo)
	statsSvc := service.NewStatsService(taskRepo, categoryRepo, metaRepo)
	overdueSvc := service.NewOverdueService(taskRepo, userRepo, metaRepo, emailClient, cfg.BaseURL, logger)
	reminderSvc := service.NewReminderService(taskRepo, metaRepo, pushClient, cfg.BaseURL, logger)

	srv := server.New(cfg, logger, userRepo, metaRepo, taskSvc, categorySvc, statsSvc, overdueSvc, reminderSvc)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", cfg.HTTPAddr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped with error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

func newLogger(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
