package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/guardline/restoreaudit/internal/api/handlers"
	"github.com/guardline/restoreaudit/internal/api/router"
	"github.com/guardline/restoreaudit/internal/config"
	"github.com/guardline/restoreaudit/internal/domain/snapshot"
	"github.com/guardline/restoreaudit/internal/ingest"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/pkg/validator"
	"github.com/guardline/restoreaudit/internal/repository/filestore"
	"github.com/guardline/restoreaudit/internal/repository/sqlstore"
	"github.com/guardline/restoreaudit/internal/services"
	"github.com/guardline/restoreaudit/internal/worker"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	repo, err := openRepository(cfg, log)
	if err != nil {
		log.ErrorWithErr(err, "Failed to open snapshot store")
		os.Exit(1)
	}

	assessmentService := services.NewAssessmentService(ingest.New(log), repo, log)

	deps := router.Deps{
		Health:     handlers.NewHealthHandler(repo, version),
		Assessment: handlers.NewAssessmentHandler(assessmentService, validator.New(), cfg.Assessment.Org),
		Logger:     log,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	var scheduler *worker.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler = worker.NewScheduler(assessmentService, cfg.Assessment, cfg.Scheduler.Cron, log)
		if err := scheduler.Start(); err != nil {
			log.ErrorWithErr(err, "Failed to start assessment scheduler")
			os.Exit(1)
		}
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"addr":    srv.Addr,
			"version": version,
		}).Info("API server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.ErrorWithErr(err, "Server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.ErrorWithErr(err, "Forced shutdown")
	}
	log.Info("Server stopped")
}

func openRepository(cfg *config.Config, log *logger.Logger) (snapshot.Repository, error) {
	switch cfg.Store.Backend {
	case "sql":
		db, err := sqlstore.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		return sqlstore.NewSnapshotRepository(db, cfg.Store.Driver), nil
	default:
		return filestore.NewSnapshotRepository(cfg.Store.Dir, log)
	}
}
