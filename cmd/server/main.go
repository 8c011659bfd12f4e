package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	h "github.com/veranemoloko/task-workflow/internal/api/http"
	cfgpkg "github.com/veranemoloko/task-workflow/internal/config"
	errpkg "github.com/veranemoloko/task-workflow/internal/errors"
	repo "github.com/veranemoloko/task-workflow/internal/repository"
	svc "github.com/veranemoloko/task-workflow/internal/service"
)

func main() {

	cfg, err := cfgpkg.Load()
	if err != nil {
		if errors.Is(err, errpkg.ErrConfigNotFound) {
			slog.Error("configuration file not found", "error", err)
		} else {
			slog.Error("failed to load configuration", "error", err)
		}
		os.Exit(1)
	}

	logger := cfgpkg.SetupLogger(cfg)
	logger.Info("configuration loaded successfully", "storage_driver", cfg.StorageDriver)

	taskRepo, err := openRepository(cfg)
	if err != nil {
		logger.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := taskRepo.Close(); err != nil {
			logger.Error("failed to close repository", "error", err)
		}
	}()

	taskService := svc.NewTaskService(taskRepo, logger)

	router := h.NewRouter(taskService, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		return
	}
	logger.Info("server stopped gracefully")
}

func openRepository(cfg *cfgpkg.Config) (repo.TaskRepo, error) {
	switch cfg.StorageDriver {
	case cfgpkg.StorageSQLite:
		return repo.NewSQLiteStorage(cfg.DatabasePath)
	default:
		return repo.NewTaskStorage(cfg.StateFile)
	}
}
