package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vytor/conceptpulse/internal/api"
	"github.com/vytor/conceptpulse/internal/config"
	"github.com/vytor/conceptpulse/internal/db"
	"github.com/vytor/conceptpulse/internal/jobs"
	"github.com/vytor/conceptpulse/internal/logger"
	"github.com/vytor/conceptpulse/internal/repository/sqlite"
	"github.com/vytor/conceptpulse/internal/services"
	"github.com/vytor/conceptpulse/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
		logger.WithJSON(strings.EqualFold(cfg.LogFormat, "json")),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("ConceptPulse Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("log_format=%s", cfg.LogFormat)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("due_limit=%d", cfg.DueLimit)
	log.Debug("max_deck_bytes=%d", cfg.MaxDeckBytes)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	importPool := worker.NewPool(cfg.ImportWorkerCount, cfg.ImportQueueSize)

	cardRepo := sqlite.NewCardRepository(database.DB)
	reviewRepo := sqlite.NewReviewRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)
	queue := jobs.NewWorkerQueue(importPool, cardRepo)

	srv := &api.Server{
		Cards:        services.NewCardService(cardRepo, cfg.DueLimit),
		Reviews:      services.NewReviewService(cardRepo, reviewRepo),
		Stats:        services.NewStatsService(statsRepo),
		Decks:        services.NewDeckService(cardRepo, queue),
		DB:           database,
		MaxDeckBytes: int64(cfg.MaxDeckBytes),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	importPool.Start(ctx)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      45 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Queued imports still finish; the database closes after the pool drains.
	log.Debug("stopping import pool")
	importPool.Stop()

	log.Info("===========================================")
	log.Info("ConceptPulse Server Stopped")
	log.Info("===========================================")
}
