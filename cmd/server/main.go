package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/brvalue/fleuriet/internal/clients/bcb"
	"github.com/brvalue/fleuriet/internal/clients/marketdata"
	"github.com/brvalue/fleuriet/internal/clients/retry"
	"github.com/brvalue/fleuriet/internal/config"
	"github.com/brvalue/fleuriet/internal/database"
	"github.com/brvalue/fleuriet/internal/modules/analysis"
	"github.com/brvalue/fleuriet/internal/modules/portfolio"
	"github.com/brvalue/fleuriet/internal/modules/ranking"
	"github.com/brvalue/fleuriet/internal/modules/reclassification"
	"github.com/brvalue/fleuriet/internal/modules/universe"
	"github.com/brvalue/fleuriet/internal/scheduler"
	"github.com/brvalue/fleuriet/internal/server"
	"github.com/brvalue/fleuriet/pkg/logger"
)

func main() {
	// Bootstrap logger, replaced once configuration is loaded
	log := logger.New(logger.Config{
		Level:  "info",
		Pretty: true,
	})

	log.Info().Msg("Starting Fleuriet analysis engine")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	// Optional chart-of-accounts overrides, applied before any run
	if cfg.AccountMappingFile != "" {
		if err := reclassification.LoadOverrides(cfg.AccountMappingFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to load account mapping overrides")
		}
		log.Info().Str("file", cfg.AccountMappingFile).Msg("Account mapping overrides applied")
	}

	// Fundamentals database holds the immutable statement archive
	fundamentalsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "fundamentals.db"),
		Profile: database.ProfileArchive,
		Name:    "fundamentals",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open fundamentals database")
	}
	defer fundamentalsDB.Close()

	// Results database holds analysis run outputs
	resultsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "results.db"),
		Profile: database.ProfileStandard,
		Name:    "results",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open results database")
	}
	defer resultsDB.Close()

	// Run migrations
	if err := fundamentalsDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate fundamentals database")
	}
	if err := resultsDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate results database")
	}

	// Repositories
	companies := universe.NewCompanyRepository(fundamentalsDB.Conn(), log)
	statements := universe.NewStatementRepository(fundamentalsDB.Conn(), log)
	prices := universe.NewPriceRepository(fundamentalsDB.Conn(), log)
	results := analysis.NewRepository(resultsDB.Conn(), log)

	// External data clients
	policy := retry.Policy{
		MaxAttempts: cfg.Fetch.MaxRetries,
		BaseDelay:   cfg.Fetch.RetryBaseDelay,
		MaxDelay:    30 * time.Second,
	}
	rates := bcb.NewClient(cfg.Fetch.BCBBaseURL, cfg.Fetch.RequestTimeout, policy, log)
	provider := marketdata.NewHTTPClient(cfg.Fetch.MarketDataBaseURL, cfg.Fetch.RequestTimeout, policy, log)

	// Analysis pipeline
	analysisSvc := analysis.NewService(
		companies,
		statements,
		prices,
		provider,
		rates,
		ranking.NewService(log),
		portfolio.NewAllocator(log),
		results,
		cfg,
		log,
	)

	// Initialize scheduler
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.RefreshSchedule, scheduler.NewRefreshJob(analysisSvc, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh job")
	}
	sched.Start()
	defer sched.Stop()

	// Initialize HTTP server
	srv := server.New(server.Config{
		Log:       log,
		Cfg:       cfg,
		Analysis:  analysisSvc,
		Results:   results,
		Companies: companies,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
