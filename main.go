package main

import (
	"context"
	"errors"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"energytrader/config"
	"energytrader/internal/adapters/httpserver"
	"energytrader/internal/adapters/logger"
	"energytrader/internal/adapters/sqlite"
	"energytrader/internal/app"
	"energytrader/internal/journal"
	"energytrader/internal/ledger"
	"energytrader/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewSlogLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Ledger and Journal from the seed set
	ldg, err := ledger.New(cfg.SeedBalances)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize ledger")
		log.Fatalf("FATAL: Failed to initialize ledger: %v", err)
	}
	jnl := journal.New()
	appLogger.Info(context.Background(), "Ledger initialized", map[string]interface{}{"users": len(cfg.SeedBalances)})

	// 4. Initialize Trade Archive (optional durable collaborator)
	var archive ports.TradeArchive
	if cfg.DBPath != "" {
		sqliteArchive, err := sqlite.NewArchive(sqlite.Config{
			DBPath: cfg.DBPath,
			Logger: appLogger,
		})
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize trade archive")
			log.Fatalf("FATAL: Failed to initialize trade archive: %v", err)
		}
		defer func() {
			if err := sqliteArchive.Close(); err != nil {
				appLogger.Error(context.Background(), err, "Error closing trade archive")
			}
		}()
		archive = sqliteArchive
		appLogger.Info(context.Background(), "Trade archive initialized", map[string]interface{}{"path": cfg.DBPath})
	}

	// 5. Initialize Settlement Service
	settlementService, err := app.NewSettlementService(cfg, appLogger, app.SystemClock{}, ldg, jnl, archive)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize settlement service")
		log.Fatalf("FATAL: Failed to initialize settlement service: %v", err)
	}
	appLogger.Info(context.Background(), "Settlement service initialized")

	// 6. Initialize HTTP Server
	server := httpserver.NewServer(settlementService, appLogger, httpserver.NewMetrics())
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server,
	}

	// 7. Run until a shutdown signal arrives
	errCh := make(chan error, 1)
	go func() {
		appLogger.Info(context.Background(), "HTTP server listening", map[string]interface{}{"addr": cfg.HTTPAddr})
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLogger.Info(context.Background(), "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(context.Background(), err, "HTTP server shutdown failed")
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(context.Background(), err, "HTTP server exited with error")
			log.Fatalf("FATAL: HTTP server exited with error: %v", err)
		}
	}

	appLogger.Info(context.Background(), "Application finished gracefully.")
}
