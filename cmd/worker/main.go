package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-rebalancer-go/internal/advisor"
	"portfolio-rebalancer-go/internal/api"
	"portfolio-rebalancer-go/internal/config"
	"portfolio-rebalancer-go/internal/database"
	"portfolio-rebalancer-go/internal/logger"
	"portfolio-rebalancer-go/internal/marketdata"
	"portfolio-rebalancer-go/internal/scheduler"
	"portfolio-rebalancer-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")
	st := store.New(db)

	sched := scheduler.New(log)

	if cfg.MarketData.BaseURL != "" {
		syncer := marketdata.NewPriceSyncer(st, marketdata.NewClient(cfg.MarketData, log), log)
		if err := sched.AddJob(cfg.Scheduler.PriceSync, marketdata.SyncJob{Syncer: syncer}); err != nil {
			log.Fatal("Invalid price sync schedule", zap.Error(err))
		}
	} else {
		log.Warn("market_data.base_url is empty, price sync is not scheduled")
	}

	monitor := advisor.MonitorJob{Advisor: advisor.New(st, log)}
	if err := sched.AddJob(cfg.Scheduler.Monitor, monitor); err != nil {
		log.Fatal("Invalid monitor schedule", zap.Error(err))
	}

	status := api.NewStatusServer(cfg.Server.StatusPort, "portfolio-worker", sched, log)
	status.Start()
	sched.Start()

	// Check portfolios once at startup.
	if err := sched.RunNow(context.Background(), monitor); err != nil {
		log.Error("Initial portfolio check failed", zap.Error(err))
	}

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	sched.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := status.Stop(ctx); err != nil {
		log.Error("Failed to stop status server", zap.Error(err))
	}

	log.Info("Worker has been shut down.")
}
