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
	"portfolio-rebalancer-go/internal/coach"
	"portfolio-rebalancer-go/internal/config"
	"portfolio-rebalancer-go/internal/database"
	"portfolio-rebalancer-go/internal/investor"
	"portfolio-rebalancer-go/internal/logger"
	"portfolio-rebalancer-go/internal/marketdata"
	"portfolio-rebalancer-go/internal/rebalance"
	"portfolio-rebalancer-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	st := store.New(db)

	deps := api.Deps{
		Investors: investor.NewService(st),
		Rebalance: rebalance.NewService(st, cfg.Rebalance, log),
		Advisor:   advisor.New(st, log),
		Coach:     coach.NewService(st, log),
	}
	if cfg.MarketData.BaseURL != "" {
		deps.Syncer = marketdata.NewPriceSyncer(st, marketdata.NewClient(cfg.MarketData, log), log)
	} else {
		log.Warn("market_data.base_url is empty, price sync is disabled")
	}

	server := api.New(cfg.Server, deps, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Web server failed", zap.Error(err))
		}
	}()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
	<-sigchan
	log.Info("Shutdown signal received, gracefully shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Failed to shut down web server", zap.Error(err))
	}
	log.Info("Portal has been shut down.")
}
