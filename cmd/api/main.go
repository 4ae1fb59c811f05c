package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"parcelrate/internal/config"
	"parcelrate/internal/db"
	"parcelrate/internal/logging"
	"parcelrate/internal/rate"
	"parcelrate/internal/server"
	"parcelrate/internal/tariff"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	table, err := tariff.Load(cfg.TariffsPath)
	if err != nil {
		logger.Fatal("failed to load tariffs", zap.String("path", cfg.TariffsPath), zap.Error(err))
	}
	est := rate.NewEngine(table, logger.Named("rate"))

	// Quote history is optional
	var store server.QuoteStore
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, db.PoolOptions{
			MaxConns:         cfg.DBMaxConns,
			MaxConnLifetime:  cfg.DBMaxConnLifetime,
			MaxConnIdleTime:  cfg.DBMaxConnIdleTime,
			StatementTimeout: cfg.DBStatementTimeout,
		})
		if err != nil {
			logger.Fatal("failed to connect db", zap.Error(err))
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("database ping failed", zap.Error(err))
		}
		qs := db.NewQuoteStore(pool)
		if err := qs.EnsureSchema(ctx); err != nil {
			logger.Fatal("failed to prepare schema", zap.Error(err))
		}
		store = qs
	} else {
		logger.Warn("DATABASE_URL not set, quote history disabled")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(est, store, logger.Named("http")),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("api listening", zap.String("port", cfg.Port), zap.Bool("quote_history", store != nil))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}
