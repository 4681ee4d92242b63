// Package main is the entry point for the storeops API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storeops/internal/core/code"
	"storeops/internal/core/id"
	"storeops/internal/core/tx"
	"storeops/internal/domain/catalog"
	"storeops/internal/domain/stocktake"
	v1 "storeops/internal/infrastructure/http/v1"
	"storeops/internal/infrastructure/http/v1/handlers"
	"storeops/internal/infrastructure/storage/memory"
	"storeops/internal/infrastructure/storage/postgres"
	"storeops/internal/platform/config"
	"storeops/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting storeops server", "storage", cfg.Storage, "env", cfg.AppEnv)

	deps, cleanup, err := buildDependencies(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to initialize storage", "error", err)
	}
	defer cleanup()

	svc := stocktake.NewService(
		deps.repo,
		deps.stock,
		deps.users,
		code.New(code.DefaultConfig("IC")),
		deps.txm,
		deps.auditor,
	)

	router := v1.NewRouter(v1.RouterConfig{
		Logger:      log,
		Stocktake:   svc,
		ReadyProbe:  deps.readyProbe,
		CORSOrigins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

// dependencies groups the storage-backend ports the service needs.
type dependencies struct {
	repo       stocktake.Repository
	stock      catalog.ProductStockPort
	users      catalog.UserDirectory
	txm        tx.Manager
	auditor    stocktake.Auditor
	readyProbe handlers.ReadyProbe
}

func buildDependencies(ctx context.Context, cfg *config.Config, log *logger.Logger) (*dependencies, func(), error) {
	if cfg.Storage == config.StorageMemory {
		log.Info("using in-memory storage")
		return &dependencies{
			repo:    memory.NewCheckRepository(),
			stock:   memory.NewProductStock(sampleProducts()),
			users:   memory.NewUserDirectory(nil),
			txm:     memory.NewTxManager(),
			auditor: memory.NewAuditLog(),
		}, func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, nil, err
	}
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool)
	auditor, err := postgres.NewAuditTrail(txm)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return &dependencies{
		repo:       postgres.NewCheckRepo(txm),
		stock:      postgres.NewProductStockRepo(txm),
		users:      postgres.NewUserDirectoryRepo(txm),
		txm:        txm,
		auditor:    auditor,
		readyProbe: pool.Ping,
	}, pool.Close, nil
}

// sampleProducts seeds memory mode so local runs have something to count.
// IDs are fixed so restarts keep the same catalog.
func sampleProducts() []catalog.Product {
	return []catalog.Product{
		{ID: id.MustParse("7f3b0e1a-9c44-4a2d-8f61-0b2d4e5a6c01"), Name: "Cola 330ml", Quantity: 24},
		{ID: id.MustParse("7f3b0e1a-9c44-4a2d-8f61-0b2d4e5a6c02"), Name: "Chips", Quantity: 12},
		{ID: id.MustParse("7f3b0e1a-9c44-4a2d-8f61-0b2d4e5a6c03"), Name: "Water 1L", Quantity: 40},
		{ID: id.MustParse("7f3b0e1a-9c44-4a2d-8f61-0b2d4e5a6c04"), Name: "Chocolate Bar", Quantity: 18},
		{ID: id.MustParse("7f3b0e1a-9c44-4a2d-8f61-0b2d4e5a6c05"), Name: "Coffee Beans 1kg", Quantity: 6},
	}
}
