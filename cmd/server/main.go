package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"comandero/internal/billing"
	"comandero/internal/commons"
	"comandero/internal/config"
	"comandero/internal/infrastructure/logger"
	"comandero/internal/infrastructure/mysql"
	"comandero/internal/inventory"
	"comandero/internal/order"
	"comandero/internal/product"
	"comandero/internal/server"
	"comandero/internal/table"
)

func main() {
	cfg, err := commons.LoadConfig("internal/config/config.yaml")
	if err != nil {
		cfg, err = config.Load()
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
	}

	zapLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected")

	comandaCtrl := order.NewModule(db, cfg, zapLogger)
	detalleCtrl := inventory.NewModule(db, cfg, zapLogger)
	mesaCtrl := table.NewModule(db, cfg, zapLogger)
	billingCtrl := billing.NewModule(db, cfg, zapLogger)
	productoCtrl := product.NewModule(db, zapLogger)

	router := server.NewRouter(comandaCtrl, detalleCtrl, mesaCtrl, billingCtrl, productoCtrl)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
