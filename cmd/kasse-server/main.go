package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"kassensystem/internal/api"
	"kassensystem/internal/archive"
	"kassensystem/internal/auth"
	"kassensystem/internal/checkout"
	"kassensystem/internal/config"
	"kassensystem/internal/inventory"
	"kassensystem/internal/logger"
	"kassensystem/internal/orders"
	"kassensystem/internal/session"
	"kassensystem/internal/storage"
	"kassensystem/internal/tips"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Kassensystem server")

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.Database.DSN)
	if err != nil {
		log.Fatal("DB", fmt.Sprintf("Failed to open SQLite database: %v", err))
	}
	defer sqldb.Close()

	// SQLite serializes writers; one connection keeps bun away from
	// locked-database errors under the shared-cache DSN.
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.Ping(); err != nil {
		log.Fatal("DB", fmt.Sprintf("Failed to connect to SQLite: %v", err))
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	if err := storage.Migrate(bunDB); err != nil {
		log.Fatal("DB", fmt.Sprintf("Migration failed: %v", err))
	}
	log.Info("DB", "SQLite ready at "+cfg.Database.DSN)

	store := storage.NewKV(bunDB, cfg.POS.DefaultPasscode, log)

	sess, err := session.New(store, log)
	if err != nil {
		log.Fatal("SESSION", fmt.Sprintf("Failed to load till state: %v", err))
	}

	gate := auth.NewGate(sess, log)
	inventoryService := inventory.NewService(sess, log)
	checkoutService := checkout.NewService(sess, gate, log)
	orderService := orders.NewService(sess, gate, log)
	tipService := tips.NewService(sess, log)
	archiveService := archive.NewService(sess, log, cfg.POS.ArchiveYearTag)

	handler := api.NewHandler(sess, gate, checkoutService, orderService, tipService, inventoryService, archiveService, log)

	// WriteTimeout stays unset: the session event stream holds its
	// response open for the lifetime of the client.
	server := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     handler.Router(),
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", "🚀 Kassensystem running on "+cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
	log.Info("APP", "Server exited gracefully")
}
