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

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"gitlab.com/ayan.chowdhury/contact-manager/internal/config"
	"gitlab.com/ayan.chowdhury/contact-manager/internal/logger"
	"gitlab.com/ayan.chowdhury/contact-manager/internal/service"
	"gitlab.com/ayan.chowdhury/contact-manager/internal/store"
)

// Usage example on the command line:
// > DB_HOST=localhost DB_USER=dirk DB_PASSWORD=secret PORT=5000 GIN_MODE=release go run main.go
func main() {
	// A .env file is optional; real environment variables win either way.
	_ = godotenv.Load()

	log, err := logger.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("configuration: %v", err)
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("create upload directory: %v", err)
	}

	sqlDB, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	st, err := store.New(sqlDB, cfg.UploadDir, log)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}
	defer st.Close()

	router := service.SetupHttpRouter(st, cfg.UploadDir, log)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infow("server running", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("http server shutdown failed: %v", err)
	}
}
