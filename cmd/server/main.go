package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/J1yann/streamo/internal/auth"
	"github.com/J1yann/streamo/internal/config"
	"github.com/J1yann/streamo/internal/db"
	"github.com/J1yann/streamo/internal/logging"
	"github.com/J1yann/streamo/internal/server"
	"github.com/J1yann/streamo/internal/tmdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer func(database *sql.DB) {
		_ = database.Close()
	}(database)

	logger := logging.NewLogger("server")
	repo := db.NewRepository(database)
	catalog := tmdb.NewClient(cfg.TMDBAPIKey)
	tokens := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)

	srv := server.New(cfg, repo, catalog, tokens, logger)
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("streamo listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.WithError(err).Warn("graceful shutdown error")
	}
}
