package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/cancerinfo/cms/config"
	"github.com/cancerinfo/cms/internal/database"
	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/media"
	"github.com/cancerinfo/cms/internal/server"
	"github.com/cancerinfo/cms/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	if cfg.Env == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg, lg)
	if err != nil {
		lg.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.RunMigrations(db, lg); err != nil {
		lg.Fatal("Failed to run migrations", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := media.NewStore(ctx, cfg, lg)
	cancel()
	if err != nil {
		lg.Fatal("Failed to initialize media store", "error", err)
	}

	// Redis only backs the rate limiter, so the server runs without it.
	var rdb *redis.Client
	if client, err := database.NewRedisClient(cfg, lg); err != nil {
		lg.Warn("Redis unavailable, rate limiting disabled", "error", err)
	} else {
		rdb = client
		defer rdb.Close()
	}

	sessions := service.NewSessionService(db, lg, cfg.SessionTTL)
	if n, err := sessions.PurgeExpired(context.Background()); err != nil {
		lg.Warn("Failed to purge expired sessions", "error", err)
	} else if n > 0 {
		lg.Info("Purged expired sessions", "count", n)
	}

	srv := server.New(cfg, server.Deps{DB: db, Redis: rdb, Media: store, Log: lg})

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			lg.Fatal("Server error", "error", err)
		}
		return
	case sig := <-quit:
		lg.Info("Received signal", "signal", sig.String())
	}

	lg.Info("Shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Fatal("Server shutdown error", "error", err)
	}
	lg.Info("Server stopped")
}
