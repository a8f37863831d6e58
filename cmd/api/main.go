// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/infrastructure/database/memory"
	"github.com/optommarket/backend/internal/infrastructure/database/postgres"
	"github.com/optommarket/backend/internal/infrastructure/database/redis"
	"github.com/optommarket/backend/internal/infrastructure/database/seed"
	"github.com/optommarket/backend/internal/interfaces/http"
	"github.com/optommarket/backend/internal/pkg/auth"
	"github.com/optommarket/backend/internal/pkg/logger"
	"github.com/optommarket/backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("starting")

	store, err := openStorage(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open storage")
	}
	defer store.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewConnection(cfg, log)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to Redis")
		}
		defer redisClient.Close()
	} else {
		log.Warn("Redis disabled: category cache and token revocation are off, rate limiting is per process")
	}

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), time.Minute)
	if err := seed.New(store, auth.NewPasswordManager(cfg), cfg, log).Run(seedCtx); err != nil {
		log.WithError(err).Warn("data seeding failed")
	}
	cancelSeed()

	server := http.NewServer(cfg, log, store, redisClient)

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("failed to shut down HTTP server gracefully")
	}

	log.Info("server shutdown completed")
}

// openStorage selects the backend named by STORAGE_DRIVER. PostgreSQL is
// migrated before use.
func openStorage(cfg *config.Config, log *logrus.Logger) (storage.Storage, error) {
	if cfg.Database.Driver == config.StorageDriverMemory {
		log.Warn("using in-memory storage: data is lost on restart")
		return memory.New(), nil
	}

	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		return nil, err
	}

	migration := postgres.NewMigration(db.GetDB(), log)
	if err := migration.RunAutoMigrations(); err != nil {
		db.Close()
		return nil, err
	}
	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("index creation failed")
	}

	return postgres.NewStorage(db), nil
}
