package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flavourai/backend/internal/api"
	"github.com/flavourai/backend/internal/config"
	"github.com/flavourai/backend/internal/engine"
	"github.com/flavourai/backend/internal/storage"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "recommender-api")

	// 1. Config
	cfg := config.Load()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		entry.Warnf("Unknown log level %q, using info", cfg.LogLevel)
	}

	entry.Info("Starting Flavour Recommendation API Service")

	// 2. Storage
	store, err := storage.NewCSVStorage(cfg.Data.RecipesPath, cfg.Data.ReviewsPath, entry)
	if err != nil {
		entry.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// 3. Engine
	eng, err := engine.Load(store, engine.OptionsFromConfig(cfg), entry)
	if err != nil {
		entry.Fatalf("Failed to initialize engine: %v", err)
	}

	// 4. API Server
	server := api.NewServer(eng, entry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.Server)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			entry.Fatal(err)
		}
	case <-ctx.Done():
		entry.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			entry.WithError(err).Error("Graceful shutdown failed")
		}
	}
}
