package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/floodsense/floodsense-go/pkg/api"
	"github.com/floodsense/floodsense-go/pkg/artifacts"
	"github.com/floodsense/floodsense-go/pkg/config"
	"github.com/floodsense/floodsense-go/pkg/ingest"
	"github.com/floodsense/floodsense-go/pkg/prediction"
	"github.com/floodsense/floodsense-go/pkg/regions"
	"github.com/floodsense/floodsense-go/pkg/scheduler"
	"github.com/floodsense/floodsense-go/pkg/store"
	"github.com/floodsense/floodsense-go/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	logger := utils.GetLogger()
	logger.Info("starting FloodSense server", utils.String("environment", cfg.Environment))

	// Load the region catalogue
	registry, err := regions.Load()
	if err != nil {
		logger.Fatal("failed to load region catalogue", err)
	}
	logger.Info("loaded region catalogue", utils.Int("regions", registry.Len()))

	// Initialize persistence
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatal("failed to create data directory", err)
	}

	obsStore, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("failed to initialize observation store", err)
	}
	defer obsStore.Close()
	logger.Info("initialized observation store", utils.String("path", cfg.DatabasePath))

	artifactStore, err := artifacts.NewStore(filepath.Join(cfg.DataDir, "model"))
	if err != nil {
		logger.Fatal("failed to initialize artifact store", err)
	}

	// Build the prediction service and restore any persisted model
	predictor := prediction.NewService(registry, artifactStore,
		prediction.WithObservationSource(obsStore))
	if err := predictor.LoadArtifacts(); err != nil {
		logger.Fatal("failed to restore model artifacts", err)
	}
	logger.Info("prediction service ready", utils.String("model_state", string(predictor.State())))

	// Start the recurring ingestion and retrain jobs
	ingester := ingest.NewClient(cfg.WeatherAPIURL)
	jobs := scheduler.NewService(registry, ingester, obsStore, predictor, cfg.TrainingSamples)
	if err := jobs.Start(cfg.IngestSchedule, cfg.RetrainSchedule); err != nil {
		logger.Fatal("failed to start scheduler", err)
	}
	defer jobs.Stop()

	// Start the API server
	server := api.NewServer(predictor, registry, obsStore, cfg.Port)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("API server failed", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown did not complete cleanly", err)
	}
}
