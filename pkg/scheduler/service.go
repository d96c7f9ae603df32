// Package scheduler runs the recurring pipeline jobs: the weather ingestion
// sweep and the periodic model retrain.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/floodsense/floodsense-go/pkg/ingest"
	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/prediction"
	"github.com/floodsense/floodsense-go/pkg/regions"
	"github.com/floodsense/floodsense-go/pkg/store"
	"github.com/floodsense/floodsense-go/utils"
)

// jobTimeout bounds a single scheduled job run.
const jobTimeout = 15 * time.Minute

// Service schedules the recurring ingestion and retrain jobs.
type Service struct {
	registry        *regions.Registry
	ingester        *ingest.Client
	store           *store.SQLiteStore
	predictor       *prediction.Service
	trainingSamples int
	cron            *cron.Cron
	logger          *utils.FieldLogger
}

// NewService builds the scheduler. trainingSamples sizes the synthetic
// fallback when a scheduled retrain finds no stored observations; zero
// selects the prediction service's default.
func NewService(registry *regions.Registry, ingester *ingest.Client, st *store.SQLiteStore, predictor *prediction.Service, trainingSamples int) *Service {
	return &Service{
		registry:        registry,
		ingester:        ingester,
		store:           st,
		predictor:       predictor,
		trainingSamples: trainingSamples,
		cron:            cron.New(),
		logger:          utils.GetLogger().WithComponent("scheduler"),
	}
}

// Start registers the jobs with their cron expressions and starts the
// scheduler. Empty expressions disable the corresponding job.
func (s *Service) Start(ingestSchedule, retrainSchedule string) error {
	if ingestSchedule != "" {
		if _, err := s.cron.AddFunc(ingestSchedule, s.runIngestion); err != nil {
			return fmt.Errorf("invalid ingestion schedule %q: %w", ingestSchedule, err)
		}
	}
	if retrainSchedule != "" {
		if _, err := s.cron.AddFunc(retrainSchedule, s.runRetrain); err != nil {
			return fmt.Errorf("invalid retrain schedule %q: %w", retrainSchedule, err)
		}
	}
	s.cron.Start()
	s.logger.Info("scheduler started",
		utils.String("ingest_schedule", ingestSchedule),
		utils.String("retrain_schedule", retrainSchedule))
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// runIngestion fetches fresh observations for every region and stores them.
func (s *Service) runIngestion() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	fetched := s.ingester.FetchAll(ctx, s.registry.All())

	saved := 0
	for code, obs := range fetched {
		if err := s.store.SaveObservation(ctx, code, *obs); err != nil {
			s.logger.Error("failed to store observation", err, utils.String("region", code))
			continue
		}
		saved++
	}

	s.logger.Info("ingestion sweep complete",
		utils.Int("fetched", len(fetched)),
		utils.Int("saved", saved),
		utils.Int("regions", s.registry.Len()),
		utils.Duration("elapsed", time.Since(start)))
}

// runRetrain retrains on stored observations, with the synthetic fallback
// inside the prediction service covering an empty store. A concurrent
// manual training run simply skips this cycle.
func (s *Service) runRetrain() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	req := models.TrainingRequest{
		Source:  models.DataSourceReal,
		Samples: s.trainingSamples,
	}
	result, err := s.predictor.Train(ctx, req)
	if err != nil {
		if err == models.ErrTrainingInProgress {
			s.logger.Warn("skipping scheduled retrain, training already in progress")
			return
		}
		s.logger.Error("scheduled retrain failed", err)
		return
	}

	if err := s.store.SaveTrainingRun(ctx, req.Source, *result); err != nil {
		s.logger.Error("failed to record training run", err)
	}

	s.logger.Info("scheduled retrain complete",
		utils.String("model_type", string(result.ModelType)),
		utils.Float("r2", result.R2),
		utils.Int("samples", result.SampleCount))
}
