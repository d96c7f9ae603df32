// Package prediction owns the serving lifecycle: it holds the published
// trained model, falls back to the heuristic when none exists, and runs
// training requests end to end.
package prediction

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/floodsense/floodsense-go/pkg/artifacts"
	"github.com/floodsense/floodsense-go/pkg/horizon"
	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/recommend"
	"github.com/floodsense/floodsense-go/pkg/regions"
	"github.com/floodsense/floodsense-go/pkg/riskmodel"
	"github.com/floodsense/floodsense-go/pkg/synthetic"
	"github.com/floodsense/floodsense-go/pkg/training"
	"github.com/floodsense/floodsense-go/utils"
)

// DefaultSyntheticSamples is the training set size when a request does not
// specify one.
const DefaultSyntheticSamples = 5000

// ObservationSource supplies stored observations. Latest returns (nil, nil)
// when no observation exists for the region.
type ObservationSource interface {
	Latest(ctx context.Context, regionCode string) (*models.Observation, error)
	Window(ctx context.Context, regionCodes []string, since time.Time) (map[string][]models.Observation, error)
}

// trainedModel is the immutable published artifact. Predictions read it via
// one atomic pointer load, so a concurrent retrain can never expose a
// half-built model.
type trainedModel struct {
	set *artifacts.Set
}

// Service evaluates prediction and training requests.
type Service struct {
	registry     *regions.Registry
	store        *artifacts.Store
	orchestrator *training.Orchestrator
	observations ObservationSource
	forecasts    func() horizon.ForecastSource
	logger       *utils.FieldLogger

	current  atomic.Pointer[trainedModel]
	stale    atomic.Bool
	training atomic.Bool
	fitMu    sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithObservationSource attaches a stored-observation source. Without one,
// predictions rely entirely on request-supplied readings and real-data
// training is unavailable.
func WithObservationSource(src ObservationSource) Option {
	return func(s *Service) { s.observations = src }
}

// WithForecastSource overrides the per-call forecast source factory.
func WithForecastSource(factory func() horizon.ForecastSource) Option {
	return func(s *Service) { s.forecasts = factory }
}

// NewService builds a prediction service. The service starts UNTRAINED;
// call LoadArtifacts to restore a persisted model.
func NewService(registry *regions.Registry, store *artifacts.Store, opts ...Option) *Service {
	s := &Service{
		registry:     registry,
		store:        store,
		orchestrator: training.NewOrchestrator(),
		forecasts: func() horizon.ForecastSource {
			return horizon.NewRandomForecast(time.Now().UnixNano())
		},
		logger: utils.GetLogger().WithComponent("prediction"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports the model lifecycle state.
func (s *Service) State() models.ModelState {
	if s.training.Load() {
		return models.ModelStateTraining
	}
	if s.current.Load() == nil {
		return models.ModelStateUntrained
	}
	if s.stale.Load() {
		return models.ModelStateStale
	}
	return models.ModelStateTrained
}

// Metadata returns the published model's metadata, or nil when untrained.
func (s *Service) Metadata() *artifacts.Metadata {
	published := s.current.Load()
	if published == nil {
		return nil
	}
	meta := published.set.Metadata
	return &meta
}

// LoadArtifacts restores a persisted model set, if a complete and
// consistent one exists. An absent or mismatched set leaves the service
// untrained without error.
func (s *Service) LoadArtifacts() error {
	set, ok, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load model artifacts: %w", err)
	}
	if !ok {
		s.logger.Info("no usable model artifacts found, starting untrained")
		return nil
	}
	s.current.Store(&trainedModel{set: set})
	s.stale.Store(false)
	s.logger.Info("restored trained model",
		utils.String("model_type", string(set.Metadata.ModelType)),
		utils.Int("samples", set.Metadata.SampleCount))
	return nil
}

// Invalidate marks the published model stale so schedulers retrain it. The
// stale model keeps serving until a retrain succeeds.
func (s *Service) Invalidate() {
	if s.current.Load() != nil {
		s.stale.Store(true)
		s.logger.Info("model marked stale")
	}
}

// Predict evaluates one prediction request. It never fails on an unknown
// region or an untrained model; both degrade with a lower confidence.
func (s *Service) Predict(ctx context.Context, req models.PredictionRequest) (*models.RiskAssessment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	region, defaulted := s.registry.Resolve(req.RegionCode)
	if defaulted {
		s.logger.Warn("unknown region, using default",
			utils.String("requested", req.RegionCode),
			utils.String("default", region.Code))
	}

	obs := s.resolveObservation(ctx, region.Code, req.Observation)

	risk, confidence, source := s.estimate(obs, region)
	level := riskmodel.LevelForRisk(risk)

	projector := horizon.NewProjector(s.forecasts())

	return &models.RiskAssessment{
		ID:              uuid.New().String(),
		RegionCode:      region.Code,
		RegionName:      region.Name,
		Group:           region.Group,
		RegionDefaulted: defaulted,
		Risk:            risk,
		Confidence:      confidence,
		Level:           level,
		Source:          source,
		Recommendations: recommend.ForAssessment(risk, obs, region),
		Factors: models.RiskFactors{
			Rainfall24h:  models.ValueOr(obs.Rainfall24h, 0),
			RiverLevel:   models.ValueOr(obs.RiverLevel, riskmodel.RiverBaseLevel),
			SoilMoisture: models.ValueOr(obs.SoilMoisture, 0),
			Temperature:  models.ValueOr(obs.Temperature, 0),
			Humidity:     models.ValueOr(obs.Humidity, 0),
			RegionRisk:   region.BaseRisk,
		},
		Horizons:    projector.Project(risk, confidence, req.Horizons),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// resolveObservation merges the request override onto the latest stored
// observation for the region, when a store is attached.
func (s *Service) resolveObservation(ctx context.Context, regionCode string, override *models.Observation) models.Observation {
	base := models.Observation{}
	if s.observations != nil {
		stored, err := s.observations.Latest(ctx, regionCode)
		if err != nil {
			s.logger.Warn("failed to load stored observation",
				utils.String("region", regionCode),
				utils.String("cause", err.Error()))
		} else if stored != nil {
			base = *stored
		}
	}
	obs := base.Merge(override)
	if obs.DayOfYear == 0 {
		now := time.Now().UTC()
		obs.DayOfYear = now.YearDay()
		obs.Month = int(now.Month())
	}
	return obs
}

// estimate produces (risk, confidence, source) from the published model, or
// from the heuristic when no trained model is available.
func (s *Service) estimate(obs models.Observation, region models.Region) (float64, float64, models.RiskSource) {
	published := s.current.Load()
	if published == nil {
		return riskmodel.HeuristicRisk(obs, region), riskmodel.ConfidenceFallback, models.RiskSourceHeuristic
	}

	set := published.set
	if !set.Encoder.RegionEncoder.Known(region.Code) {
		s.logger.Debug("region unseen during training, encoded with the default code",
			utils.String("region", region.Code))
	}
	vector, err := set.Encoder.Encode(obs, region)
	if err == nil {
		scaled, scaleErr := set.Scaler.TransformRow(vector)
		if scaleErr == nil {
			risk := riskmodel.Clamp01(set.Model.Predict(scaled))
			return risk, trainedConfidence(obs), models.RiskSourceModel
		}
		err = scaleErr
	}

	// A broken artifact degrades to the heuristic rather than failing the
	// request.
	s.logger.Warn("trained model unusable for request, falling back to heuristic",
		utils.String("cause", err.Error()))
	return riskmodel.HeuristicRisk(obs, region), riskmodel.ConfidenceFallback, models.RiskSourceHeuristic
}

// trainedConfidence is the heuristic trust score for the trained path: a
// fixed baseline minus a penalty per absent reading, floored. It is not a
// statistical prediction interval.
func trainedConfidence(obs models.Observation) float64 {
	confidence := riskmodel.ConfidenceBaseline - riskmodel.ConfidenceMissingPenal*float64(obs.MissingCount())
	if confidence < riskmodel.ConfidenceFloor {
		confidence = riskmodel.ConfidenceFloor
	}
	return confidence
}

// Train runs one training request to completion and publishes the result.
// A concurrent request fails fast with ErrTrainingInProgress. Any failure
// leaves the previously published model untouched.
func (s *Service) Train(ctx context.Context, req models.TrainingRequest) (*models.TrainingResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if !s.fitMu.TryLock() {
		return nil, models.ErrTrainingInProgress
	}
	defer s.fitMu.Unlock()

	s.training.Store(true)
	defer s.training.Store(false)

	cfg := models.DefaultTrainingConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	rows, err := s.gatherRows(ctx, req, cfg)
	if err != nil {
		return nil, err
	}

	set, result, err := s.orchestrator.Fit(ctx, rows, cfg)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(set); err != nil {
		return nil, &models.TrainingError{Stage: "persist", Err: err}
	}

	// Publish only after the artifact set is fully built and persisted.
	s.current.Store(&trainedModel{set: set})
	s.stale.Store(false)

	return result, nil
}

// gatherRows assembles the labeled training set for a request.
func (s *Service) gatherRows(ctx context.Context, req models.TrainingRequest, cfg models.TrainingConfig) ([]models.TrainingRow, error) {
	if req.Source == models.DataSourceReal {
		rows, err := s.realRows(ctx, req)
		if err != nil {
			return nil, &models.TrainingError{Stage: "gather", Err: err}
		}
		if len(rows) > 0 {
			return rows, nil
		}
		s.logger.Warn("no stored observations available, falling back to synthetic data")
	}

	samples := req.Samples
	if samples <= 0 {
		samples = DefaultSyntheticSamples
	}
	return synthetic.NewGenerator(s.registry, cfg.RandomSeed).Generate(samples), nil
}

// realRows loads stored observations in the lookback window and labels them
// with the noise-free risk formula.
func (s *Service) realRows(ctx context.Context, req models.TrainingRequest) ([]models.TrainingRow, error) {
	if s.observations == nil {
		return nil, fmt.Errorf("no observation source configured for real-data training")
	}

	codes := req.Regions
	if len(codes) == 0 {
		codes = s.registry.Codes()
	}
	lookback := req.LookbackDays
	if lookback <= 0 {
		lookback = 90
	}
	since := time.Now().UTC().AddDate(0, 0, -lookback)

	window, err := s.observations.Window(ctx, codes, since)
	if err != nil {
		return nil, err
	}

	var rows []models.TrainingRow
	for _, code := range codes {
		region, ok := s.registry.Get(code)
		if !ok {
			continue
		}
		for _, obs := range window[region.Code] {
			risk := riskmodel.HeuristicRisk(obs, region)
			rows = append(rows, models.TrainingRow{
				Region:      region,
				Observation: obs,
				Risk:        risk,
				Level:       riskmodel.LevelForRisk(risk),
			})
		}
	}
	return rows, nil
}
