// Package api exposes the prediction, training and catalogue endpoints over
// HTTP. Handlers are thin JSON glue over the prediction service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/prediction"
	"github.com/floodsense/floodsense-go/pkg/regions"
	"github.com/floodsense/floodsense-go/pkg/store"
	"github.com/floodsense/floodsense-go/utils"
)

// Server provides HTTP API endpoints
type Server struct {
	predictor *prediction.Service
	registry  *regions.Registry
	store     *store.SQLiteStore
	port      string
	mux       *http.ServeMux
	httpSrv   *http.Server
	logger    *utils.FieldLogger
}

// NewServer creates a new API server. The store may be nil when persistence
// is disabled; the training-history endpoint then reports empty.
func NewServer(predictor *prediction.Service, registry *regions.Registry, st *store.SQLiteStore, port string) *Server {
	s := &Server{
		predictor: predictor,
		registry:  registry,
		store:     st,
		port:      port,
		mux:       http.NewServeMux(),
		logger:    utils.GetLogger().WithComponent("api"),
	}

	s.registerRoutes()
	return s
}

// registerRoutes sets up the HTTP routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/ready", s.handleReady)
	s.mux.HandleFunc("/api/predict", s.handlePredict)
	s.mux.HandleFunc("/api/train", s.handleTrain)
	s.mux.HandleFunc("/api/model", s.handleModel)
	s.mux.HandleFunc("/api/model/invalidate", s.handleInvalidate)
	s.mux.HandleFunc("/api/regions", s.handleRegions)
	s.mux.HandleFunc("/api/training/runs", s.handleTrainingRuns)
}

// Handler returns the server's routing handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start starts the HTTP server and blocks until shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Minute, // training requests run long
	}
	s.logger.Info("starting API server", utils.String("addr", addr))
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady handles readiness check requests. The service is ready as
// soon as the registry is loaded; an untrained model still serves heuristic
// predictions.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ready",
		"model_state": s.predictor.State(),
		"regions":     s.registry.Len(),
	})
}

// handlePredict evaluates one prediction request.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	assessment, err := s.predictor.Predict(r.Context(), req)
	if err != nil {
		var cfgErr *models.ConfigurationError
		if errors.As(err, &cfgErr) {
			http.Error(w, cfgErr.Error(), http.StatusBadRequest)
			return
		}
		s.logger.Error("prediction failed", err, utils.String("region", req.RegionCode))
		http.Error(w, "Prediction failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, assessment)
}

// handleTrain runs a training request to completion and returns its metrics.
func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.TrainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	result, err := s.predictor.Train(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTrainingInProgress):
			http.Error(w, err.Error(), http.StatusConflict)
		case isBadRequest(err):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			s.logger.Error("training failed", err)
			http.Error(w, fmt.Sprintf("Training failed: %v", err), http.StatusInternalServerError)
		}
		return
	}

	if s.store != nil {
		if err := s.store.SaveTrainingRun(r.Context(), req.Source, *result); err != nil {
			s.logger.Error("failed to record training run", err)
		}
	}

	writeJSON(w, http.StatusOK, result)
}

// handleModel reports the model lifecycle state and metadata.
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{"state": s.predictor.State()}
	if meta := s.predictor.Metadata(); meta != nil {
		response["metadata"] = meta
	}
	writeJSON(w, http.StatusOK, response)
}

// handleInvalidate marks the current model stale to force a retrain.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.predictor.Invalidate()
	writeJSON(w, http.StatusOK, map[string]any{"state": s.predictor.State()})
}

// handleRegions lists the region catalogue.
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"regions": s.registry.All(),
		"count":   s.registry.Len(),
	})
}

// handleTrainingRuns lists recent training runs.
func (s *Server) handleTrainingRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runs := []models.TrainingResult{}
	if s.store != nil {
		loaded, err := s.store.TrainingRuns(r.Context(), 20)
		if err != nil {
			s.logger.Error("failed to load training runs", err)
			http.Error(w, "Failed to load training runs", http.StatusInternalServerError)
			return
		}
		if loaded != nil {
			runs = loaded
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func isBadRequest(err error) bool {
	var cfgErr *models.ConfigurationError
	if errors.As(err, &cfgErr) {
		return true
	}
	var trainErr *models.TrainingError
	return errors.As(err, &trainErr) && trainErr.Stage == "configure"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
