// Package artifacts persists and restores trained model state as a set of
// JSON files. A set is only usable when every file is present and mutually
// consistent; anything less is reported as "no trained model", never as a
// crash.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/floodsense/floodsense-go/pkg/features"
	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/riskmodel"
)

const (
	modelFile    = "model.json"
	scalerFile   = "scaler.json"
	encoderFile  = "encoder.json"
	metadataFile = "metadata.json"
)

// Metadata describes a persisted trained model.
type Metadata struct {
	ModelType    models.ModelType      `json:"model_type"`
	FeatureNames []string              `json:"feature_names"`
	SampleCount  int                   `json:"n_samples"`
	TrainedAt    time.Time             `json:"trained_at"`
	Metrics      models.TrainingResult `json:"metrics"`
}

// Set is one complete trained artifact: regressor, scaler, categorical
// encoders and metadata. It is saved and loaded as a unit.
type Set struct {
	Model    riskmodel.Regressor
	Scaler   *features.StandardScaler
	Encoder  *features.Encoder
	Metadata Metadata
}

// Store reads and writes artifact sets under one directory.
type Store struct {
	dir string
}

// NewStore creates the artifact directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// modelEnvelope tags the serialized regressor with its family so Load knows
// which concrete type to decode into.
type modelEnvelope struct {
	ModelType models.ModelType `json:"model_type"`
	Model     json.RawMessage  `json:"model"`
}

// Save writes the whole set. Each file lands via write-to-temp-then-rename
// so a crash mid-save leaves either the old file or the new one, and the
// load-time consistency check rejects a half-written set.
func (s *Store) Save(set *Set) error {
	raw, err := json.Marshal(set.Model)
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}
	envelope := modelEnvelope{ModelType: set.Model.Type(), Model: raw}

	files := []struct {
		name string
		data interface{}
	}{
		{modelFile, envelope},
		{scalerFile, set.Scaler},
		{encoderFile, set.Encoder},
		{metadataFile, set.Metadata},
	}
	for _, f := range files {
		if err := s.writeJSON(f.name, f.data); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writeJSON(name string, data interface{}) error {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to publish %s: %w", name, err)
	}
	return nil
}

// Load restores the artifact set. It returns (nil, false, nil) when no
// usable set exists: any file absent, unparseable or inconsistent with the
// others counts as absent per the untrained-on-mismatch contract. A non-nil
// error is reserved for unexpected I/O failures.
func (s *Store) Load() (*Set, bool, error) {
	var envelope modelEnvelope
	ok, err := s.readJSON(modelFile, &envelope)
	if err != nil || !ok {
		return nil, false, err
	}

	scaler := &features.StandardScaler{}
	ok, err = s.readJSON(scalerFile, scaler)
	if err != nil || !ok {
		return nil, false, err
	}

	encoder := features.NewEncoder()
	ok, err = s.readJSON(encoderFile, encoder)
	if err != nil || !ok {
		return nil, false, err
	}

	var meta Metadata
	ok, err = s.readJSON(metadataFile, &meta)
	if err != nil || !ok {
		return nil, false, err
	}

	model, err := decodeModel(envelope)
	if err != nil {
		return nil, false, nil
	}

	if !consistent(model, scaler, encoder, meta) {
		return nil, false, nil
	}

	return &Set{Model: model, Scaler: scaler, Encoder: encoder, Metadata: meta}, true, nil
}

func (s *Store) readJSON(name string, into interface{}) (bool, error) {
	payload, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(payload, into); err != nil {
		// Corrupt artifact, treated as absent.
		return false, nil
	}
	return true, nil
}

func decodeModel(envelope modelEnvelope) (riskmodel.Regressor, error) {
	switch envelope.ModelType {
	case models.ModelTypeGradientBoosting:
		var m riskmodel.GradientBoosted
		if err := json.Unmarshal(envelope.Model, &m); err != nil {
			return nil, err
		}
		return &m, nil
	case models.ModelTypeRandomForest:
		var m riskmodel.RandomForest
		if err := json.Unmarshal(envelope.Model, &m); err != nil {
			return nil, err
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unknown model type %q", envelope.ModelType)
	}
}

// consistent checks that the four artifacts describe the same trained model.
func consistent(model riskmodel.Regressor, scaler *features.StandardScaler, encoder *features.Encoder, meta Metadata) bool {
	if meta.ModelType != model.Type() {
		return false
	}
	if len(meta.FeatureNames) != features.NumFeatures {
		return false
	}
	if len(scaler.Mean) != len(meta.FeatureNames) || len(scaler.Std) != len(meta.FeatureNames) {
		return false
	}
	if !encoder.Fitted || encoder.RegionEncoder == nil || encoder.GroupEncoder == nil {
		return false
	}
	// A fitted encoder with no classes cannot have come from a real fit.
	if len(encoder.RegionEncoder.Classes()) == 0 || len(encoder.GroupEncoder.Classes()) == 0 {
		return false
	}
	return true
}
