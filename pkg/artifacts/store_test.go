package artifacts_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/floodsense/floodsense-go/pkg/artifacts"
	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/regions"
	"github.com/floodsense/floodsense-go/pkg/synthetic"
	"github.com/floodsense/floodsense-go/pkg/training"
)

func trainedSet(t *testing.T) *artifacts.Set {
	t.Helper()
	reg, err := regions.Load()
	if err != nil {
		t.Fatalf("failed to load registry: %v", err)
	}
	rows := synthetic.NewGenerator(reg, 42).Generate(200)

	cfg := models.DefaultTrainingConfig()
	cfg.Estimators = 10
	cfg.MaxDepth = 3

	set, _, err := training.NewOrchestrator().Fit(context.Background(), rows, cfg)
	if err != nil {
		t.Fatalf("fit failed: %v", err)
	}
	return set
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.NewStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	set := trainedSet(t)
	if err := store.Save(set); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !ok {
		t.Fatal("load reported no usable set after save")
	}

	// The restored model must reproduce predictions.
	probe := make([]float64, len(set.Scaler.Mean))
	for i := range probe {
		probe[i] = 0.1 * float64(i)
	}
	before := set.Model.Predict(probe)
	after := loaded.Model.Predict(probe)
	if math.Abs(before-after) > 1e-9 {
		t.Errorf("prediction drifted across round trip: %.9f vs %.9f", before, after)
	}

	if loaded.Metadata.ModelType != set.Metadata.ModelType {
		t.Errorf("metadata model type = %s, want %s", loaded.Metadata.ModelType, set.Metadata.ModelType)
	}
	if !loaded.Encoder.Fitted {
		t.Error("restored encoder is not fitted")
	}
	if len(loaded.Scaler.Mean) != len(set.Scaler.Mean) {
		t.Errorf("restored scaler width %d, want %d", len(loaded.Scaler.Mean), len(set.Scaler.Mean))
	}
}

func TestLoadEmptyDirectoryReportsAbsent(t *testing.T) {
	store, err := artifacts.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load of empty directory errored: %v", err)
	}
	if ok {
		t.Error("load of empty directory reported a usable set")
	}
}

func TestLoadPartialSetReportsAbsent(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(trainedSet(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// Removing any one artifact invalidates the whole set.
	if err := os.Remove(filepath.Join(dir, artifacts.ScalerFile)); err != nil {
		t.Fatal(err)
	}

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load errored on partial set: %v", err)
	}
	if ok {
		t.Error("load reported a usable set with an artifact missing")
	}
}

func TestLoadCorruptArtifactReportsAbsent(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(trainedSet(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, artifacts.ModelFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load errored on corrupt artifact: %v", err)
	}
	if ok {
		t.Error("load reported a usable set with a corrupt artifact")
	}
}

func TestLoadEmptyEncoderReportsAbsent(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Save(trainedSet(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	// An encoder claiming to be fitted without any classes cannot have come
	// from a real fit and must invalidate the set.
	hollow := `{"region_encoder":{"codes":{}},"group_encoder":{"codes":{}},"fitted":true}`
	if err := os.WriteFile(filepath.Join(dir, artifacts.EncoderFile), []byte(hollow), 0o644); err != nil {
		t.Fatal(err)
	}

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load errored on hollow encoder: %v", err)
	}
	if ok {
		t.Error("load reported a usable set with an empty fitted encoder")
	}
}

func TestLoadMismatchedMetadataReportsAbsent(t *testing.T) {
	dir := t.TempDir()
	store, err := artifacts.NewStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	set := trainedSet(t)
	// Metadata claiming the other model family must be rejected.
	set.Metadata.ModelType = models.ModelTypeRandomForest
	if err := store.Save(set); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	_, ok, err := store.Load()
	if err != nil {
		t.Fatalf("load errored on mismatched set: %v", err)
	}
	if ok {
		t.Error("load reported a usable set with mismatched metadata")
	}
}
