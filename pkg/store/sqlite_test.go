package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/floodsense/floodsense-go/pkg/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLatestReturnsNilWhenEmpty(t *testing.T) {
	store := newTestStore(t)

	obs, err := store.Latest(context.Background(), "LA")
	if err != nil {
		t.Fatalf("latest on empty store errored: %v", err)
	}
	if obs != nil {
		t.Error("latest on empty store returned an observation")
	}
}

func TestSaveAndLoadLatest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := models.Observation{
		Timestamp:   time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC),
		Temperature: models.Float(25),
		Rainfall24h: models.Float(5),
		DayOfYear:   213,
		Month:       8,
	}
	newer := models.Observation{
		Timestamp:    time.Date(2026, 8, 2, 6, 0, 0, 0, time.UTC),
		Temperature:  models.Float(28),
		Rainfall24h:  models.Float(22),
		SoilMoisture: models.Float(0.6),
		DayOfYear:    214,
		Month:        8,
	}

	if err := store.SaveObservation(ctx, "LA", older); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.SaveObservation(ctx, "LA", newer); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := store.Latest(ctx, "LA")
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if got == nil {
		t.Fatal("latest returned nil after saves")
	}
	if *got.Temperature != 28 {
		t.Errorf("latest temperature = %.1f, want the newer 28", *got.Temperature)
	}
	if *got.Rainfall24h != 22 {
		t.Errorf("latest rainfall = %.1f, want 22", *got.Rainfall24h)
	}

	// Absent readings survive the round trip as nil, not zero.
	if got.Pressure != nil {
		t.Errorf("absent pressure materialized as %v", *got.Pressure)
	}
	if got.RiverLevel != nil {
		t.Error("absent river level materialized")
	}
	if got.DayOfYear != 214 || got.Month != 8 {
		t.Errorf("day/month = %d/%d, want 214/8", got.DayOfYear, got.Month)
	}
}

func TestWindowFiltersByTimeAndRegion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := models.Observation{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DayOfYear: 1, Month: 1,
	}
	recent := models.Observation{
		Timestamp: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DayOfYear: 213, Month: 8,
	}

	if err := store.SaveObservation(ctx, "LA", old); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveObservation(ctx, "LA", recent); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveObservation(ctx, "KN", recent); err != nil {
		t.Fatal(err)
	}

	since := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	window, err := store.Window(ctx, []string{"LA"}, since)
	if err != nil {
		t.Fatalf("window failed: %v", err)
	}

	if len(window["LA"]) != 1 {
		t.Errorf("window returned %d LA observations, want 1", len(window["LA"]))
	}
	if _, ok := window["KN"]; ok {
		t.Error("window returned a region that was not requested")
	}
}

func TestTrainingRunHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := models.TrainingResult{
		ModelType:   models.ModelTypeGradientBoosting,
		MSE:         0.01,
		R2:          0.91,
		MAE:         0.07,
		CVR2Mean:    0.88,
		CVR2Std:     0.02,
		SampleCount: 5000,
		TrainedAt:   time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC),
	}
	second := first
	second.ModelType = models.ModelTypeRandomForest
	second.TrainedAt = time.Date(2026, 8, 2, 3, 0, 0, 0, time.UTC)

	if err := store.SaveTrainingRun(ctx, models.DataSourceSynthetic, first); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.SaveTrainingRun(ctx, models.DataSourceReal, second); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err := store.TrainingRuns(ctx, 10)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ModelType != models.ModelTypeRandomForest {
		t.Errorf("newest run first: got %s, want random_forest", runs[0].ModelType)
	}
	if runs[1].MSE != 0.01 {
		t.Errorf("run MSE = %v, want 0.01", runs[1].MSE)
	}
}
