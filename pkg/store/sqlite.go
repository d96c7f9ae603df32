// Package store provides SQLite-based persistence for ingested weather
// observations and training run history.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/floodsense/floodsense-go/pkg/models"
)

// SQLiteStore persists observations and training runs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and initializes) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writes, so a small pool is enough.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS observations (
		id TEXT PRIMARY KEY,
		region_code TEXT NOT NULL,
		observed_at TIMESTAMP NOT NULL,
		temperature REAL,
		humidity REAL,
		pressure REAL,
		wind_speed REAL,
		wind_direction REAL,
		precipitation REAL,
		rainfall_24h REAL,
		rainfall_7d REAL,
		soil_moisture REAL,
		river_level REAL,
		day_of_year INTEGER NOT NULL,
		month INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_observations_region_time
		ON observations(region_code, observed_at DESC);

	CREATE TABLE IF NOT EXISTS training_runs (
		id TEXT PRIMARY KEY,
		model_type TEXT NOT NULL,
		source TEXT NOT NULL,
		sample_count INTEGER NOT NULL,
		mse REAL NOT NULL,
		r2 REAL NOT NULL,
		mae REAL NOT NULL,
		cv_r2_mean REAL NOT NULL,
		cv_r2_std REAL NOT NULL,
		trained_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_training_runs_trained_at
		ON training_runs(trained_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveObservation stores one observation for a region.
func (s *SQLiteStore) SaveObservation(ctx context.Context, regionCode string, obs models.Observation) error {
	observedAt := obs.Timestamp
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO observations (
			id, region_code, observed_at,
			temperature, humidity, pressure, wind_speed, wind_direction,
			precipitation, rainfall_24h, rainfall_7d, soil_moisture, river_level,
			day_of_year, month
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), regionCode, observedAt,
		nullable(obs.Temperature), nullable(obs.Humidity), nullable(obs.Pressure),
		nullable(obs.WindSpeed), nullable(obs.WindDirection),
		nullable(obs.Precipitation), nullable(obs.Rainfall24h), nullable(obs.Rainfall7d),
		nullable(obs.SoilMoisture), nullable(obs.RiverLevel),
		obs.DayOfYear, obs.Month,
	)
	if err != nil {
		return fmt.Errorf("failed to save observation for %s: %w", regionCode, err)
	}
	return nil
}

// Latest returns the most recent observation for a region, or (nil, nil)
// when none is stored.
func (s *SQLiteStore) Latest(ctx context.Context, regionCode string) (*models.Observation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT observed_at,
			temperature, humidity, pressure, wind_speed, wind_direction,
			precipitation, rainfall_24h, rainfall_7d, soil_moisture, river_level,
			day_of_year, month
		FROM observations
		WHERE region_code = ?
		ORDER BY observed_at DESC
		LIMIT 1`, regionCode)

	obs, err := scanObservation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest observation for %s: %w", regionCode, err)
	}
	return obs, nil
}

// Window returns all observations since the given time for the requested
// regions, keyed by region code, oldest first.
func (s *SQLiteStore) Window(ctx context.Context, regionCodes []string, since time.Time) (map[string][]models.Observation, error) {
	out := make(map[string][]models.Observation, len(regionCodes))

	for _, code := range regionCodes {
		rows, err := s.db.QueryContext(ctx, `
			SELECT observed_at,
				temperature, humidity, pressure, wind_speed, wind_direction,
				precipitation, rainfall_24h, rainfall_7d, soil_moisture, river_level,
				day_of_year, month
			FROM observations
			WHERE region_code = ? AND observed_at >= ?
			ORDER BY observed_at ASC`, code, since)
		if err != nil {
			return nil, fmt.Errorf("failed to load observations for %s: %w", code, err)
		}

		for rows.Next() {
			obs, err := scanObservation(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan observation for %s: %w", code, err)
			}
			out[code] = append(out[code], *obs)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// SaveTrainingRun records one completed training run.
func (s *SQLiteStore) SaveTrainingRun(ctx context.Context, source models.TrainingDataSource, result models.TrainingResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO training_runs (
			id, model_type, source, sample_count,
			mse, r2, mae, cv_r2_mean, cv_r2_std, trained_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), string(result.ModelType), string(source), result.SampleCount,
		result.MSE, result.R2, result.MAE, result.CVR2Mean, result.CVR2Std, result.TrainedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save training run: %w", err)
	}
	return nil
}

// TrainingRuns returns the most recent training runs, newest first.
func (s *SQLiteStore) TrainingRuns(ctx context.Context, limit int) ([]models.TrainingResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT model_type, sample_count, mse, r2, mae, cv_r2_mean, cv_r2_std, trained_at
		FROM training_runs
		ORDER BY trained_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load training runs: %w", err)
	}
	defer rows.Close()

	var out []models.TrainingResult
	for rows.Next() {
		var r models.TrainingResult
		var modelType string
		if err := rows.Scan(&modelType, &r.SampleCount, &r.MSE, &r.R2, &r.MAE, &r.CVR2Mean, &r.CVR2Std, &r.TrainedAt); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		r.ModelType = models.ModelType(modelType)
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObservation(row rowScanner) (*models.Observation, error) {
	var obs models.Observation
	var temperature, humidity, pressure, windSpeed, windDirection sql.NullFloat64
	var precipitation, rainfall24h, rainfall7d, soilMoisture, riverLevel sql.NullFloat64

	err := row.Scan(&obs.Timestamp,
		&temperature, &humidity, &pressure, &windSpeed, &windDirection,
		&precipitation, &rainfall24h, &rainfall7d, &soilMoisture, &riverLevel,
		&obs.DayOfYear, &obs.Month)
	if err != nil {
		return nil, err
	}

	obs.Temperature = fromNullable(temperature)
	obs.Humidity = fromNullable(humidity)
	obs.Pressure = fromNullable(pressure)
	obs.WindSpeed = fromNullable(windSpeed)
	obs.WindDirection = fromNullable(windDirection)
	obs.Precipitation = fromNullable(precipitation)
	obs.Rainfall24h = fromNullable(rainfall24h)
	obs.Rainfall7d = fromNullable(rainfall7d)
	obs.SoilMoisture = fromNullable(soilMoisture)
	obs.RiverLevel = fromNullable(riverLevel)
	return &obs, nil
}

func nullable(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
