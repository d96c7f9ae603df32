package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Environment     string
	LogLevel        string
	LogFormat       string
	Port            string
	DataDir         string
	DatabasePath    string
	WeatherAPIURL   string
	IngestSchedule  string
	RetrainSchedule string
	TrainingSamples int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		Port:            getEnv("PORT", "8080"),
		DataDir:         getEnv("DATA_DIR", "data"),
		DatabasePath:    getEnv("DATABASE_PATH", "data/floodsense.db"),
		WeatherAPIURL:   getEnv("WEATHER_API_URL", ""),
		IngestSchedule:  getEnv("INGEST_SCHEDULE", "0 * * * *"),
		RetrainSchedule: getEnv("RETRAIN_SCHEDULE", "0 3 * * *"),
		TrainingSamples: getEnvAsInt("TRAINING_SAMPLES", 5000),
	}

	if config.TrainingSamples <= 0 {
		return nil, fmt.Errorf("TRAINING_SAMPLES must be positive")
	}

	return config, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
