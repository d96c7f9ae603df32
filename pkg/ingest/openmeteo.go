// Package ingest pulls current weather readings from the Open-Meteo API and
// turns them into observations, deriving the hydrology estimates the raw
// feed lacks.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/floodsense/floodsense-go/pkg/models"
	"github.com/floodsense/floodsense-go/pkg/riskmodel"
	"github.com/floodsense/floodsense-go/utils"
)

// DefaultBaseURL is the public Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1"

// Client fetches weather observations for regions.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *utils.FieldLogger
}

// NewClient builds an ingestion client. An empty baseURL selects the public
// endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: utils.GetLogger().WithComponent("ingest"),
	}
}

// FetchAll fetches observations for every given region, skipping regions
// whose fetch fails so one outage cannot sink a whole sweep.
func (c *Client) FetchAll(ctx context.Context, catalogue []models.Region) map[string]*models.Observation {
	out := make(map[string]*models.Observation, len(catalogue))
	for _, region := range catalogue {
		obs, err := c.FetchObservation(ctx, region)
		if err != nil {
			c.logger.Warn("skipping region after fetch failure",
				utils.String("region", region.Code),
				utils.String("cause", err.Error()))
			continue
		}
		out[region.Code] = obs
	}
	return out
}

// forecastResponse is the subset of the Open-Meteo payload we consume.
// Pointer fields keep "absent in feed" distinguishable from zero.
type forecastResponse struct {
	Current struct {
		Time          string   `json:"time"`
		Temperature   *float64 `json:"temperature_2m"`
		Humidity      *float64 `json:"relative_humidity_2m"`
		Pressure      *float64 `json:"surface_pressure"`
		WindSpeed     *float64 `json:"wind_speed_10m"`
		WindDirection *float64 `json:"wind_direction_10m"`
		Precipitation *float64 `json:"precipitation"`
	} `json:"current"`
	Hourly struct {
		Precipitation []float64 `json:"precipitation"`
	} `json:"hourly"`
}

// FetchObservation fetches the current reading for one region and derives
// the rainfall accumulations, soil moisture and river level estimates.
func (c *Client) FetchObservation(ctx context.Context, region models.Region) (*models.Observation, error) {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%.4f", region.Latitude))
	query.Set("longitude", fmt.Sprintf("%.4f", region.Longitude))
	query.Set("current", "temperature_2m,relative_humidity_2m,surface_pressure,wind_speed_10m,wind_direction_10m,precipitation")
	query.Set("hourly", "precipitation")
	query.Set("timezone", "Africa/Lagos")

	endpoint := fmt.Sprintf("%s/forecast?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather for %s: %w", region.Code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("weather API returned %d for %s: %s", resp.StatusCode, region.Code, string(body))
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weather response for %s: %w", region.Code, err)
	}

	return c.buildObservation(payload, region), nil
}

func (c *Client) buildObservation(payload forecastResponse, region models.Region) *models.Observation {
	now := time.Now().UTC()
	if ts, err := time.Parse("2006-01-02T15:04", payload.Current.Time); err == nil {
		now = ts.UTC()
	}

	obs := &models.Observation{
		Timestamp:     now,
		Temperature:   payload.Current.Temperature,
		Humidity:      payload.Current.Humidity,
		Pressure:      payload.Current.Pressure,
		WindSpeed:     payload.Current.WindSpeed,
		WindDirection: payload.Current.WindDirection,
		Precipitation: payload.Current.Precipitation,
		DayOfYear:     now.YearDay(),
		Month:         int(now.Month()),
	}

	rainfall24h := sum24h(payload.Hourly.Precipitation)
	obs.Rainfall24h = models.Float(rainfall24h)

	// The free feed has no multi-day accumulation; scale up the daily
	// figure as a rough estimate.
	rainfall7d := rainfall24h * 1.5
	obs.Rainfall7d = models.Float(rainfall7d)

	if obs.Temperature != nil && obs.Humidity != nil {
		obs.SoilMoisture = models.Float(estimateSoilMoisture(*obs.Temperature, rainfall24h, *obs.Humidity))
	}
	obs.RiverLevel = models.Float(estimateRiverLevel(rainfall7d, region))

	return obs
}

// sum24h sums the first 24 hourly precipitation values.
func sum24h(hourly []float64) float64 {
	if len(hourly) > 24 {
		hourly = hourly[:24]
	}
	total := 0.0
	for _, v := range hourly {
		total += v
	}
	return total
}

// estimateSoilMoisture derives a soil moisture fraction from rainfall,
// humidity and evaporation. Rainfall contributes up to 0.4 over the base.
func estimateSoilMoisture(temperature, rainfall24h, humidity float64) float64 {
	base := 0.3
	rainfallFactor := math.Min(0.4, rainfall24h/50)
	humidityFactor := (humidity - 50) / 100 * 0.2
	temperatureFactor := math.Max(0, (30-temperature)/20*0.1)
	return riskmodel.Clamp01(base + rainfallFactor + humidityFactor + temperatureFactor)
}

// estimateRiverLevel derives a river level from the weekly rainfall, scaled
// by the region's risk class. Real readings carry no noise term.
func estimateRiverLevel(rainfall7d float64, region models.Region) float64 {
	level := riskmodel.RiverBaseLevel + rainfall7d*0.1*region.BaseRisk.RiverMultiplier()
	if level < 1.0 {
		level = 1.0
	}
	return level
}
