package models

import "time"

// Observation is a point-in-time set of weather/hydrology readings for one
// location. Every reading is a pointer so that an absent value is
// distinguishable from a legitimate zero; confidence scoring penalizes
// absent readings.
type Observation struct {
	Timestamp     time.Time `json:"timestamp,omitempty"`
	Temperature   *float64  `json:"temperature,omitempty"`
	Humidity      *float64  `json:"humidity,omitempty"`
	Pressure      *float64  `json:"pressure,omitempty"`
	WindSpeed     *float64  `json:"wind_speed,omitempty"`
	WindDirection *float64  `json:"wind_direction,omitempty"`
	Precipitation *float64  `json:"precipitation,omitempty"`
	Rainfall24h   *float64  `json:"rainfall_24h,omitempty"`
	Rainfall7d    *float64  `json:"rainfall_7d,omitempty"`
	SoilMoisture  *float64  `json:"soil_moisture,omitempty"`
	RiverLevel    *float64  `json:"river_level,omitempty"`
	DayOfYear     int       `json:"day_of_year,omitempty"`
	Month         int       `json:"month,omitempty"`
}

// Float returns a pointer to v, for building observations inline.
func Float(v float64) *float64 {
	return &v
}

// ValueOr dereferences p, falling back to def when the reading is absent.
func ValueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// MissingCount returns how many of the ten live readings are absent.
// Day-of-year and month are derived from the clock and are never counted.
func (o *Observation) MissingCount() int {
	missing := 0
	for _, p := range []*float64{
		o.Temperature, o.Humidity, o.Pressure,
		o.WindSpeed, o.WindDirection, o.Precipitation,
		o.Rainfall24h, o.Rainfall7d, o.SoilMoisture, o.RiverLevel,
	} {
		if p == nil {
			missing++
		}
	}
	return missing
}

// Merge overlays the non-nil readings of other onto a copy of o and returns
// the copy. Used to apply partial observation overrides from prediction
// requests.
func (o Observation) Merge(other *Observation) Observation {
	if other == nil {
		return o
	}
	if other.Temperature != nil {
		o.Temperature = other.Temperature
	}
	if other.Humidity != nil {
		o.Humidity = other.Humidity
	}
	if other.Pressure != nil {
		o.Pressure = other.Pressure
	}
	if other.WindSpeed != nil {
		o.WindSpeed = other.WindSpeed
	}
	if other.WindDirection != nil {
		o.WindDirection = other.WindDirection
	}
	if other.Precipitation != nil {
		o.Precipitation = other.Precipitation
	}
	if other.Rainfall24h != nil {
		o.Rainfall24h = other.Rainfall24h
	}
	if other.Rainfall7d != nil {
		o.Rainfall7d = other.Rainfall7d
	}
	if other.SoilMoisture != nil {
		o.SoilMoisture = other.SoilMoisture
	}
	if other.RiverLevel != nil {
		o.RiverLevel = other.RiverLevel
	}
	if other.DayOfYear != 0 {
		o.DayOfYear = other.DayOfYear
	}
	if other.Month != 0 {
		o.Month = other.Month
	}
	if !other.Timestamp.IsZero() {
		o.Timestamp = other.Timestamp
	}
	return o
}

// TrainingRow is one labeled observation used for model fitting.
type TrainingRow struct {
	Region      Region      `json:"region"`
	Observation Observation `json:"observation"`
	Risk        float64     `json:"risk"`
	Level       AlertLevel  `json:"level"`
}
