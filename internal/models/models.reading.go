// FilePath: internal/models/models.reading.go
package models

import "time"

// Reading represents a single persisted farm sensor measurement.
// Readings are append-only: once stored they are never updated or
// deleted by this service.
type Reading struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	SensorID    string    `json:"sensor_id" db:"sensor_id"`
	Temperature float64   `json:"temperature" db:"temperature"`
	PHLevel     float64   `json:"ph_level" db:"ph_level"`
	ECLevel     float64   `json:"ec_level" db:"ec_level"`
	CO2Level    float64   `json:"co2_level" db:"co2_level"`
	NDVIValue   float64   `json:"ndvi_value" db:"ndvi_value"`
	Location    string    `json:"location" db:"location"`
	RecordedAt  time.Time `json:"recorded_at" db:"recorded_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// ReadingStats represents aggregated temperature data over a time window
type ReadingStats struct {
	Avg       float64   `json:"avg" db:"avg"`
	Min       float64   `json:"min" db:"min"`
	Max       float64   `json:"max" db:"max"`
	Count     int       `json:"count" db:"count"`
	StartTime time.Time `json:"start_time" db:"start_time"`
	EndTime   time.Time `json:"end_time" db:"end_time"`
}

// Alert levels
const (
	AlertLevelWarning = "warning"
)

// Alert is an advisory derived from a reading at ingestion time.
// Alerts are ephemeral: they travel in the ingest response and are
// never persisted.
type Alert struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}
