// FilePath: internal/ingest/ingest.enrich.go
package ingest

import (
	"github.com/agrisense/farmhub/internal/config"
	"github.com/agrisense/farmhub/internal/models"
)

// Enrich merges a validated candidate with the configured defaults.
// A value the caller supplied (and that passed validation) is never
// overridden; only absent measurements receive the fallback constant.
func Enrich(c *Candidate, cfg config.IngestConfig) models.Reading {
	r := models.Reading{
		UserID:      c.UserID,
		SensorID:    c.SensorID,
		Temperature: c.Temperature,
		PHLevel:     cfg.DefaultPH,
		ECLevel:     cfg.DefaultEC,
		CO2Level:    cfg.DefaultCO2,
		NDVIValue:   cfg.DefaultNDVI,
		Location:    c.Location,
		RecordedAt:  c.RecordedAt,
	}
	if c.SensorID == "" {
		r.SensorID = cfg.DefaultSensorID
	}
	if c.Location == "" {
		r.Location = cfg.DefaultLocation
	}
	if c.PHLevel != nil {
		r.PHLevel = *c.PHLevel
	}
	if c.ECLevel != nil {
		r.ECLevel = *c.ECLevel
	}
	if c.CO2Level != nil {
		r.CO2Level = *c.CO2Level
	}
	if c.NDVIValue != nil {
		r.NDVIValue = *c.NDVIValue
	}
	return r
}
