// FilePath: internal/ingest/ingest.validate.go

// Package ingest turns raw device payloads into typed, range-checked
// readings. Validation is strict: a supplied value that fails its
// check rejects the whole request, only absent values fall back to
// the configured defaults.
package ingest

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/agrisense/farmhub/internal/config"
	"github.com/agrisense/farmhub/internal/errors"
)

// Candidate is a validated reading before enrichment and persistence.
// Optional measurements stay nil when the device did not supply them,
// so enrichment can tell "absent" from "sent a valid value".
type Candidate struct {
	UserID      string
	SensorID    string
	Temperature float64
	PHLevel     *float64
	ECLevel     *float64
	CO2Level    *float64
	NDVIValue   *float64
	Location    string
	RecordedAt  time.Time
}

// Validator checks raw payloads against the configured bounds
type Validator struct {
	cfg config.IngestConfig
}

// NewValidator creates a validator with the given ingest bounds
func NewValidator(cfg config.IngestConfig) *Validator {
	return &Validator{cfg: cfg}
}

type optionalDomain struct {
	field string
	min   float64
	max   float64
}

// Domains for the auxiliary measurements. EC and CO2 have no
// physical upper bound.
var optionalDomains = []optionalDomain{
	{field: "ph_level", min: 0, max: 14},
	{field: "ec_level", min: 0, max: math.Inf(1)},
	{field: "co2_level", min: 0, max: math.Inf(1)},
	{field: "ndvi_value", min: 0, max: 1},
}

// Validate turns an untyped payload into a Candidate or a typed
// rejection. Checks run in a fixed order and the first failure wins,
// callers depend on that precedence for debugging.
func (v *Validator) Validate(payload map[string]any, now time.Time) (*Candidate, *errors.APIError) {
	// 1. temperature: present, numeric, not NaN, within bounds
	rawTemp, ok := payload["temperature"]
	if !ok || rawTemp == nil {
		return nil, errors.NewMissingFieldError("temperature")
	}
	temp, ok := rawTemp.(float64)
	if !ok {
		return nil, errors.NewTypeMismatchError(fmt.Sprintf(
			"Invalid temperature type: expected 'number', got '%s'", jsonTypeName(rawTemp)))
	}
	if math.IsNaN(temp) {
		return nil, errors.NewTypeMismatchError("Temperature value is NaN (not a valid number)")
	}
	if temp < v.cfg.TempMin || temp > v.cfg.TempMax {
		return nil, errors.NewOutOfRangeError(fmt.Sprintf(
			"Invalid temperature: %g°C. Must be between %g°C and %g°C",
			temp, v.cfg.TempMin, v.cfg.TempMax))
	}

	// 2. user_id: present, string, non-empty after trimming
	rawUser, ok := payload["user_id"]
	if !ok || rawUser == nil {
		return nil, errors.NewMissingFieldError("user_id")
	}
	userID, ok := rawUser.(string)
	if !ok || strings.TrimSpace(userID) == "" {
		return nil, errors.NewTypeMismatchError("Invalid user_id: must be a non-empty string")
	}

	// 3. auxiliary measurements: type-check then domain-check any the
	// device actually sent
	c := &Candidate{
		UserID:      strings.TrimSpace(userID),
		Temperature: round2(temp),
	}
	for _, dom := range optionalDomains {
		raw, ok := payload[dom.field]
		if !ok || raw == nil {
			continue
		}
		val, ok := raw.(float64)
		if !ok {
			return nil, errors.NewTypeMismatchError(fmt.Sprintf(
				"Invalid %s type: expected 'number', got '%s'", dom.field, jsonTypeName(raw)))
		}
		if math.IsNaN(val) || val < dom.min || val > dom.max {
			return nil, errors.NewOutOfRangeError(outOfDomainMessage(dom, val))
		}
		rounded := round2(val)
		switch dom.field {
		case "ph_level":
			c.PHLevel = &rounded
		case "ec_level":
			c.ECLevel = &rounded
		case "co2_level":
			c.CO2Level = &rounded
		case "ndvi_value":
			c.NDVIValue = &rounded
		}
	}

	// 4. free-text fields: non-string values silently fall back to the
	// sentinel, same as an absent field
	if sensorID, ok := payload["sensor_id"].(string); ok && sensorID != "" {
		c.SensorID = sensorID
	}
	if location, ok := payload["location"].(string); ok && location != "" {
		c.Location = location
	}

	// 5. timestamp: a bad or missing value never rejects the reading,
	// the ingestion time is substituted instead
	c.RecordedAt = parseTimestamp(payload["timestamp"], now)

	return c, nil
}

func outOfDomainMessage(dom optionalDomain, val float64) string {
	if math.IsInf(dom.max, 1) {
		return fmt.Sprintf("Invalid %s: %g. Must be at least %g", dom.field, val, dom.min)
	}
	return fmt.Sprintf("Invalid %s: %g. Must be between %g and %g", dom.field, val, dom.min, dom.max)
}

// parseTimestamp accepts RFC3339 variants; anything else maps to now
func parseTimestamp(raw any, now time.Time) time.Time {
	s, ok := raw.(string)
	if !ok {
		return now
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC()
		}
	}
	return now
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// round2 keeps all stored numerics at two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
