// FilePath: internal/alerts/alerts.go
package alerts

import (
	"fmt"

	"github.com/agrisense/farmhub/internal/config"
	"github.com/agrisense/farmhub/internal/models"
)

// Evaluator derives advisory alerts from accepted readings. Alerts
// never block persistence and are never stored; they only travel in
// the ingest response.
type Evaluator struct {
	lowBelow  float64
	highAbove float64
}

// NewEvaluator creates an evaluator with the configured thresholds.
// Config validation guarantees lowBelow < highAbove, so at most one
// alert fires per reading.
func NewEvaluator(cfg config.IngestConfig) *Evaluator {
	return &Evaluator{
		lowBelow:  cfg.AlertLowBelow,
		highAbove: cfg.AlertHighAbove,
	}
}

// Evaluate returns the threshold alerts for a temperature value
func (e *Evaluator) Evaluate(temperature float64) []models.Alert {
	var out []models.Alert
	if temperature < e.lowBelow {
		out = append(out, models.Alert{
			Level: models.AlertLevelWarning,
			Message: fmt.Sprintf("Temperature is LOW: %g°C (below %g°C threshold)",
				temperature, e.lowBelow),
		})
	}
	if temperature > e.highAbove {
		out = append(out, models.Alert{
			Level: models.AlertLevelWarning,
			Message: fmt.Sprintf("Temperature is HIGH: %g°C (above %g°C threshold)",
				temperature, e.highAbove),
		})
	}
	return out
}
