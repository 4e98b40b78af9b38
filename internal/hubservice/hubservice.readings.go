// FilePath: internal/hubservice/hubservice.readings.go
package hubservice

import (
	"context"
	"time"

	"github.com/agrisense/farmhub/internal/errors"
	"github.com/agrisense/farmhub/internal/ingest"
	"github.com/agrisense/farmhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// Ingest runs the full pipeline for one raw payload: validate, enrich,
// persist, evaluate alerts, fan out. Ingestion success is defined by
// persistence alone; fanout failures never change the outcome.
func (s *HubService) Ingest(ctx context.Context, payload map[string]any) (*models.Reading, []models.Alert, *errors.APIError) {
	candidate, apiErr := s.validator.Validate(payload, time.Now().UTC())
	if apiErr != nil {
		return nil, nil, apiErr
	}

	reading := ingest.Enrich(candidate, s.cfg)

	stored, err := s.Readings.Insert(ctx, reading)
	if err != nil {
		return nil, nil, errors.AsAPIError(err)
	}

	found := s.evaluator.Evaluate(stored.Temperature)

	// Fire-and-forget: the response is already decided at this point
	s.publisher.Publish(*stored)
	s.events.Emit("reading.ingested", stored.ID)

	nuts.L.Infof("[HubService] Reading %s accepted for user %s (%.2f°C, %d alerts)",
		stored.ID, stored.UserID, stored.Temperature, len(found))
	return stored, found, nil
}

// LatestReadings returns up to limit readings for the owner, most
// recent first. An empty userID spans all owners.
func (s *HubService) LatestReadings(ctx context.Context, userID string, limit int) ([]models.Reading, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.Readings.Latest(ctx, userID, limit)
}

// ReadingsInRange returns the readings recorded within [start, end]
func (s *HubService) ReadingsInRange(ctx context.Context, userID string, start, end time.Time) ([]models.Reading, error) {
	return s.Readings.Range(ctx, userID, start, end)
}

// ReadingStats aggregates temperature over [start, end]. A nil result
// with nil error means no readings matched.
func (s *HubService) ReadingStats(ctx context.Context, userID string, start, end time.Time) (*models.ReadingStats, error) {
	return s.Readings.Stats(ctx, userID, start, end)
}
