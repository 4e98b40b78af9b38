// FilePath: internal/repository/memory/memory.readings.go

// Package memory provides an in-process reading store used for local
// development and tests. It mirrors the TimescaleDB repository's
// contract without needing a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/agrisense/farmhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type ReadingRepo struct {
	mu       sync.RWMutex
	readings []models.Reading
}

func NewReadingRepository() *ReadingRepo {
	return &ReadingRepo{}
}

func (r *ReadingRepo) Insert(ctx context.Context, reading models.Reading) (*models.Reading, error) {
	stored := reading
	stored.ID = nuts.NID("frd", 12)
	stored.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	r.readings = append(r.readings, stored)
	r.mu.Unlock()

	return &stored, nil
}

func (r *ReadingRepo) Latest(ctx context.Context, userID string, limit int) ([]models.Reading, error) {
	matched := r.snapshot(userID)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *ReadingRepo) Range(ctx context.Context, userID string, start, end time.Time) ([]models.Reading, error) {
	out := []models.Reading{}
	for _, reading := range r.snapshot(userID) {
		if !reading.RecordedAt.Before(start) && !reading.RecordedAt.After(end) {
			out = append(out, reading)
		}
	}
	return out, nil
}

func (r *ReadingRepo) Stats(ctx context.Context, userID string, start, end time.Time) (*models.ReadingStats, error) {
	matched, err := r.Range(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, nil
	}

	stats := &models.ReadingStats{
		Min:       matched[0].Temperature,
		Max:       matched[0].Temperature,
		Count:     len(matched),
		StartTime: start,
		EndTime:   end,
	}
	sum := 0.0
	for _, reading := range matched {
		sum += reading.Temperature
		if reading.Temperature < stats.Min {
			stats.Min = reading.Temperature
		}
		if reading.Temperature > stats.Max {
			stats.Max = reading.Temperature
		}
	}
	stats.Avg = sum / float64(len(matched))
	return stats, nil
}

// snapshot copies the matching readings under the read lock and sorts
// them most-recent first, so callers never see the shared slice.
func (r *ReadingRepo) snapshot(userID string) []models.Reading {
	r.mu.RLock()
	matched := make([]models.Reading, 0, len(r.readings))
	for _, reading := range r.readings {
		if userID == "" || reading.UserID == userID {
			matched = append(matched, reading)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].RecordedAt.After(matched[j].RecordedAt)
	})
	return matched
}
