// FilePath: internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agrisense/farmhub/internal/models"
)

var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidInput indicates that the input data is invalid
	ErrInvalidInput = errors.New("invalid input")
)

// ReadingRepository defines the append-only reading store. Insert is a
// single atomic append; there is no update or delete path for
// readings in this service.
type ReadingRepository interface {
	// Insert persists a reading and returns the stored copy with its
	// store-assigned id and created_at.
	Insert(ctx context.Context, reading models.Reading) (*models.Reading, error)
	// Latest returns up to limit readings, most recent recorded_at
	// first. An empty userID returns readings across all owners.
	Latest(ctx context.Context, userID string, limit int) ([]models.Reading, error)
	// Range returns the readings with recorded_at in [start, end],
	// most recent first.
	Range(ctx context.Context, userID string, start, end time.Time) ([]models.Reading, error)
	// Stats aggregates temperature over [start, end]. Returns nil
	// (not a zero-filled struct) when no readings match.
	Stats(ctx context.Context, userID string, start, end time.Time) (*models.ReadingStats, error)
}
