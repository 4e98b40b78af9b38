// FilePath: internal/repository/timescale/timescale.readings.go
package timescale

import (
	"context"
	"database/sql"
	"time"

	"github.com/agrisense/farmhub/internal/database"
	"github.com/agrisense/farmhub/internal/errors"
	"github.com/agrisense/farmhub/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

type ReadingRepo struct {
	db database.DB
}

func NewReadingRepository(db database.DB) (*ReadingRepo, error) {
	repo := &ReadingRepo{db: db}
	err := repo.initializeSchema()
	if err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *ReadingRepo) initializeSchema() error {
	// Create hypertable for farm readings
	queries := []string{
		`CREATE TABLE IF NOT EXISTS farm_readings (
			id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			sensor_id TEXT NOT NULL,
			temperature DOUBLE PRECISION NOT NULL,
			ph_level DOUBLE PRECISION NOT NULL,
			ec_level DOUBLE PRECISION NOT NULL,
			co2_level DOUBLE PRECISION NOT NULL,
			ndvi_value DOUBLE PRECISION NOT NULL,
			location TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`SELECT create_hypertable('farm_readings', 'recorded_at',
			chunk_time_interval => INTERVAL '1 day',
			if_not_exists => TRUE
		)`,
		// Owner-scoped latest/range queries drive the dashboard
		`CREATE INDEX IF NOT EXISTS idx_farm_readings_user_recorded
         ON farm_readings(user_id, recorded_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_farm_readings_recorded
         ON farm_readings(recorded_at DESC)`,
	}

	for _, query := range queries {
		_, err := r.db.GetDB().Exec(query)
		if err != nil {
			return errors.NewDatabaseError("failed to initialize schema", err)
		}
	}

	r.setupRetentionPolicy()
	return nil
}

func (r *ReadingRepo) setupRetentionPolicy() {
	query := `
		SELECT add_retention_policy('farm_readings',
			INTERVAL '13 months',
			if_not_exists => TRUE
		)`

	_, err := r.db.GetDB().Exec(query)
	if err != nil {
		nuts.L.Errorf("[TimescaleDB] Failed to set up retention policy: %v", err)
	}
}

func (r *ReadingRepo) Insert(ctx context.Context, reading models.Reading) (*models.Reading, error) {
	stored := reading
	stored.ID = nuts.NID("frd", 12)
	stored.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO farm_readings
			(id, user_id, sensor_id, temperature, ph_level, ec_level, co2_level, ndvi_value, location, recorded_at, created_at)
		VALUES
			(:id, :user_id, :sensor_id, :temperature, :ph_level, :ec_level, :co2_level, :ndvi_value, :location, :recorded_at, :created_at)`

	_, err := r.db.GetDB().NamedExecContext(ctx, query, stored)
	if err != nil {
		return nil, errors.NewDatabaseError("failed to insert reading", err)
	}
	return &stored, nil
}

func (r *ReadingRepo) Latest(ctx context.Context, userID string, limit int) ([]models.Reading, error) {
	readings := []models.Reading{}

	if userID == "" {
		query := `
			SELECT * FROM farm_readings
			ORDER BY recorded_at DESC
			LIMIT $1`
		if err := r.db.GetDB().SelectContext(ctx, &readings, query, limit); err != nil {
			return nil, errors.NewDatabaseError("failed to get latest readings", err)
		}
		return readings, nil
	}

	query := `
		SELECT * FROM farm_readings
		WHERE user_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2`
	if err := r.db.GetDB().SelectContext(ctx, &readings, query, userID, limit); err != nil {
		return nil, errors.NewDatabaseError("failed to get latest readings", err)
	}
	return readings, nil
}

func (r *ReadingRepo) Range(ctx context.Context, userID string, start, end time.Time) ([]models.Reading, error) {
	readings := []models.Reading{}

	if userID == "" {
		query := `
			SELECT * FROM farm_readings
			WHERE recorded_at BETWEEN $1 AND $2
			ORDER BY recorded_at DESC`
		if err := r.db.GetDB().SelectContext(ctx, &readings, query, start, end); err != nil {
			return nil, errors.NewDatabaseError("failed to get readings for range", err)
		}
		return readings, nil
	}

	query := `
		SELECT * FROM farm_readings
		WHERE user_id = $1 AND recorded_at BETWEEN $2 AND $3
		ORDER BY recorded_at DESC`
	if err := r.db.GetDB().SelectContext(ctx, &readings, query, userID, start, end); err != nil {
		return nil, errors.NewDatabaseError("failed to get readings for range", err)
	}
	return readings, nil
}

func (r *ReadingRepo) Stats(ctx context.Context, userID string, start, end time.Time) (*models.ReadingStats, error) {
	type statsRow struct {
		Avg   sql.NullFloat64 `db:"avg"`
		Min   sql.NullFloat64 `db:"min"`
		Max   sql.NullFloat64 `db:"max"`
		Count int             `db:"count"`
	}

	var row statsRow
	var err error
	if userID == "" {
		query := `
			SELECT AVG(temperature) as avg, MIN(temperature) as min,
			       MAX(temperature) as max, COUNT(*) as count
			FROM farm_readings
			WHERE recorded_at BETWEEN $1 AND $2`
		err = r.db.GetDB().GetContext(ctx, &row, query, start, end)
	} else {
		query := `
			SELECT AVG(temperature) as avg, MIN(temperature) as min,
			       MAX(temperature) as max, COUNT(*) as count
			FROM farm_readings
			WHERE user_id = $1 AND recorded_at BETWEEN $2 AND $3`
		err = r.db.GetDB().GetContext(ctx, &row, query, userID, start, end)
	}
	if err != nil {
		return nil, errors.NewDatabaseError("failed to aggregate readings", err)
	}

	// An empty window surfaces as nil, never as zero-filled stats
	if row.Count == 0 {
		return nil, nil
	}

	return &models.ReadingStats{
		Avg:       row.Avg.Float64,
		Min:       row.Min.Float64,
		Max:       row.Max.Float64,
		Count:     row.Count,
		StartTime: start,
		EndTime:   end,
	}, nil
}
