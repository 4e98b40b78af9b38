package hubservice

import (
	"context"
	"testing"
	"time"

	"github.com/agrisense/farmhub/internal/config"
	"github.com/agrisense/farmhub/internal/errors"
	"github.com/agrisense/farmhub/internal/feed"
	"github.com/agrisense/farmhub/internal/models"
	"github.com/agrisense/farmhub/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		TempMin:         -50,
		TempMax:         150,
		AlertLowBelow:   15,
		AlertHighAbove:  35,
		DefaultSensorID: "ESP32_DEFAULT",
		DefaultLocation: "Main Greenhouse",
		DefaultPH:       6.5,
		DefaultEC:       1.2,
		DefaultCO2:      400.0,
		DefaultNDVI:     0.5,
	}
}

func newTestService() (*HubService, *memory.ReadingRepo) {
	repo := memory.NewReadingRepository()
	return New(repo, feed.New(), nil, testIngestConfig()), repo
}

func TestIngestAccepted(t *testing.T) {
	svc, repo := newTestService()

	stored, found, apiErr := svc.Ingest(context.Background(), map[string]any{
		"temperature": 25.0,
		"user_id":     "u1",
	})
	require.Nil(t, apiErr)
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, 25.0, stored.Temperature)
	assert.Equal(t, 6.5, stored.PHLevel)
	assert.Empty(t, found)

	latest, err := repo.Latest(context.Background(), "u1", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, *stored, latest[0])
}

func TestIngestRejectionPersistsNothing(t *testing.T) {
	svc, repo := newTestService()

	for _, payload := range []map[string]any{
		{"user_id": "u1"},
		{"temperature": 25.0},
		{"temperature": 25.0, "user_id": "u1", "ph_level": 20.0},
		{"temperature": 500.0, "user_id": "u1"},
	} {
		_, _, apiErr := svc.Ingest(context.Background(), payload)
		require.NotNil(t, apiErr)
		assert.True(t, errors.IsClientError(apiErr))
	}

	latest, err := repo.Latest(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, latest, "a rejected request must be a no-op on the store")
}

func TestIngestAlerts(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		temp    float64
		mention string
	}{
		{10, "LOW"},
		{40, "HIGH"},
	}
	for _, tt := range tests {
		stored, found, apiErr := svc.Ingest(context.Background(), map[string]any{
			"temperature": tt.temp,
			"user_id":     "u1",
		})
		require.Nil(t, apiErr)
		require.NotNil(t, stored)
		require.Len(t, found, 1)
		assert.Equal(t, models.AlertLevelWarning, found[0].Level)
		assert.Contains(t, found[0].Message, tt.mention)
	}
}

func TestIngestPublishesToFeed(t *testing.T) {
	svc, _ := newTestService()
	got := make(chan models.Reading, 1)

	sub := svc.Feed.Subscribe("u1", func(r models.Reading) { got <- r })
	defer svc.Feed.Unsubscribe(sub)

	stored, _, apiErr := svc.Ingest(context.Background(), map[string]any{
		"temperature": 25.0,
		"user_id":     "u1",
	})
	require.Nil(t, apiErr)

	select {
	case reading := <-got:
		assert.Equal(t, stored.ID, reading.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("accepted reading was not fanned out")
	}
}

// failingRepo simulates an unavailable store
type failingRepo struct{}

func (f *failingRepo) Insert(ctx context.Context, reading models.Reading) (*models.Reading, error) {
	return nil, errors.NewDatabaseError("store unavailable", nil)
}
func (f *failingRepo) Latest(ctx context.Context, userID string, limit int) ([]models.Reading, error) {
	return nil, errors.NewDatabaseError("store unavailable", nil)
}
func (f *failingRepo) Range(ctx context.Context, userID string, start, end time.Time) ([]models.Reading, error) {
	return nil, errors.NewDatabaseError("store unavailable", nil)
}
func (f *failingRepo) Stats(ctx context.Context, userID string, start, end time.Time) (*models.ReadingStats, error) {
	return nil, errors.NewDatabaseError("store unavailable", nil)
}

func TestIngestStorageError(t *testing.T) {
	svc := New(&failingRepo{}, feed.New(), nil, testIngestConfig())
	published := make(chan models.Reading, 1)
	sub := svc.Feed.Subscribe("", func(r models.Reading) { published <- r })
	defer svc.Feed.Unsubscribe(sub)

	stored, found, apiErr := svc.Ingest(context.Background(), map[string]any{
		"temperature": 25.0,
		"user_id":     "u1",
	})
	assert.Nil(t, stored)
	assert.Nil(t, found)
	require.NotNil(t, apiErr)
	assert.Equal(t, 500, apiErr.Code)
	assert.Equal(t, errors.ErrorTypeDatabase, apiErr.Type)

	select {
	case <-published:
		t.Fatal("nothing may be published when persistence fails")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestOnIngestFires(t *testing.T) {
	svc, _ := newTestService()
	ids := make(chan string, 1)
	svc.OnIngest(func(id string) { ids <- id })

	stored, _, apiErr := svc.Ingest(context.Background(), map[string]any{
		"temperature": 25.0,
		"user_id":     "u1",
	})
	require.Nil(t, apiErr)

	select {
	case id := <-ids:
		assert.Equal(t, stored.ID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("ingest event did not fire")
	}
}

func TestReadingStatsDelegation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, _, apiErr := svc.Ingest(ctx, map[string]any{"temperature": 25.0, "user_id": "u1"})
	require.Nil(t, apiErr)

	stats, err := svc.ReadingStats(ctx, "u1", time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 1, stats.Count)

	empty, err := svc.ReadingStats(ctx, "nobody", time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Nil(t, empty)
}
