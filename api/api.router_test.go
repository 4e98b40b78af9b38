package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agrisense/farmhub/internal/config"
	"github.com/agrisense/farmhub/internal/feed"
	"github.com/agrisense/farmhub/internal/hubservice"
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

func newTestRouter() (*Router, *hubservice.HubService, *memory.ReadingRepo) {
	repo := memory.NewReadingRepository()
	svc := hubservice.New(repo, feed.New(), nil, testIngestConfig())
	health := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}
	return NewRouter(svc, health), svc, repo
}

func postJSON(t *testing.T, router *Router, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type ingestEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    *models.Reading `json:"data"`
	Alerts  []models.Alert  `json:"alerts"`
	Error   string          `json:"error"`
}

func TestIngestEndpointAccepted(t *testing.T) {
	router, _, repo := newTestRouter()

	rec := postJSON(t, router, "/api/v1/readings", map[string]any{
		"temperature": 25.456,
		"user_id":     "u1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var env ingestEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.True(t, env.Success)
	require.NotNil(t, env.Data)
	assert.Equal(t, 25.46, env.Data.Temperature)
	assert.Equal(t, "u1", env.Data.UserID)
	assert.Equal(t, "ESP32_DEFAULT", env.Data.SensorID)
	assert.Equal(t, 6.5, env.Data.PHLevel)
	assert.Nil(t, env.Alerts)

	latest, err := repo.Latest(context.Background(), "u1", 1)
	require.NoError(t, err)
	assert.Len(t, latest, 1)
}

func TestIngestEndpointAlerts(t *testing.T) {
	router, _, _ := newTestRouter()

	rec := postJSON(t, router, "/api/v1/readings", map[string]any{
		"temperature": 10.0,
		"user_id":     "u1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var env ingestEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Alerts, 1)
	assert.Equal(t, "warning", env.Alerts[0].Level)
	assert.Contains(t, env.Alerts[0].Message, "LOW")
}

func TestIngestEndpointRejections(t *testing.T) {
	router, _, repo := newTestRouter()

	tests := []struct {
		name    string
		payload map[string]any
	}{
		{"missing temperature", map[string]any{"user_id": "u1"}},
		{"missing user_id", map[string]any{"temperature": 25.0}},
		{"ph out of domain", map[string]any{"temperature": 25.0, "user_id": "u1", "ph_level": 20.0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, router, "/api/v1/readings", tt.payload)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var env ingestEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Error)
		})
	}

	latest, err := repo.Latest(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, latest, "rejected requests must not persist anything")
}

func TestIngestEndpointBadJSON(t *testing.T) {
	router, _, _ := newTestRouter()

	httpReq := httptest.NewRequest(http.MethodPost, "/api/v1/readings",
		bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httpReq)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var env ingestEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "Invalid JSON")
}

func TestIngestEndpointMethodNotAllowed(t *testing.T) {
	router, _, _ := newTestRouter()

	httpReq := httptest.NewRequest(http.MethodDelete, "/api/v1/readings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httpReq)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPreflightBypassesPipeline(t *testing.T) {
	router, _, repo := newTestRouter()

	httpReq := httptest.NewRequest(http.MethodOptions, "/api/v1/readings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httpReq)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	latest, err := repo.Latest(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, latest)
}

func TestLatestEndpoint(t *testing.T) {
	router, _, _ := newTestRouter()

	for _, temp := range []float64{20, 21, 22} {
		rec := postJSON(t, router, "/api/v1/readings", map[string]any{
			"temperature": temp,
			"user_id":     "u1",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	httpReq := httptest.NewRequest(http.MethodGet, "/api/v1/readings/latest?limit=2&user_id=u1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httpReq)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool             `json:"success"`
		Data    []models.Reading `json:"data"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Len(t, resp.Data, 2)
}

func TestStatsEndpointNoData(t *testing.T) {
	router, _, _ := newTestRouter()

	httpReq := httptest.NewRequest(http.MethodGet, "/api/v1/readings/stats?user_id=nobody", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httpReq)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Data    *models.ReadingStats `json:"data"`
		Message string               `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Data, "no data must not surface as zero-filled stats")
	assert.Equal(t, "no data for range", resp.Message)
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := newTestRouter()

	httpReq := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httpReq)
	assert.Equal(t, http.StatusOK, rec.Code)
}
