// FilePath: api/resources/api.resource.readings.go
package resources

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agrisense/farmhub/internal/errors"
	"github.com/agrisense/farmhub/internal/hubservice"
	"github.com/agrisense/farmhub/internal/models"
	"github.com/gorilla/schema"
	nuts "github.com/vaudience/go-nuts"
)

// ReadingHandlers encapsulates the reading-related HTTP handlers
type ReadingHandlers struct {
	hubservice *hubservice.HubService
}

var queryDecoder = schema.NewDecoder()

func init() {
	queryDecoder.IgnoreUnknownKeys(true)
}

// ingestResponse is the envelope devices receive on acceptance
type ingestResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      *models.Reading `json:"data"`
	Alerts    []models.Alert  `json:"alerts"`
	Timestamp time.Time       `json:"timestamp"`
}

type errorResponse struct {
	Success   bool      `json:"success"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

type listResponse struct {
	Success bool             `json:"success"`
	Data    []models.Reading `json:"data"`
	Count   int              `json:"count"`
}

type statsResponse struct {
	Success bool                 `json:"success"`
	Data    *models.ReadingStats `json:"data"`
	Message string               `json:"message,omitempty"`
}

// @Summary Ingest a sensor reading
// @Description Accept a temperature reading (plus optional environmental measurements) from a farm device
// @Tags readings
// @Accept json
// @Produce json
// @Param reading body map[string]interface{} true "Raw reading payload"
// @Success 201 {object} ingestResponse
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Router /readings [post]
func (h *ReadingHandlers) IngestReading(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, errors.NewBadRequestBodyError(
			"Invalid JSON format in request body", err).WithRequestID(requestID))
		return
	}

	stored, found, apiErr := h.hubservice.Ingest(r.Context(), payload)
	if apiErr != nil {
		respondWithError(w, apiErr.WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusCreated, ingestResponse{
		Success:   true,
		Message:   "Temperature recorded successfully",
		Data:      stored,
		Alerts:    found,
		Timestamp: time.Now().UTC(),
	})
}

type latestQuery struct {
	Limit  int    `schema:"limit"`
	UserID string `schema:"user_id"`
}

// @Summary Get latest readings
// @Description Get the most recent readings, optionally scoped to one owner
// @Tags readings
// @Produce json
// @Param limit query int false "Maximum number of readings (default 10)"
// @Param user_id query string false "Owner filter"
// @Success 200 {object} listResponse
// @Router /readings/latest [get]
func (h *ReadingHandlers) LatestReadings(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var q latestQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewTypeMismatchError(
			"Invalid query parameters").WithRequestID(requestID))
		return
	}

	readings, err := h.hubservice.LatestReadings(r.Context(), q.UserID, q.Limit)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	respondWithJSON(w, http.StatusOK, listResponse{
		Success: true,
		Data:    readings,
		Count:   len(readings),
	})
}

type statsQuery struct {
	Start  string `schema:"start"`
	End    string `schema:"end"`
	UserID string `schema:"user_id"`
}

// @Summary Get temperature statistics
// @Description Aggregate temperature over a time window (defaults to the last 24 hours)
// @Tags readings
// @Produce json
// @Param start query string false "Window start (RFC3339)"
// @Param end query string false "Window end (RFC3339)"
// @Param user_id query string false "Owner filter"
// @Success 200 {object} statsResponse
// @Router /readings/stats [get]
func (h *ReadingHandlers) ReadingStats(w http.ResponseWriter, r *http.Request) {
	requestID := nuts.NID("req", 12)

	var q statsQuery
	if err := queryDecoder.Decode(&q, r.URL.Query()); err != nil {
		respondWithError(w, errors.NewTypeMismatchError(
			"Invalid query parameters").WithRequestID(requestID))
		return
	}

	start, end := parseTimeWindow(q.Start, q.End)
	stats, err := h.hubservice.ReadingStats(r.Context(), q.UserID, start, end)
	if err != nil {
		respondWithError(w, errors.AsAPIError(err).WithRequestID(requestID))
		return
	}

	resp := statsResponse{Success: true, Data: stats}
	if stats == nil {
		resp.Message = "no data for range"
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// @Summary Stream readings
// @Description Server-sent event stream of newly accepted readings
// @Tags readings
// @Produce text/event-stream
// @Param user_id query string false "Owner filter"
// @Router /readings/stream [get]
func (h *ReadingHandlers) StreamReadings(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, errors.NewInternalError("streaming unsupported", nil))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Buffered so a stalled client drops readings instead of blocking
	// the fanout goroutine
	readings := make(chan models.Reading, 16)
	sub := h.hubservice.Feed.Subscribe(r.URL.Query().Get("user_id"), func(reading models.Reading) {
		select {
		case readings <- reading:
		default:
			nuts.L.Warnf("[API] Dropping reading %s for slow stream client", reading.ID)
		}
	})
	defer h.hubservice.Feed.Unsubscribe(sub)

	for {
		select {
		case <-r.Context().Done():
			return
		case reading := <-readings:
			payload, err := json.Marshal(reading)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// MethodNotAllowed answers any verb a route does not support with the
// standard error envelope.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, errors.NewMethodNotAllowedError(r.Method))
}

// Helper functions

// parseTimeWindow falls back to the last 24 hours, matching the
// dashboard's default view
func parseTimeWindow(startStr, endStr string) (time.Time, time.Time) {
	now := time.Now().UTC()

	start := now.Add(-24 * time.Hour)
	if startStr != "" {
		if parsed, err := time.Parse(time.RFC3339, startStr); err == nil {
			start = parsed
		}
	}

	end := now
	if endStr != "" {
		if parsed, err := time.Parse(time.RFC3339, endStr); err == nil {
			end = parsed
		}
	}

	return start, end
}

func respondWithError(w http.ResponseWriter, err *errors.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	json.NewEncoder(w).Encode(errorResponse{
		Success:   false,
		Error:     err.Message,
		Timestamp: time.Now().UTC(),
	})
	nuts.L.Errorf("[API] %s", err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}
