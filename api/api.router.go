package api

import (
	"net/http"

	"github.com/agrisense/farmhub/api/middleware"
	"github.com/agrisense/farmhub/api/resources"
	"github.com/agrisense/farmhub/internal/hubservice"
	"github.com/gorilla/mux"
)

type Router struct {
	router    *mux.Router
	handler   http.Handler
	resources *resources.Resources
}

func NewRouter(svc *hubservice.HubService, healthCheck http.HandlerFunc) *Router {
	r := &Router{
		router:    mux.NewRouter(),
		resources: resources.NewResources(svc),
	}
	r.resources.SetHealthCheck(healthCheck)

	r.setupRoutes()

	// CORS wraps the whole router so preflights and 405s carry the
	// permissive headers too
	r.handler = middleware.CORS(r.router)
	return r
}

func (r *Router) setupRoutes() {
	// Ingestion accepts POST only; anything else (bar preflight, which
	// the CORS middleware short-circuits) gets a 405 envelope
	r.router.MethodNotAllowedHandler = http.HandlerFunc(resources.MethodNotAllowed)

	// API version prefix
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)

	// Readings
	readings := api.PathPrefix("/readings").Subrouter()
	readings.HandleFunc("", r.resources.Readings.IngestReading).Methods(http.MethodPost)
	readings.HandleFunc("/latest", r.resources.Readings.LatestReadings).Methods(http.MethodGet)
	readings.HandleFunc("/stats", r.resources.Readings.ReadingStats).Methods(http.MethodGet)
	readings.HandleFunc("/stream", r.resources.Readings.StreamReadings).Methods(http.MethodGet)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}
