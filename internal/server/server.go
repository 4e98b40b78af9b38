// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agrisense/farmhub/api"
	"github.com/agrisense/farmhub/internal/config"
	"github.com/agrisense/farmhub/internal/database"
	"github.com/agrisense/farmhub/internal/feed"
	"github.com/agrisense/farmhub/internal/hubservice"
	"github.com/agrisense/farmhub/internal/monitoring"
	"github.com/agrisense/farmhub/internal/repository"
	"github.com/agrisense/farmhub/internal/repository/memory"
	"github.com/agrisense/farmhub/internal/repository/timescale"
	"github.com/gorilla/handlers"
	nuts "github.com/vaudience/go-nuts"
)

const dbPingTimeout = 5 * time.Second

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
	monitoring *monitoring.Service
	bridge     *feed.Bridge
	cancel     context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
		srv: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// Initialize services
	s.hubservice = s.initializeHubService(ctx)
	s.monitoring = monitoring.NewService(monitoring.Config{
		PrometheusEndpoint: s.config.Monitoring.PrometheusEndpoint,
		LokiEndpoint:       s.config.Monitoring.LokiEndpoint,
	})

	// Record every accepted reading with the monitoring service
	s.hubservice.OnIngest(func(id string) {
		s.monitoring.RecordEvent("reading_ingested", map[string]string{
			"reading_id": id,
		})
	})

	// Wire the router
	router := api.NewRouter(s.hubservice, s.handleHealth())
	s.srv.Handler = handlers.CombinedLoggingHandler(os.Stdout,
		handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(router))

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	// Stop the feed bridge before closing the listener
	if s.cancel != nil {
		s.cancel()
	}
	if s.bridge != nil {
		if err := s.bridge.Close(); err != nil {
			nuts.L.Warnf("[Server] Error closing feed bridge: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// handleHealth returns a simple health check handler
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","version":"` + nuts.GetVersion() + `"}`))
	}
}

// initializeHubService creates and configures the hub service
func (s *Server) initializeHubService(ctx context.Context) *hubservice.HubService {
	readings := s.initReadingRepository()
	readingFeed := feed.New()

	var publisher feed.Publisher = readingFeed
	if s.config.Redis.Enabled {
		s.bridge = feed.NewBridge(readingFeed, s.config.Redis)
		publisher = s.bridge
		go s.bridge.Run(ctx)
	}

	return hubservice.New(readings, readingFeed, publisher, s.config.Ingest)
}

func (s *Server) initReadingRepository() repository.ReadingRepository {
	if s.config.Database.Driver == config.DriverMemory {
		nuts.L.Warnf("[Server] Using in-memory reading store; data will not survive restarts")
		return memory.NewReadingRepository()
	}

	tsdb := initTimescaleDB(s.config.Database.TimescaleDB)
	readings, err := timescale.NewReadingRepository(tsdb)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize reading repository: %v", err)
	}
	return readings
}

func initTimescaleDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewTimescaleDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to TimescaleDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping TimescaleDB: %v", err)
	}
	return wrappedDB
}
