// FilePath: internal/hubservice/hubservice.go
package hubservice

import (
	"github.com/agrisense/farmhub/internal/alerts"
	"github.com/agrisense/farmhub/internal/config"
	"github.com/agrisense/farmhub/internal/errors"
	"github.com/agrisense/farmhub/internal/feed"
	"github.com/agrisense/farmhub/internal/ingest"
	"github.com/agrisense/farmhub/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

// HubService orchestrates the ingestion pipeline and the read-side
// facade consumed by the dashboard.
type HubService struct {
	Readings  repository.ReadingRepository
	Feed      *feed.Feed
	publisher feed.Publisher
	validator *ingest.Validator
	evaluator *alerts.Evaluator
	cfg       config.IngestConfig
	events    *nuts.EventEmitter
}

// New creates a new HubService instance. The publisher may be the feed
// itself or a bridge that also forwards to sibling instances.
func New(readings repository.ReadingRepository, f *feed.Feed, publisher feed.Publisher, cfg config.IngestConfig) *HubService {
	if publisher == nil {
		publisher = f
	}
	return &HubService{
		Readings:  readings,
		Feed:      f,
		publisher: publisher,
		validator: ingest.NewValidator(cfg),
		evaluator: alerts.NewEvaluator(cfg),
		cfg:       cfg,
		events:    nuts.NewEventEmitter(),
	}
}

// Validate checks if all required dependencies are initialized
func (s *HubService) Validate() error {
	if s.Readings == nil {
		return ErrMissingDependency("readings")
	}
	if s.Feed == nil {
		return ErrMissingDependency("feed")
	}
	return nil
}

// OnIngest registers a callback fired after each accepted reading
func (s *HubService) OnIngest(handler func(id string)) {
	s.events.On("reading.ingested", "ingest_handler", func(args ...interface{}) {
		if len(args) > 0 {
			if id, ok := args[0].(string); ok {
				handler(id)
			}
		}
	})
}

func ErrMissingDependency(name string) error {
	return errors.NewInternalError("missing dependency: "+name, nil)
}
