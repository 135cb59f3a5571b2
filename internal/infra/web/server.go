package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"event-ingestion/internal/infra/metrics"
	"event-ingestion/internal/usecase"
)

type Server struct {
	ingestUC  usecase.IngestionUseCase
	eventsUC  usecase.EventQueryUseCase
	maxUpload int64
	log       *zerolog.Logger

	mu     sync.Mutex
	server *http.Server
}

func NewServer(
	ingestUC usecase.IngestionUseCase,
	eventsUC usecase.EventQueryUseCase,
	maxUpload int64,
	logger *zerolog.Logger,
) *Server {
	if maxUpload <= 0 {
		maxUpload = 64 << 20
	}
	return &Server{
		ingestUC:  ingestUC,
		eventsUC:  eventsUC,
		maxUpload: maxUpload,
		log:       logger,
	}
}

// Routes builds the router with middleware and every endpoint attached.
func (s *Server) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestID, s.accessLog, s.recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/events/ingest", s.handleIngest)
		r.Get("/events/ingestion-status/{job_id}", s.handleIngestionStatus)
		r.Get("/events/ingestion-jobs/stale", s.handleStaleJobs)
		r.Delete("/events/ingestion-jobs/{job_id}", s.handleDeleteJob)

		r.Get("/timeline/{root_event_id}", s.handleTimeline)
		r.Get("/events/search", s.handleSearch)
		r.Get("/insights/overlapping-events", s.handleOverlaps)
	})
	return r
}

// Start blocks serving on port until Shutdown is called.
func (s *Server) Start(port int, readTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: readTimeout,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.log.Info().Int("port", port).Msg("HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
