package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"portfolio-rebalancer-go/internal/scheduler"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StatusServer reports the state of the background worker.
type StatusServer struct {
	server    *http.Server
	scheduler *scheduler.Scheduler
	name      string
	startTime time.Time
	logger    *zap.Logger
}

// NewStatusServer creates a status server for a running scheduler.
func NewStatusServer(port int, name string, sched *scheduler.Scheduler, logger *zap.Logger) *StatusServer {
	s := &StatusServer{
		scheduler: sched,
		name:      name,
		startTime: time.Now(),
		logger:    logger.Named("status-server"),
	}

	r := chi.NewRouter()
	r.Get("/status", s.statusHandler)
	r.Get("/health", s.healthHandler)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}
	return s
}

// Handler returns the status routes, mainly for tests.
func (s *StatusServer) Handler() http.Handler {
	return s.server.Handler
}

// Start runs the HTTP server in a new goroutine.
func (s *StatusServer) Start() {
	s.logger.Info("Starting status server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("Status server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *StatusServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping status server")
	return s.server.Shutdown(ctx)
}

func (s *StatusServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := struct {
		Name      string            `json:"name"`
		StartTime string            `json:"start_time"`
		Uptime    string            `json:"uptime"`
		Jobs      []scheduler.Entry `json:"jobs"`
	}{
		Name:      s.name,
		StartTime: s.startTime.Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Jobs:      s.scheduler.Entries(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("Failed to write status response", zap.Error(err))
	}
}

func (s *StatusServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
