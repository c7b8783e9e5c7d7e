// Package server exposes test run pages and the test run action route over
// HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cherry/cherry-cli/internal/action"
	"github.com/cherry/cherry-cli/internal/detail"
	"github.com/cherry/cherry-cli/internal/logging"
	"github.com/cherry/cherry-cli/internal/project"
	"github.com/cherry/cherry-cli/internal/testrun"
)

var serverLog = logging.New("server")

// API is the part of the REST client the service uses.
type API interface {
	detail.Source
	action.Mutator
	ListTestRuns(ctx context.Context, projectID int64) ([]testrun.TestRun, error)
}

type Server struct {
	Projects project.Repository
	API      API

	loader  *detail.Loader
	actions *action.Handler
}

func New(projects project.Repository, api API) *Server {
	return &Server{
		Projects: projects,
		API:      api,
		loader:   detail.NewLoader(projects, api),
		actions:  action.NewHandler(api),
	}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID, accessLog)

	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.Handle("/test-runs/{projectShortCode}/{testRunNumber}", s.actions).Methods(http.MethodPost)
	r.HandleFunc("/test-runs/{projectShortCode}/{testRunNumber}", s.testRunDetail).Methods(http.MethodGet)
	r.HandleFunc("/projects/{projectShortCode}/test-runs", s.projectTestRuns).Methods(http.MethodGet)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/projects", s.findProjectByTitle).Methods(http.MethodGet)
	apiRouter.HandleFunc("/projects/{shortCode}", s.findProjectByShortCode).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	return Serve(ctx, addr, s.Handler())
}

// Serve runs h on addr until ctx is cancelled. The mock backend uses it too.
func Serve(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		serverLog.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		serverLog.Info("shutting down", "addr", addr)
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
