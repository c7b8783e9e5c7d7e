package mock

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/cherry/cherry-cli/internal/logging"
	"github.com/cherry/cherry-cli/internal/state"
	"github.com/cherry/cherry-cli/internal/testrun"
)

const WorkspaceHeader = "X-Cherry-Workspace"

var mockLog = logging.New("mock")

// Server serves Store over the REST routes api.Client calls. Each request
// loads the state file and mutations write it back, under one lock.
type Server struct {
	Store Store
	// Token, when set, must be presented as a bearer token.
	Token string

	mu sync.Mutex
}

func NewServer(store Store, token string) *Server {
	return &Server{Store: store, Token: token}
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.authorize)
	r.HandleFunc("/projects/{projectID:[0-9]+}/test-runs", s.listTestRuns).Methods(http.MethodGet)
	r.HandleFunc("/projects/{projectID:[0-9]+}/test-runs/{testRunNumber:[0-9]+}", s.getTestRun).Methods(http.MethodGet)
	r.HandleFunc("/projects/{projectID:[0-9]+}/test-runs/{testRunNumber:[0-9]+}/test-case-runs", s.listTestCaseRuns).Methods(http.MethodGet)
	r.HandleFunc("/test-runs/{testRunID:[0-9]+}", s.updateTestRun).Methods(http.MethodPut)
	r.HandleFunc("/test-runs/{testRunID:[0-9]+}", s.deleteTestRun).Methods(http.MethodDelete)
	r.HandleFunc("/projects", s.listProjects).Methods(http.MethodGet)
	return r
}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Token != "" && r.Header.Get("Authorization") != "Bearer "+s.Token {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if ws := strings.TrimSpace(r.Header.Get(WorkspaceHeader)); ws != "" && ws != s.Store.WorkspaceID {
			writeError(w, http.StatusNotFound, ErrWorkspaceNotFound.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) withState(w http.ResponseWriter, save bool, fn func(st *state.State) (any, int, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Store.Ensure()
	if err != nil {
		mockLog.Error("loading state", "err", err)
		writeError(w, http.StatusInternalServerError, "state unavailable")
		return
	}
	out, status, err := fn(st)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ErrTestRunNotFound) || errors.Is(err, ErrWorkspaceNotFound) {
			code = http.StatusNotFound
		}
		writeError(w, code, err.Error())
		return
	}
	if save {
		if err := s.Store.Save(st); err != nil {
			mockLog.Error("saving state", "err", err)
			writeError(w, http.StatusInternalServerError, "state unavailable")
			return
		}
	}
	if out == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, out)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.withState(w, false, func(st *state.State) (any, int, error) {
		items, err := s.Store.Projects(st)
		return items, http.StatusOK, err
	})
}

func (s *Server) listTestRuns(w http.ResponseWriter, r *http.Request) {
	projectID := pathInt(r, "projectID")
	s.withState(w, false, func(st *state.State) (any, int, error) {
		items, err := s.Store.ListTestRuns(st, projectID)
		return items, http.StatusOK, err
	})
}

func (s *Server) getTestRun(w http.ResponseWriter, r *http.Request) {
	projectID, n := pathInt(r, "projectID"), pathInt(r, "testRunNumber")
	s.withState(w, false, func(st *state.State) (any, int, error) {
		run, err := s.Store.GetTestRun(st, projectID, n)
		if err != nil {
			return nil, 0, err
		}
		return run.TestRun, http.StatusOK, nil
	})
}

func (s *Server) listTestCaseRuns(w http.ResponseWriter, r *http.Request) {
	projectID, n := pathInt(r, "projectID"), pathInt(r, "testRunNumber")
	s.withState(w, false, func(st *state.State) (any, int, error) {
		run, err := s.Store.GetTestRun(st, projectID, n)
		if err != nil {
			return nil, 0, err
		}
		items := run.TestCaseRuns
		if items == nil {
			items = []testrun.TestCaseRun{}
		}
		return items, http.StatusOK, nil
	})
}

func (s *Server) updateTestRun(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "testRunID")
	var u testrun.UpdateTestRun
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if !u.Status.Known() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	s.withState(w, true, func(st *state.State) (any, int, error) {
		run, err := s.Store.UpdateTestRun(st, id, u)
		if err != nil {
			return nil, 0, err
		}
		mockLog.Debug("test run updated", "id", id, "status", u.Status)
		return run.TestRun, http.StatusOK, nil
	})
}

func (s *Server) deleteTestRun(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "testRunID")
	s.withState(w, true, func(st *state.State) (any, int, error) {
		if err := s.Store.DeleteTestRun(st, id); err != nil {
			return nil, 0, err
		}
		mockLog.Debug("test run deleted", "id", id)
		return nil, http.StatusNoContent, nil
	})
}

func pathInt(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
