package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cherry/cherry-cli/internal/action"
	"github.com/cherry/cherry-cli/internal/api"
	"github.com/cherry/cherry-cli/internal/detail"
	"github.com/cherry/cherry-cli/internal/testrun"
)

// DetailResponse is the JSON form of a test run page.
type DetailResponse struct {
	testrun.Detail `yaml:",inline"`
	Description    string               `json:"descriptionText" yaml:"descriptionText"`
	Actions        []testrun.ActionView `json:"actions" yaml:"actions"`
	ActionRoute    string               `json:"actionRoute" yaml:"actionRoute"`
}

func NewDetailResponse(d testrun.Detail) DetailResponse {
	return DetailResponse{
		Detail:      d,
		Description: d.DescriptionText(),
		Actions:     testrun.Describe(d.Actions()),
		ActionRoute: testrun.DetailRoute(d.Project.ProjectShortCode, d.TestRun.TestRunNumber),
	}
}

func (s *Server) testRunDetail(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	n, err := strconv.ParseInt(vars["testRunNumber"], 10, 64)
	if err != nil || n <= 0 {
		writeError(w, http.StatusBadRequest, action.MsgInvalidRequest)
		return
	}
	d, err := s.loader.Load(r.Context(), vars["projectShortCode"], n)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NewDetailResponse(d))
}

func (s *Server) projectTestRuns(w http.ResponseWriter, r *http.Request) {
	p, err := s.loader.Project(r.Context(), mux.Vars(r)["projectShortCode"])
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	runs, err := s.API.ListTestRuns(r.Context(), p.ID)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"project":  p.View(),
		"testRuns": runs,
	})
}

func (s *Server) findProjectByTitle(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	p, err := s.Projects.FindByTitle(r.Context(), title)
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) findProjectByShortCode(w http.ResponseWriter, r *http.Request) {
	p, err := s.Projects.FindByShortCode(r.Context(), mux.Vars(r)["shortCode"])
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	switch {
	case errors.Is(err, detail.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, "project not found")
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound:
		writeError(w, http.StatusNotFound, "test run not found")
	default:
		serverLog.Error("request failed", "err", err)
		writeError(w, http.StatusInternalServerError, action.MsgUnexpected)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
