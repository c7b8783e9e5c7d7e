package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cherry/cherry-cli/internal/api"
	"github.com/cherry/cherry-cli/internal/infrastructure/database"
	"github.com/cherry/cherry-cli/internal/mock"
	"github.com/cherry/cherry-cli/internal/project"
	"github.com/cherry/cherry-cli/internal/state"
	"github.com/cherry/cherry-cli/internal/testrun"
)

type fixture struct {
	handler http.Handler
	client  api.Client
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()

	backend := httptest.NewServer(mock.NewServer(mock.Store{Path: filepath.Join(dir, "state.json"), WorkspaceID: "ws"}, "").Handler())
	t.Cleanup(backend.Close)
	client := api.Client{BaseURL: backend.URL, WorkspaceID: "ws"}

	db, err := database.Open(database.Options{Path: filepath.Join(dir, "cherry.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := project.NewCachedRepository(db.ProjectRepository(), 0)
	for _, p := range state.SeedProjects() {
		require.NoError(t, repo.Save(context.Background(), project.New(p.Title, p.ProjectShortCode)))
	}

	return fixture{handler: New(repo, client).Handler(), client: client}
}

func (f fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealthAndRequestID(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	given := uuid.NewString()
	req.Header.Set(RequestIDHeader, given)
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, given, rec.Header().Get(RequestIDHeader))
}

func TestTestRunDetail(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/test-runs/WEB/1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got DetailResponse
	decode(t, rec, &got)
	assert.Equal(t, "WEB", got.Project.ProjectShortCode)
	assert.Equal(t, int64(1), got.TestRun.TestRunNumber)
	assert.Equal(t, "/test-runs/WEB/1", got.ActionRoute)
	require.NotEmpty(t, got.Actions)
	assert.Equal(t, testrun.ActionAbort, got.Actions[0].Kind, "seeded run 1 is in progress")
	assert.NotEmpty(t, got.TestCaseRuns)
}

func TestTestRunDetail_NotFound(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/test-runs/NOPE/1", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/test-runs/WEB/999", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/test-runs/WEB/abc", "").Code)
}

func TestActionRoute_AbortThenRedirect(t *testing.T) {
	f := newFixture(t)
	run, err := f.client.GetTestRun(context.Background(), 1, 1)
	require.NoError(t, err)

	abort, ok := testrun.Find(testrun.Actions(run), testrun.ActionAbort)
	require.True(t, ok)
	body, err := json.Marshal(abort.Effect.(testrun.Submit).Submission)
	require.NoError(t, err)

	rec := f.do(http.MethodPost, "/test-runs/WEB/1", string(body))
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())
	assert.Equal(t, "/projects/WEB/test-runs", rec.Header().Get("Location"))

	after, err := f.client.GetTestRun(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, testrun.StatusAbort, after.Status)
	assert.Equal(t, run.Title, after.Title)
	assert.Equal(t, run.Description, after.Description)
}

func TestActionRoute_Errors(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/test-runs/WEB/1", `{"intent":"archive","testRunID":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/test-runs/WEB/1", `{"intent":"delete","testRunID":999}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Unexpected error", strings.TrimSpace(rec.Body.String()))
}

func TestProjectTestRuns(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/projects/WEB/test-runs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Project  testrun.Project   `json:"project"`
		TestRuns []testrun.TestRun `json:"testRuns"`
	}
	decode(t, rec, &got)
	assert.Equal(t, "Web Shop", got.Project.Title)
	assert.NotEmpty(t, got.TestRuns)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/projects/NOPE/test-runs", "").Code)
}

func TestProjectLookups(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/projects?title=Web+Shop", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p project.WorkspaceProject
	decode(t, rec, &p)
	assert.Equal(t, "WEB", p.ShortCode)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/projects?title=web+shop", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/projects", "").Code)

	rec = f.do(http.MethodGet, "/api/projects/MOB", "")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &p)
	assert.Equal(t, "Mobile App", p.Title)

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/projects/ZZZ", "").Code)
}
