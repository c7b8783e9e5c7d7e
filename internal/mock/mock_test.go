package mock

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cherry/cherry-cli/internal/api"
	"github.com/cherry/cherry-cli/internal/testrun"
)

func newBackend(t *testing.T, token string) (Store, api.Client) {
	t.Helper()
	store := Store{Path: filepath.Join(t.TempDir(), "state.json"), WorkspaceID: "ws-test"}
	srv := httptest.NewServer(NewServer(store, token).Handler())
	t.Cleanup(srv.Close)
	return store, api.Client{BaseURL: srv.URL, WorkspaceID: "ws-test", Token: token}
}

func TestStore_EnsureSeedsOnce(t *testing.T) {
	store := Store{Path: filepath.Join(t.TempDir(), "state.json"), WorkspaceID: "ws-a"}
	st, err := store.Ensure()
	require.NoError(t, err)
	runs, err := store.ListTestRuns(st, 1)
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	for i := 1; i < len(runs); i++ {
		assert.Greater(t, runs[i-1].TestRunNumber, runs[i].TestRunNumber)
	}

	require.NoError(t, store.DeleteTestRun(st, runs[0].TestRunID))
	require.NoError(t, store.Save(st))

	again, err := store.Ensure()
	require.NoError(t, err)
	left, err := store.ListTestRuns(again, 1)
	require.NoError(t, err)
	assert.Len(t, left, len(runs)-1, "existing state is not reseeded")
}

func TestStore_NotFound(t *testing.T) {
	store := Store{Path: filepath.Join(t.TempDir(), "state.json"), WorkspaceID: "ws-a"}
	st, err := store.Ensure()
	require.NoError(t, err)

	_, err = store.GetTestRun(st, 1, 999)
	assert.ErrorIs(t, err, ErrTestRunNotFound)
	assert.ErrorIs(t, store.DeleteTestRun(st, 999), ErrTestRunNotFound)

	other := Store{Path: store.Path, WorkspaceID: "ws-missing"}
	_, err = other.ListTestRuns(st, 1)
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestServer_ReadUpdateDelete(t *testing.T) {
	_, client := newBackend(t, "")
	ctx := context.Background()

	runs, err := client.ListTestRuns(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, runs)
	target := runs[0]

	got, err := client.GetTestRun(ctx, 1, target.TestRunNumber)
	require.NoError(t, err)
	assert.Equal(t, target.TestRunID, got.TestRunID)

	cases, err := client.ListTestCaseRuns(ctx, 1, target.TestRunNumber)
	require.NoError(t, err)
	assert.NotNil(t, cases)

	require.NoError(t, client.UpdateTestRun(ctx, target.TestRunID, testrun.UpdateTestRun{
		Title: "Renamed", Description: got.Description, Status: testrun.StatusAbort,
	}))
	got, err = client.GetTestRun(ctx, 1, target.TestRunNumber)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, testrun.StatusAbort, got.Status)

	require.NoError(t, client.DeleteTestRun(ctx, target.TestRunID))
	_, err = client.GetTestRun(ctx, 1, target.TestRunNumber)
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr), "expected *api.Error, got %v", err)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestServer_RejectsBadStatusAndWrongToken(t *testing.T) {
	_, client := newBackend(t, "secret")
	ctx := context.Background()

	err := client.UpdateTestRun(ctx, 1, testrun.UpdateTestRun{Status: "paused"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	client.Token = "wrong"
	_, err = client.ListTestRuns(ctx, 1)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestServer_WrongWorkspace(t *testing.T) {
	_, client := newBackend(t, "")
	client.WorkspaceID = "ws-other"
	_, err := client.ListTestRuns(context.Background(), 1)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
