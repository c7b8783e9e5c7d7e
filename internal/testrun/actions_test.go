package testrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func kinds(actions []Action) []ActionKind {
	out := make([]ActionKind, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Kind)
	}
	return out
}

func TestActions_PendingAndInProgressOfferAbort(t *testing.T) {
	for _, status := range []Status{StatusPending, StatusInProgress} {
		t.Run(string(status), func(t *testing.T) {
			run := TestRun{TestRunID: 7, Title: "Nightly", Description: "smoke", Status: status}
			actions := Actions(run)

			require.Equal(t, []ActionKind{ActionAbort, ActionEdit, ActionExport, ActionDelete}, kinds(actions))
			abort := actions[0]
			assert.Equal(t, "Abort test run", abort.Label)

			submit, ok := abort.Effect.(Submit)
			require.True(t, ok, "abort should submit")
			assert.Empty(t, submit.Confirm)
			assert.Equal(t, IntentUpdate, submit.Submission.Intent)
			assert.Equal(t, int64(7), submit.Submission.TestRunID)
			require.NotNil(t, submit.Submission.TestRunUpdate)
			assert.Equal(t, UpdateTestRun{Title: "Nightly", Description: "smoke", Status: StatusAbort}, *submit.Submission.TestRunUpdate)
		})
	}
}

func TestActions_AbortOffersResume(t *testing.T) {
	run := TestRun{TestRunID: 3, Title: "Release", Description: "rc1", Status: StatusAbort}
	actions := Actions(run)

	require.Equal(t, []ActionKind{ActionResume, ActionEdit, ActionExport, ActionDelete}, kinds(actions))
	submit, ok := actions[0].Effect.(Submit)
	require.True(t, ok)
	require.NotNil(t, submit.Submission.TestRunUpdate)
	assert.Equal(t, StatusPending, submit.Submission.TestRunUpdate.Status)
	assert.Equal(t, "Release", submit.Submission.TestRunUpdate.Title)
	assert.Equal(t, "rc1", submit.Submission.TestRunUpdate.Description)
}

func TestActions_CompleteAndUnknownGetMinimalSet(t *testing.T) {
	for _, status := range []Status{StatusComplete, "archived", ""} {
		actions := Actions(TestRun{TestRunID: 1, Status: status})
		assert.Equal(t, []ActionKind{ActionEdit, ActionExport, ActionDelete}, kinds(actions), "status %q", status)
	}
}

func TestActions_CommonEffects(t *testing.T) {
	actions := Actions(TestRun{TestRunID: 11, Status: StatusComplete})

	edit, ok := Find(actions, ActionEdit)
	require.True(t, ok)
	assert.Equal(t, Navigate{To: "edit"}, edit.Effect)

	export, ok := Find(actions, ActionExport)
	require.True(t, ok)
	assert.Equal(t, OpenExport{}, export.Effect)

	del, ok := Find(actions, ActionDelete)
	require.True(t, ok)
	assert.Equal(t, VariantDanger, del.Variant)
	assert.Equal(t, Submit{
		Submission: Submission{Intent: IntentDelete, TestRunID: 11},
		Confirm:    DeleteConfirmation,
	}, del.Effect)

	_, ok = Find(actions, ActionAbort)
	assert.False(t, ok)
}

func TestActions_Properties(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		status := Status(rapid.OneOf(
			rapid.SampledFrom([]string{"pending", "inProgress", "complete", "abort"}),
			rapid.String(),
		).Draw(r, "status"))
		run := TestRun{
			TestRunID:   rapid.Int64Range(1, 1<<40).Draw(r, "id"),
			Title:       rapid.String().Draw(r, "title"),
			Description: rapid.String().Draw(r, "description"),
			Status:      status,
		}

		actions := Actions(run)
		got := kinds(actions)
		n := len(got)
		if n < 3 {
			r.Fatalf("expected at least 3 actions, got %v", got)
		}
		// Edit, Export, Delete always close the menu, in that order.
		tail := got[n-3:]
		if tail[0] != ActionEdit || tail[1] != ActionExport || tail[2] != ActionDelete {
			r.Fatalf("unexpected tail %v", tail)
		}

		switch status {
		case StatusPending, StatusInProgress:
			if n != 4 || got[0] != ActionAbort {
				r.Fatalf("expected abort first for %q, got %v", status, got)
			}
		case StatusAbort:
			if n != 4 || got[0] != ActionResume {
				r.Fatalf("expected resume first, got %v", got)
			}
		default:
			if n != 3 {
				r.Fatalf("expected minimal set for %q, got %v", status, got)
			}
		}

		for _, a := range actions {
			s, ok := a.Effect.(Submit)
			if !ok {
				continue
			}
			if s.Submission.TestRunID != run.TestRunID {
				r.Fatalf("submission targets %d, want %d", s.Submission.TestRunID, run.TestRunID)
			}
			if u := s.Submission.TestRunUpdate; u != nil {
				if u.Title != run.Title || u.Description != run.Description {
					r.Fatalf("update must preserve title and description: %+v", u)
				}
			}
		}
	})
}

func TestDescribe(t *testing.T) {
	views := Describe(Actions(TestRun{TestRunID: 5, Status: StatusAbort, Title: "t"}))
	require.Len(t, views, 4)

	assert.Equal(t, "submit", views[0].Effect)
	require.NotNil(t, views[0].Submission)
	assert.Equal(t, StatusPending, views[0].Submission.TestRunUpdate.Status)

	assert.Equal(t, "navigate", views[1].Effect)
	assert.Equal(t, "edit", views[1].To)
	assert.Equal(t, "openExport", views[2].Effect)
	assert.Equal(t, DeleteConfirmation, views[3].Confirm)
	assert.Equal(t, VariantDanger, views[3].Variant)
}
