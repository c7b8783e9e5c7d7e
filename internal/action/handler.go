// Package action performs the mutation a test run settings menu submits and
// tells the caller where to go next.
package action

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cherry/cherry-cli/internal/logging"
	"github.com/cherry/cherry-cli/internal/testrun"
)

const (
	MsgShortCodeRequired = "Project short code is required"
	MsgInvalidRequest    = "Invalid request"
	MsgUnexpected        = "Unexpected error"
)

var actionLog = logging.New("action")

// Mutator is the write side of the REST API. api.Client satisfies it.
type Mutator interface {
	UpdateTestRun(ctx context.Context, testRunID int64, update testrun.UpdateTestRun) error
	DeleteTestRun(ctx context.Context, testRunID int64) error
}

// ResponseError is a client error the action rejects before any network call.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

func badRequest(msg string) *ResponseError {
	return &ResponseError{Status: http.StatusBadRequest, Message: msg}
}

// IsBadRequest reports whether err is a 400 ResponseError.
func IsBadRequest(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Status == http.StatusBadRequest
}

// Result tells the caller where to navigate after a successful action.
type Result struct {
	Redirect string
}

type Handler struct {
	API Mutator
}

func NewHandler(api Mutator) *Handler {
	return &Handler{API: api}
}

// Handle decodes a JSON submission and dispatches it. The short code is
// checked before the body is read.
func (h *Handler) Handle(ctx context.Context, projectShortCode string, body io.Reader) (Result, error) {
	if strings.TrimSpace(projectShortCode) == "" {
		return Result{}, badRequest(MsgShortCodeRequired)
	}
	if body == nil {
		return Result{}, badRequest(MsgInvalidRequest)
	}
	var sub testrun.Submission
	if err := json.NewDecoder(body).Decode(&sub); err != nil {
		actionLog.Debug("undecodable submission", "err", err)
		return Result{}, badRequest(MsgInvalidRequest)
	}
	return h.Dispatch(ctx, projectShortCode, sub)
}

// Dispatch performs exactly one PUT or DELETE for a valid submission.
// Downstream errors are returned wrapped and never retried.
func (h *Handler) Dispatch(ctx context.Context, projectShortCode string, sub testrun.Submission) (Result, error) {
	shortCode := strings.TrimSpace(projectShortCode)
	if shortCode == "" {
		return Result{}, badRequest(MsgShortCodeRequired)
	}
	if sub.TestRunID <= 0 {
		return Result{}, badRequest(MsgInvalidRequest)
	}

	switch sub.Intent {
	case testrun.IntentUpdate:
		if sub.TestRunUpdate == nil || !sub.TestRunUpdate.Status.Known() {
			return Result{}, badRequest(MsgInvalidRequest)
		}
		if err := h.API.UpdateTestRun(ctx, sub.TestRunID, *sub.TestRunUpdate); err != nil {
			return Result{}, fmt.Errorf("updating test run %d: %w", sub.TestRunID, err)
		}
		actionLog.Info("test run updated", "project", shortCode, "testRunID", sub.TestRunID, "status", sub.TestRunUpdate.Status)
	case testrun.IntentDelete:
		if err := h.API.DeleteTestRun(ctx, sub.TestRunID); err != nil {
			return Result{}, fmt.Errorf("deleting test run %d: %w", sub.TestRunID, err)
		}
		actionLog.Info("test run deleted", "project", shortCode, "testRunID", sub.TestRunID)
	default:
		return Result{}, badRequest(MsgInvalidRequest)
	}

	return Result{Redirect: testrun.ProjectTestRunsRoute(shortCode)}, nil
}
