package action

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// ServeHTTP handles POST /test-runs/{projectShortCode}/{testRunNumber}.
// Success is a 302 to the project's test run list.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	res, err := h.Handle(r.Context(), mux.Vars(r)["projectShortCode"], r.Body)
	if err != nil {
		WriteError(w, err)
		return
	}
	http.Redirect(w, r, res.Redirect, http.StatusFound)
}

// WriteError renders a ResponseError as its status and message, anything
// else as a bare 500.
func WriteError(w http.ResponseWriter, err error) {
	var re *ResponseError
	if errors.As(err, &re) {
		http.Error(w, re.Message, re.Status)
		return
	}
	actionLog.Error("action failed", "err", err)
	http.Error(w, MsgUnexpected, http.StatusInternalServerError)
}
