package testrun

// Intent selects which mutation the action handler performs.
type Intent string

const (
	IntentUpdate Intent = "update"
	IntentDelete Intent = "delete"
)

// Submission is the JSON body posted to the test run action route.
type Submission struct {
	Intent        Intent         `json:"intent"`
	TestRunID     int64          `json:"testRunID"`
	TestRunUpdate *UpdateTestRun `json:"testRunUpdate,omitempty"`
}

type ActionKind string

const (
	ActionAbort  ActionKind = "abort"
	ActionResume ActionKind = "resume"
	ActionEdit   ActionKind = "edit"
	ActionExport ActionKind = "export"
	ActionDelete ActionKind = "delete"
)

type Variant string

const (
	VariantDefault Variant = ""
	VariantDanger  Variant = "danger"
)

// Effect is what selecting an action does. It is one of Submit, Navigate or
// OpenExport.
type Effect interface {
	isEffect()
}

// Submit posts Submission to the action route. When Confirm is non-empty the
// caller must ask the user before submitting.
type Submit struct {
	Submission Submission
	Confirm    string
}

// Navigate moves to a route relative to the current test run.
type Navigate struct {
	To string
}

// OpenExport shows the export options modal.
type OpenExport struct{}

func (Submit) isEffect()     {}
func (Navigate) isEffect()   {}
func (OpenExport) isEffect() {}

type Action struct {
	Kind    ActionKind
	Label   string
	Variant Variant
	Effect  Effect
}

const DeleteConfirmation = "Are you sure you want to delete this test run? This action cannot be undone."

// Actions returns the ordered settings menu for run. Pending and in-progress
// runs can be aborted, aborted runs can be resumed; every run can be edited,
// exported and deleted. Unrecognized statuses get the same set as complete.
func Actions(run TestRun) []Action {
	edit := Action{Kind: ActionEdit, Label: "Edit test run", Effect: Navigate{To: "edit"}}
	export := Action{Kind: ActionExport, Label: "Export options", Effect: OpenExport{}}
	del := Action{
		Kind:    ActionDelete,
		Label:   "Delete test run",
		Variant: VariantDanger,
		Effect: Submit{
			Submission: Submission{Intent: IntentDelete, TestRunID: run.TestRunID},
			Confirm:    DeleteConfirmation,
		},
	}

	switch run.Status {
	case StatusPending, StatusInProgress:
		return []Action{statusChange(run, ActionAbort, "Abort test run", StatusAbort), edit, export, del}
	case StatusAbort:
		return []Action{statusChange(run, ActionResume, "Resume test run", StatusPending), edit, export, del}
	default:
		return []Action{edit, export, del}
	}
}

func statusChange(run TestRun, kind ActionKind, label string, to Status) Action {
	return Action{
		Kind:  kind,
		Label: label,
		Effect: Submit{Submission: Submission{
			Intent:    IntentUpdate,
			TestRunID: run.TestRunID,
			TestRunUpdate: &UpdateTestRun{
				Title:       run.Title,
				Description: run.Description,
				Status:      to,
			},
		}},
	}
}

// Find returns the action of the given kind, if the menu offers it.
func Find(actions []Action, kind ActionKind) (Action, bool) {
	for _, a := range actions {
		if a.Kind == kind {
			return a, true
		}
	}
	return Action{}, false
}
