package testrun

// ActionView is the wire form of an Action, used by the JSON outputs.
type ActionView struct {
	Kind       ActionKind  `json:"kind" yaml:"kind"`
	Label      string      `json:"label" yaml:"label"`
	Variant    Variant     `json:"variant,omitempty" yaml:"variant,omitempty"`
	Effect     string      `json:"effect" yaml:"effect"`
	Confirm    string      `json:"confirm,omitempty" yaml:"confirm,omitempty"`
	To         string      `json:"to,omitempty" yaml:"to,omitempty"`
	Submission *Submission `json:"submission,omitempty" yaml:"submission,omitempty"`
}

func Describe(actions []Action) []ActionView {
	out := make([]ActionView, 0, len(actions))
	for _, a := range actions {
		v := ActionView{Kind: a.Kind, Label: a.Label, Variant: a.Variant}
		switch e := a.Effect.(type) {
		case Submit:
			sub := e.Submission
			v.Effect = "submit"
			v.Confirm = e.Confirm
			v.Submission = &sub
		case Navigate:
			v.Effect = "navigate"
			v.To = e.To
		case OpenExport:
			v.Effect = "openExport"
		}
		out = append(out, v)
	}
	return out
}
