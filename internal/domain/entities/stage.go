package entities

// Stage is a step of the per-request prediction pipeline.
type Stage int

// Pipeline stages in the order they are reached.
const (
	StageReceived Stage = iota
	StageValidated
	StageTokenized
	StageInferred
	StagePooled
	StageCompleted
	StageErrored
)

var stageNames = [...]string{
	StageReceived:  "Received",
	StageValidated: "Validated",
	StageTokenized: "Tokenized",
	StageInferred:  "Inferred",
	StagePooled:    "Pooled",
	StageCompleted: "Completed",
	StageErrored:   "Errored",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "Unknown"
	}
	return stageNames[s]
}

// IsTerminal reports whether no further transition is possible.
func (s Stage) IsTerminal() bool {
	return s == StageCompleted || s == StageErrored
}

// CanAdvanceTo reports whether next is a legal transition from s.
// Stages only move forward one step at a time; any non-terminal stage may
// fall into StageErrored.
func (s Stage) CanAdvanceTo(next Stage) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StageErrored {
		return true
	}
	return next == s+1
}
