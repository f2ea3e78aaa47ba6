package pipeline

// State is the lifecycle position of a run. A run moves forward through the
// stage states in order and ends in Done, Cancelled or Failed.
type State int

const (
	StateLoaded State = iota
	StateImputed
	StateDeduplicated
	StateTypeCoerced
	StateTextNormalized
	StateOutlierTreated
	StateFeatureDerived
	StateDone
	StateCancelled
	StateFailed
)

var stateNames = [...]string{
	StateLoaded:         "loaded",
	StateImputed:        "imputed",
	StateDeduplicated:   "deduplicated",
	StateTypeCoerced:    "type-coerced",
	StateTextNormalized: "text-normalized",
	StateOutlierTreated: "outlier-treated",
	StateFeatureDerived: "feature-derived",
	StateDone:           "done",
	StateCancelled:      "cancelled",
	StateFailed:         "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled || s == StateFailed
}
