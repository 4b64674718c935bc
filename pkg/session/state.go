package session

import "fmt"

// State is the editor session lifecycle state.
type State int

const (
	Idle State = iota
	Resolving
	Hydrating
	Ready
	Autosaving
	Saving
	Error
)

var stateNames = [...]string{
	Idle:       "idle",
	Resolving:  "resolving",
	Hydrating:  "hydrating",
	Ready:      "ready",
	Autosaving: "autosaving",
	Saving:     "saving",
	Error:      "error",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText renders the state name in snapshots.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// validTransitions is the transition table. Key is the current state,
// value the set of allowed targets.
var validTransitions = map[State]map[State]bool{
	Idle:       {Resolving: true},
	Resolving:  {Hydrating: true, Error: true, Idle: true},
	Hydrating:  {Ready: true, Error: true, Idle: true},
	Ready:      {Autosaving: true, Saving: true, Idle: true},
	Autosaving: {Autosaving: true, Ready: true, Saving: true, Error: true, Idle: true},
	Saving:     {Ready: true, Error: true, Idle: true},
	Error:      {Ready: true, Autosaving: true, Saving: true, Idle: true},
}

// CanTransition reports whether from -> to is in the table.
func CanTransition(from, to State) bool {
	return validTransitions[from][to]
}

// TransitionError reports a rejected state change.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// acceptsEdits reports whether user edits may schedule an autosave.
func (s State) acceptsEdits() bool {
	return s == Ready || s == Autosaving || s == Error
}
