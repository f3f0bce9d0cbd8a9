package batch

import "fmt"

// FileState is the lifecycle position of one input file within a run.
type FileState int

// File lifecycle states.
const (
	StatePending FileState = iota
	StateLoaded
	StateReduced
	StateSaved
	StateSaveFailed
	StateErrored
	StateLogged
)

func (s FileState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	case StateReduced:
		return "reduced"
	case StateSaved:
		return "saved"
	case StateSaveFailed:
		return "save_failed"
	case StateErrored:
		return "errored"
	case StateLogged:
		return "logged"
	default:
		return fmt.Sprintf("FileState(%d)", int(s))
	}
}

// IsTerminal reports whether no further transition is possible.
func (s FileState) IsTerminal() bool {
	return s == StateLogged
}

// fileTracker holds the state of a single file.
type fileTracker struct {
	name  string
	state FileState
}

func newFileTracker(name string) *fileTracker {
	return &fileTracker{name: name, state: StatePending}
}

// to performs a validated transition.
func (t *fileTracker) to(next FileState) error {
	if !isAllowedTransition(t.state, next) {
		return fmt.Errorf("disallowed transition for %q: %s -> %s", t.name, t.state, next)
	}
	t.state = next
	return nil
}

func isAllowedTransition(from, to FileState) bool {
	switch from {
	case StatePending:
		return to == StateLoaded || to == StateErrored
	case StateLoaded:
		return to == StateReduced || to == StateErrored
	case StateReduced:
		return to == StateSaved || to == StateSaveFailed || to == StateErrored
	case StateSaved, StateSaveFailed, StateErrored:
		return to == StateLogged
	default:
		return false
	}
}
