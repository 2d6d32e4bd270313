package rig

import "fmt"

// RunState is the engine's position in the run lifecycle.
type RunState int

const (
	StateNotStarted RunState = iota
	StateInitializing
	StateAborted
	StateRunning
	StateCleaningUp
	StatePassed
	StateFailed
)

func (s RunState) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateInitializing:
		return "INITIALIZING"
	case StateAborted:
		return "ABORTED"
	case StateRunning:
		return "RUNNING"
	case StateCleaningUp:
		return "CLEANING_UP"
	case StatePassed:
		return "PASSED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("RunState(%d)", int(s))
	}
}

// Terminal reports whether the run can no longer change state.
func (s RunState) Terminal() bool {
	return s == StateAborted || s == StatePassed || s == StateFailed
}
