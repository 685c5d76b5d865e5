package benders

import "fmt"

type State int

const (
	StateInit State = iota
	StateSolvingMaster
	StateSolvingSubproblem
	StateGeneratingCuts
	StateCheckConvergence
	StateConverged
	StateTimeLimitExceeded
	StateIterationLimitExceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateSolvingMaster:
		return "SOLVING_MASTER"
	case StateSolvingSubproblem:
		return "SOLVING_SUBPROBLEM"
	case StateGeneratingCuts:
		return "GENERATING_CUTS"
	case StateCheckConvergence:
		return "CHECK_CONVERGENCE"
	case StateConverged:
		return "CONVERGED"
	case StateTimeLimitExceeded:
		return "TIME_LIMIT_EXCEEDED"
	case StateIterationLimitExceeded:
		return "ITERATION_LIMIT_EXCEEDED"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether the controller loop stops in s.
func (s State) Terminal() bool {
	switch s {
	case StateConverged, StateTimeLimitExceeded, StateIterationLimitExceeded, StateFailed:
		return true
	default:
		return false
	}
}

func isAllowedTransition(from, to State) bool {
	if to == StateFailed {
		return !from.Terminal()
	}
	switch from {
	case StateInit:
		return to == StateSolvingMaster || to == StateTimeLimitExceeded
	case StateSolvingMaster:
		return to == StateSolvingSubproblem || to == StateTimeLimitExceeded
	case StateSolvingSubproblem:
		return to == StateGeneratingCuts || to == StateTimeLimitExceeded
	case StateGeneratingCuts:
		return to == StateCheckConvergence
	case StateCheckConvergence:
		return to == StateSolvingMaster || to == StateConverged ||
			to == StateTimeLimitExceeded || to == StateIterationLimitExceeded
	default:
		return false
	}
}
