// Package process answers one question for the lock: is the process that
// wrote a lock file still running?
//
// The answer is three-valued. Callers that may delete shared state on a Dead
// verdict must treat Unknown like Alive.
package process

import "strconv"

// State is the liveness of a process identifier.
type State int

const (
	// Unknown means the platform query failed in an unexpected way.
	Unknown State = iota
	// Alive means a process with the identifier exists, whether or not we may inspect it.
	Alive
	// Dead means no process with the identifier exists.
	Dead
)

func (s State) String() string {
	switch s {
	case Alive:
		return "alive"
	case Dead:
		return "dead"
	case Unknown:
		return "unknown"
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Checker reports the liveness of a process identifier.
type Checker interface {
	State(pid int) State
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(pid int) State

// State calls f(pid).
func (f CheckerFunc) State(pid int) State {
	return f(pid)
}

type systemChecker struct{}

func (systemChecker) State(pid int) State {
	if pid <= 0 {
		return Dead
	}
	return state(pid)
}

// Default returns the Checker for the running platform.
func Default() Checker {
	return systemChecker{}
}
