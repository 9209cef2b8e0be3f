package dispatch

import (
	"errors"

	"github.com/peternagy/dbquerytool/internal/core"
	"github.com/peternagy/dbquerytool/internal/types"
)

// State is the lifecycle position of one request.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateValidationFailed
	StateExecuting
	StateSucceeded
	StateDriverFailed
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateValidating:       "validating",
	StateValidationFailed: "validation_failed",
	StateExecuting:        "executing",
	StateSucceeded:        "succeeded",
	StateDriverFailed:     "driver_failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transition follows s.
func (s State) Terminal() bool {
	return s == StateValidationFailed || s == StateSucceeded || s == StateDriverFailed
}

// Observer is told about every state a request enters, in order.
type Observer func(req types.QueryRequest, state State)

// StateOf maps the error returned by Execute to the request's terminal state.
func StateOf(err error) State {
	if err == nil {
		return StateSucceeded
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		return StateValidationFailed
	}
	return StateDriverFailed
}
