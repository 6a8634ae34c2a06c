package game

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel failures. ErrNotPaused and ErrNoWaitingPlayer indicate adapter or
// engine bugs and abort the decision call that hits them.
var (
	ErrNotPaused       = errors.New("state is not paused for input")
	ErrNoWaitingPlayer = errors.New("no waiting player")

	// ErrDeferred is returned by a Strategy that declines to answer a
	// request, leaving the driver paused at the decision point.
	ErrDeferred = errors.New("decision deferred")
)

// InvalidActionError is a driver's rejection of an action. Legal-action
// filtering swallows it; anywhere else it is fatal, since the engine only
// replays actions it already validated.
type InvalidActionError struct {
	Reason string
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("invalid action: %s", e.Reason)
}

// Invalid builds an *InvalidActionError.
func Invalid(format string, args ...interface{}) error {
	return &InvalidActionError{Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidAction reports whether err is an action rejection, unwrapping any
// context added along the way.
func IsInvalidAction(err error) bool {
	_, ok := errors.Cause(err).(*InvalidActionError)
	return ok
}

// IsDeferred reports whether err is a strategy deferral.
func IsDeferred(err error) bool {
	return errors.Cause(err) == ErrDeferred
}
