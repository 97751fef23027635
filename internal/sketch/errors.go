package sketch

import (
	"errors"
	"fmt"
)

// ErrMalformedEvent is returned for touch events that carry no touch point
// where one is required.
var ErrMalformedEvent = errors.New("sketch: malformed event")

// InvocationError reports a misuse of the widget command interface.
type InvocationError struct {
	Command string
	Reason  string
}

func (e *InvocationError) Error() string {
	if e.Command == "" {
		return "sketch: " + e.Reason
	}
	return fmt.Sprintf("sketch: %s: %q", e.Reason, e.Command)
}

// UnrecognizedToolError is returned when an action or setting names a tool
// that has no registered renderer.
type UnrecognizedToolError struct {
	Tool string
}

func (e *UnrecognizedToolError) Error() string {
	return fmt.Sprintf("sketch: unrecognized tool %q", e.Tool)
}
