package event

import "fmt"

// InvalidOperationError is the single failure kind raised by the calendar
// engine: a synchronous validation error carrying a human-readable reason.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return "invalid operation: " + e.Reason
}

// Invalidf builds an InvalidOperationError with a formatted reason.
func Invalidf(format string, args ...any) error {
	return &InvalidOperationError{Reason: fmt.Sprintf(format, args...)}
}
