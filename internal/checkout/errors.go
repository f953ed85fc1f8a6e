package checkout

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for session lookup and lifecycle.
var (
	ErrSessionNotFound = errors.New("checkout session not found")
	ErrSessionClosed   = errors.New("checkout session already closed")
	ErrVersionConflict = errors.New("checkout session modified concurrently")
)

// ValidationError is a local form failure. It blocks the step before any
// backend call and its message names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// StepError indicates an operation issued against the wrong step.
type StepError struct {
	Current Step
	Wanted  Step
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s required, session is on step %s", e.Wanted, e.Current)
}

// AvailabilityError blocks order submission when no inventory unit
// matches the selection. It is a business-rule gate, not a backend error.
type AvailabilityError struct {
	VariantName string
	ColorName   string
}

func (e *AvailabilityError) Error() string {
	if e.ColorName != "" {
		return fmt.Sprintf("no %s units of %s are currently in stock, please contact our staff to order one",
			e.ColorName, e.VariantName)
	}
	return fmt.Sprintf("no units of %s are currently in stock, please contact our staff to order one",
		e.VariantName)
}
