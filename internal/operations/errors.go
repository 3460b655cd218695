package operations

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of step error
type ErrorType string

const (
	ErrorTypeDependency   ErrorType = "dependency"
	ErrorTypeExecution    ErrorType = "execution"
	ErrorTypeCancellation ErrorType = "cancellation"
	ErrorTypeNotFound     ErrorType = "not_found"
)

// StepError wraps a failure with the step it happened in
type StepError struct {
	Type    ErrorType
	Step    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e *StepError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Type, e.Step, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	return e.Cause
}

// NewExecutionError reports a failed step body
func NewExecutionError(step string, cause error) *StepError {
	return &StepError{Type: ErrorTypeExecution, Step: step, Message: "step execution failed", Cause: cause}
}

// NewDependencyError reports a dependency problem such as a cycle
func NewDependencyError(step, message string) *StepError {
	return &StepError{Type: ErrorTypeDependency, Step: step, Message: message}
}

// NewCancellationError reports a run stopped by its context
func NewCancellationError(step string, cause error) *StepError {
	return &StepError{Type: ErrorTypeCancellation, Step: step, Message: "run cancelled", Cause: cause}
}

// NewNotFoundError reports an unknown step ID
func NewNotFoundError(step string) *StepError {
	return &StepError{Type: ErrorTypeNotFound, Step: step, Message: "step not registered"}
}

// IsStepError reports whether err carries a StepError of the given type
func IsStepError(err error, t ErrorType) bool {
	var se *StepError
	return errors.As(err, &se) && se.Type == t
}

// skipError lets a step end as skipped instead of failed
type skipError struct {
	reason string
}

func (e *skipError) Error() string { return e.reason }

// SkipStep is returned by a step body that has nothing to do
func SkipStep(reason string) error {
	return &skipError{reason: reason}
}
