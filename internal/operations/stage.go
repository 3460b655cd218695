package operations

import (
	"context"
	"sync"
	"time"
)

// Step represents a single step of the pipeline
type Step interface {
	// ID returns the unique identifier for this Step
	ID() string

	// Name returns the human-readable name for this Step
	Name() string

	// Dependencies returns the IDs of steps that must complete before this Step
	Dependencies() []string

	// Execute runs the Step and returns how many rows it produced
	Execute(ctx context.Context, env *Env) (int, error)
}

// StepStatus represents the current status of a Step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
	StepStatusSkipped   StepStatus = "skipped"
)

// StepState represents the runtime state of a Step
type StepState struct {
	mu        sync.RWMutex
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Status    StepStatus `json:"status"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Rows      int        `json:"rows"`
	Message   string     `json:"message,omitempty"`
	Error     error      `json:"-"`
}

// NewStepState creates a new Step state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:     id,
		Name:   name,
		Status: StepStatusPending,
	}
}

// Start marks the Step as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.EndTime = nil
	s.Status = StepStatusActive
	s.Error = nil
}

// Complete marks the Step as completed with the number of rows it produced
func (s *StepState) Complete(rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
	s.Rows = rows
}

// Fail marks the Step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// Skip marks the Step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusSkipped
	s.Message = reason
}

// GetStatus returns the current status
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Done reports whether the step finished and need not run again
func (s *StepState) Done() bool {
	status := s.GetStatus()
	return status == StepStatusCompleted || status == StepStatusSkipped
}

// Duration returns the duration of the Step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// StepFunc is the body of a step
type StepFunc func(ctx context.Context, env *Env) (int, error)

// BaseStep implements Step around a function
type BaseStep struct {
	id           string
	name         string
	dependencies []string
	run          StepFunc
}

// NewStep creates a step from its body
func NewStep(id, name string, dependencies []string, run StepFunc) *BaseStep {
	if dependencies == nil {
		dependencies = []string{}
	}
	return &BaseStep{
		id:           id,
		name:         name,
		dependencies: dependencies,
		run:          run,
	}
}

// ID returns the Step ID
func (b *BaseStep) ID() string {
	return b.id
}

// Name returns the Step name
func (b *BaseStep) Name() string {
	return b.name
}

// Dependencies returns the Step dependencies
func (b *BaseStep) Dependencies() []string {
	return b.dependencies
}

// Execute runs the step body
func (b *BaseStep) Execute(ctx context.Context, env *Env) (int, error) {
	if b.run == nil {
		return 0, nil
	}
	return b.run(ctx, env)
}
