package operations

import (
	"sync"
	"time"
)

// RunStatus represents the overall run status
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// RunState is the state of one pipeline run, keyed by its trace id
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	Error error `json:"-"`
}

// NewRunState creates a pending run
func NewRunState(id string) *RunState {
	return &RunState{
		ID:        id,
		Status:    RunStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
	}
}

// Start marks the run as running
func (p *RunState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = RunStatusRunning
	p.EndTime = nil
	p.Error = nil
}

// Complete marks the run as completed
func (p *RunState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = RunStatusCompleted
}

// Fail marks the run as failed
func (p *RunState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = RunStatusFailed
	p.Error = err
}

// Cancel marks the run as cancelled
func (p *RunState) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = RunStatusCancelled
}

// GetStep returns the state of a specific Step
func (p *RunState) GetStep(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStep updates the state of a specific Step
func (p *RunState) SetStep(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Steps[stepID] = state
}

// GetStatus returns the run status
func (p *RunState) GetStatus() RunStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}
