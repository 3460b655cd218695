package operations

import (
	"fmt"
	"sync"
)

// Registry manages registered pipeline steps
type Registry struct {
	mu    sync.RWMutex
	steps map[string]Step
	order []string // Maintains registration order
}

// NewRegistry creates an empty step registry
func NewRegistry() *Registry {
	return &Registry{
		steps: make(map[string]Step),
		order: make([]string, 0),
	}
}

// Register adds a Step to the registry
func (r *Registry) Register(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil step")
	}

	id := step.ID()
	if id == "" {
		return fmt.Errorf("step ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.steps[id]; exists {
		return fmt.Errorf("step with ID %s already registered", id)
	}

	r.steps[id] = step
	r.order = append(r.order, id)
	return nil
}

// Get retrieves a Step by ID
func (r *Registry) Get(id string) (Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	step, exists := r.steps[id]
	if !exists {
		return nil, NewNotFoundError(id)
	}
	return step, nil
}

// ListIDs returns all registered Step IDs in registration order
func (r *Registry) ListIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// GetDependencyOrder returns every step ordered by dependencies, ties
// broken by registration order.
func (r *Registry) GetDependencyOrder() ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.orderLocked(r.order)
}

// Resolve returns the step with its transitive dependencies, dependencies first
func (r *Registry) Resolve(id string) ([]Step, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.steps[id]; !ok {
		return nil, NewNotFoundError(id)
	}

	needed := map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if needed[cur] {
			continue
		}
		step, ok := r.steps[cur]
		if !ok {
			return nil, NewDependencyError(id, fmt.Sprintf("depends on non-existent step %s", cur))
		}
		needed[cur] = true
		stack = append(stack, step.Dependencies()...)
	}

	subset := make([]string, 0, len(needed))
	for _, sid := range r.order {
		if needed[sid] {
			subset = append(subset, sid)
		}
	}
	return r.orderLocked(subset)
}

// orderLocked topologically sorts ids using Kahn's algorithm
func (r *Registry) orderLocked(ids []string) ([]Step, error) {
	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}

	graph := make(map[string][]string, len(ids))
	inDegree := make(map[string]int, len(ids))
	for _, id := range ids {
		for _, dep := range r.steps[id].Dependencies() {
			if _, exists := r.steps[dep]; !exists {
				return nil, NewDependencyError(id, fmt.Sprintf("depends on non-existent step %s", dep))
			}
			if !inSet[dep] {
				continue
			}
			graph[dep] = append(graph[dep], id)
			inDegree[id]++
		}
	}

	position := make(map[string]int, len(ids))
	for i, id := range ids {
		position[id] = i
	}

	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	ordered := make([]Step, 0, len(ids))
	for len(queue) > 0 {
		// Pick the earliest registered of the ready steps
		best := 0
		for i := range queue {
			if position[queue[i]] < position[queue[best]] {
				best = i
			}
		}
		current := queue[best]
		queue = append(queue[:best], queue[best+1:]...)

		ordered = append(ordered, r.steps[current])
		for _, dependent := range graph[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(ordered) != len(ids) {
		return nil, NewDependencyError("", "dependency cycle detected")
	}
	return ordered, nil
}
