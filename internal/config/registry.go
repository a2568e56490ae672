package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yashas004/persona/pkg/provider/coach"
)

// ErrCoachNotRegistered is returned by [Registry.CreateCoach] when no
// factory has been registered under the requested backend name.
var ErrCoachNotRegistered = errors.New("config: coach backend not registered")

// CoachFactory constructs a coach client from its configuration entry.
type CoachFactory func(entry CoachEntry, cfg CoachConfig) (coach.Client, error)

// Registry maps coach backend names to their constructor functions. It is
// safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	coach map[string]CoachFactory
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{coach: make(map[string]CoachFactory)}
}

// RegisterCoach registers a coach backend factory under name. Subsequent
// calls with the same name overwrite the previous registration.
func (r *Registry) RegisterCoach(name string, factory CoachFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coach[name] = factory
}

// CreateCoach builds the backend selected by entry.Name. cfg carries the
// shared settings (timeout) factories may need.
func (r *Registry) CreateCoach(entry CoachEntry, cfg CoachConfig) (coach.Client, error) {
	r.mu.RLock()
	factory, ok := r.coach[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCoachNotRegistered, entry.Name)
	}
	client, err := factory(entry, cfg)
	if err != nil {
		return nil, fmt.Errorf("config: create coach %q: %w", entry.Name, err)
	}
	return client, nil
}

// CoachNames returns the registered backend names.
func (r *Registry) CoachNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.coach))
	for name := range r.coach {
		names = append(names, name)
	}
	return names
}
