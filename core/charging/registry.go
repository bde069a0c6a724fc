package charging

import (
	"errors"
	"fmt"

	"github.com/kilianp07/vesselpower/core/logger"
)

var (
	// ErrDuplicateProducer is returned when a producer name is already taken.
	ErrDuplicateProducer = errors.New("duplicate producer")
	// ErrInitialized is returned when registering after initialization.
	ErrInitialized = errors.New("producer registry already initialized")
)

// Registry holds the producers of one vessel. Insertion order is priority
// order within each group.
type Registry struct {
	renewable    []Producer
	nonRenewable []Producer
	byName       map[string]Producer
	frozen       bool
	log          logger.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{byName: make(map[string]Producer), log: logger.OrNop(log)}
}

// Register adds p to its group. Duplicate names are rejected and logged.
func (r *Registry) Register(p Producer, source string) error {
	if p == nil {
		r.log.Warnf("producer from %q was nil", source)
		return fmt.Errorf("producer from %q is nil", source)
	}
	if r.frozen {
		r.log.Warnf("producer %q from %q registered after initialization", p.Name(), source)
		return fmt.Errorf("%w: %s", ErrInitialized, p.Name())
	}
	name := p.Name()
	if _, ok := r.byName[name]; ok {
		r.log.Warnf("duplicate producer %q from %q was blocked", name, source)
		return fmt.Errorf("%w: %s", ErrDuplicateProducer, name)
	}
	r.byName[name] = p
	if p.Renewable() {
		r.renewable = append(r.renewable, p)
	} else {
		r.nonRenewable = append(r.nonRenewable, p)
	}
	r.log.Debugf("registered producer %q from %s", name, source)
	return nil
}

// Freeze stops further registration.
func (r *Registry) Freeze() { r.frozen = true }

// Get returns the producer registered under name.
func (r *Registry) Get(name string) (Producer, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Len returns the number of registered producers.
func (r *Registry) Len() int { return len(r.renewable) + len(r.nonRenewable) }

// All returns renewables followed by non-renewables.
func (r *Registry) All() []Producer {
	out := make([]Producer, 0, r.Len())
	out = append(out, r.renewable...)
	return append(out, r.nonRenewable...)
}

// Find returns the producer registered under name when it has type T.
func Find[T Producer](r *Registry, name string) (T, bool) {
	var zero T
	p, ok := r.byName[name]
	if !ok {
		return zero, false
	}
	t, ok := p.(T)
	return t, ok
}
