package circuitbreaker

import (
	"iter"
	"sync"
)

// Registry is a named lookup table of breakers. Entries are added for the
// lifetime of the process and never removed; registering a name twice
// overwrites the previous entry.
type Registry struct {
	mutex    sync.RWMutex
	breakers map[string]*CircuitBreaker
}

func NewRegistry() *Registry {
	return &Registry{
		breakers: make(map[string]*CircuitBreaker),
	}
}

// Register inserts the breaker under its name, last write wins.
func (r *Registry) Register(cb *CircuitBreaker) {
	name := cb.Name()

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.breakers[name] = cb
}

// Get returns the breaker registered under name, or nil.
func (r *Registry) Get(name string) *CircuitBreaker {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.breakers[name]
}

// All returns a snapshot of every registered breaker.
func (r *Registry) All() []*CircuitBreaker {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	all := make([]*CircuitBreaker, 0, len(r.breakers))
	for _, cb := range r.breakers {
		all = append(all, cb)
	}
	return all
}

// Open yields the breakers whose effective state is open at iteration time.
func (r *Registry) Open() iter.Seq[*CircuitBreaker] {
	return func(yield func(*CircuitBreaker) bool) {
		for _, cb := range r.All() {
			if cb.Opened() {
				if !yield(cb) {
					return
				}
			}
		}
	}
}

// Closed yields the breakers whose effective state is closed at iteration
// time.
func (r *Registry) Closed() iter.Seq[*CircuitBreaker] {
	return func(yield func(*CircuitBreaker) bool) {
		for _, cb := range r.All() {
			if cb.Closed() {
				if !yield(cb) {
					return
				}
			}
		}
	}
}

// AllClosed reports whether no registered breaker is effectively open.
// Computed fresh on every call, nothing is cached.
func (r *Registry) AllClosed() bool {
	for range r.Open() {
		return false
	}
	return true
}

// The process-wide registry. Breakers land here unless constructed with
// WithRegistry. Empty at startup, no teardown.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Get looks up a breaker in the process-wide registry.
func Get(name string) *CircuitBreaker {
	return defaultRegistry.Get(name)
}

// AllBreakers lists every breaker in the process-wide registry.
func AllBreakers() []*CircuitBreaker {
	return defaultRegistry.All()
}

// OpenBreakers yields the effectively open breakers in the process-wide
// registry.
func OpenBreakers() iter.Seq[*CircuitBreaker] {
	return defaultRegistry.Open()
}

// ClosedBreakers yields the effectively closed breakers in the process-wide
// registry.
func ClosedBreakers() iter.Seq[*CircuitBreaker] {
	return defaultRegistry.Closed()
}

// AllClosed reports whether no breaker in the process-wide registry is
// effectively open.
func AllClosed() bool {
	return defaultRegistry.AllClosed()
}
