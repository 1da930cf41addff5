package circuitbreaker

import (
	"time"

	"github.com/jonboulle/clockwork"
)

type settings struct {
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	expectedFailure  any
	fallback         Fallback
	clock            clockwork.Clock
	registry         *Registry
}

// Option configures a CircuitBreaker.
type Option func(*settings)

// WithName sets the breaker name used for registration and lookup. Without
// it the name is derived from the first guarded operation.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithFailureThreshold sets how many consecutive classified failures open
// the circuit. Default is 5.
func WithFailureThreshold(n int) Option {
	return func(s *settings) {
		s.failureThreshold = n
	}
}

// WithRecoveryTimeout sets how long the circuit stays open before the next
// call is allowed through as a probe. Default is 30 seconds.
func WithRecoveryTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.recoveryTimeout = d
	}
}

// WithExpectedFailure sets the failure classifier. Accepts an error value,
// a slice of error values, or a predicate func(error) bool; see
// NewFailurePredicate. By default every non-nil error counts.
func WithExpectedFailure(classifier any) Option {
	return func(s *settings) {
		s.expectedFailure = classifier
	}
}

// WithFallback sets the operation invoked instead of the guarded one while
// the circuit rejects calls.
func WithFallback(fb Fallback) Option {
	return func(s *settings) {
		s.fallback = fb
	}
}

// WithClock sets the clock used for the recovery window. Useful for testing.
func WithClock(clock clockwork.Clock) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithRegistry registers the breaker in the given registry instead of the
// process-wide default.
func WithRegistry(r *Registry) Option {
	return func(s *settings) {
		s.registry = r
	}
}
