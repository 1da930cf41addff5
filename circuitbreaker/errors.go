package circuitbreaker

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrOpen matches any *OpenError via errors.Is.
	ErrOpen = errors.New("circuit breaker is open")

	ErrInvalidThreshold = errors.New("failure threshold must be at least 1")
	ErrInvalidTimeout   = errors.New("recovery timeout must be positive")

	ErrClassifierString  = errors.New("expected failure classifier must not be a string")
	ErrClassifierInvalid = errors.New("expected failure classifier must be an error, a []error, or a func(error) bool")
)

// OpenError is returned when the guard rejects a call and no fallback is
// configured. It carries a snapshot of the breaker at rejection time.
type OpenError struct {
	Name             string
	OpenUntil        time.Time
	FailureCount     int
	RemainingSeconds int
	LastFailure      error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("circuit %q open until %s (%d failures, %d sec remaining) (last failure: %v)",
		e.Name,
		e.OpenUntil.Format(time.RFC3339),
		e.FailureCount,
		e.RemainingSeconds,
		e.LastFailure,
	)
}

func (e *OpenError) Is(target error) bool {
	return target == ErrOpen
}

// newOpenError snapshots the breaker. Callers must hold cb.mutex.
func (cb *CircuitBreaker) newOpenError() *OpenError {
	return &OpenError{
		Name:             cb.name,
		OpenUntil:        cb.openUntil(),
		FailureCount:     cb.failureCount,
		RemainingSeconds: cb.openRemaining(),
		LastFailure:      cb.lastFailure,
	}
}
