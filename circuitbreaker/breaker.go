package circuitbreaker

import (
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const (
	DefaultFailureThreshold = 5
	DefaultRecoveryTimeout  = 30 * time.Second
)

// CircuitBreaker guards an unreliable operation. It counts consecutive
// classified failures and rejects calls while open. Recovery is time-gated:
// once the recovery timeout elapses the next call through the guard is the
// probe, there is no background timer.
type CircuitBreaker struct {
	mutex            sync.Mutex
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration
	failureCount     int
	openedAt         time.Time
	lastFailure      error
	isFailure        FailurePredicate
	fallback         Fallback
	rawState         State
	clock            clockwork.Clock
	registry         *Registry
	registered       bool
}

// Fallback is invoked in place of the guarded operation while the breaker
// rejects calls.
type Fallback func() (any, error)

// New constructs a circuit breaker. A breaker constructed with a name is
// registered immediately; an unnamed breaker derives its name from the first
// operation it guards and registers then.
func New(opts ...Option) (*CircuitBreaker, error) {
	s := settings{
		failureThreshold: DefaultFailureThreshold,
		recoveryTimeout:  DefaultRecoveryTimeout,
		clock:            clockwork.NewRealClock(),
		registry:         defaultRegistry,
	}
	for _, opt := range opts {
		opt(&s)
	}

	if s.failureThreshold < 1 {
		return nil, ErrInvalidThreshold
	}
	if s.recoveryTimeout <= 0 {
		return nil, ErrInvalidTimeout
	}

	predicate, err := NewFailurePredicate(s.expectedFailure)
	if err != nil {
		return nil, err
	}

	cb := &CircuitBreaker{
		name:             s.name,
		failureThreshold: s.failureThreshold,
		recoveryTimeout:  s.recoveryTimeout,
		isFailure:        predicate,
		fallback:         s.fallback,
		rawState:         StateClosed,
		clock:            s.clock,
		registry:         s.registry,
	}
	cb.openedAt = cb.clock.Now()

	if cb.name != "" {
		cb.registered = true
		cb.registry.Register(cb)
	}

	return cb, nil
}

// State returns the effective state. A stored-open breaker whose recovery
// timeout has elapsed reports StateHalfOpen; the stored state only changes
// on the outcome of an actual guarded call.
func (cb *CircuitBreaker) State() State {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.effectiveState()
}

// Closed reports whether the effective state is closed.
func (cb *CircuitBreaker) Closed() bool {
	return cb.State() == StateClosed
}

// Opened reports whether the effective state is open.
func (cb *CircuitBreaker) Opened() bool {
	return cb.State() == StateOpen
}

// Name returns the breaker name. Empty until the first guarded call if no
// name was configured.
func (cb *CircuitBreaker) Name() string {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.name
}

// FailureCount returns the number of consecutive classified failures since
// the last success.
func (cb *CircuitBreaker) FailureCount() int {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.failureCount
}

// LastFailure returns the most recently observed classified failure, or nil.
func (cb *CircuitBreaker) LastFailure() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.lastFailure
}

// Fallback returns the configured fallback, or nil.
func (cb *CircuitBreaker) Fallback() Fallback {
	return cb.fallback
}

// OpenRemaining returns how many seconds the breaker stays open. The value
// is rounded away from zero: a still-open breaker reports a pessimistic
// (rounded-up) wait, an already-eligible one a true negative value.
func (cb *CircuitBreaker) OpenRemaining() int {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.openRemaining()
}

// OpenUntil returns the wall-clock estimate of when the breaker becomes
// eligible to probe again.
func (cb *CircuitBreaker) OpenUntil() time.Time {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	return cb.openUntil()
}

func (cb *CircuitBreaker) effectiveState() State {
	if cb.rawState == StateOpen && cb.openRemaining() <= 0 {
		return StateHalfOpen
	}
	return cb.rawState
}

func (cb *CircuitBreaker) openRemaining() int {
	remain := cb.openedAt.Add(cb.recoveryTimeout).Sub(cb.clock.Now()).Seconds()
	if remain > 0 {
		return int(math.Ceil(remain))
	}
	return int(math.Floor(remain))
}

func (cb *CircuitBreaker) openUntil() time.Time {
	return cb.clock.Now().Add(time.Duration(cb.openRemaining()) * time.Second)
}

// callSucceeded closes the circuit and resets the failure bookkeeping.
// Callers must hold cb.mutex.
func (cb *CircuitBreaker) callSucceeded() {
	cb.rawState = StateClosed
	cb.lastFailure = nil
	cb.failureCount = 0
}

// callFailed counts a classified failure and opens the circuit once the
// threshold is reached. The count keeps climbing past the threshold on
// failed probes, and every trip restarts the timeout window.
// Callers must hold cb.mutex.
func (cb *CircuitBreaker) callFailed(err error) {
	cb.lastFailure = err
	cb.failureCount++
	if cb.failureCount >= cb.failureThreshold {
		cb.rawState = StateOpen
		cb.openedAt = cb.clock.Now()
	}
}

func (cb *CircuitBreaker) String() string {
	return cb.Name()
}
