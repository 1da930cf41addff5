// Package circuitbreaker implements the circuit breaker pattern as a
// reusable guard around unreliable operations.
//
// A breaker counts consecutive classified failures and rejects calls once a
// threshold is crossed. Recovery is time-gated and lazy: after the recovery
// timeout the breaker reads as half-open and the next guarded call is the
// probe; a success closes the circuit, a failure restarts the timeout
// window. There is no background timer.
//
// Usage:
//
//	cb, err := circuitbreaker.New(
//	    circuitbreaker.WithName("billing"),
//	    circuitbreaker.WithFailureThreshold(3),
//	    circuitbreaker.WithRecoveryTimeout(30*time.Second),
//	    circuitbreaker.WithExpectedFailure(ErrUpstream),
//	)
//	result, err := circuitbreaker.Do(cb, func() (string, error) {
//	    return client.Fetch()
//	})
//
// Every breaker lands in a process-wide registry by name, so monitoring
// code can ask for the open set or a global all-closed verdict:
//
//	if !circuitbreaker.AllClosed() {
//	    // degraded
//	}
package circuitbreaker
