package target

import (
	"net/url"
	"sync"
	"time"

	"github.com/skarras/circuitguard/circuitbreaker"
)

// Target binds an upstream URL to the circuit breaker guarding it and keeps
// the outcome of the most recent probe.
type Target struct {
	name    string
	url     *url.URL
	breaker *circuitbreaker.CircuitBreaker

	mutex      sync.Mutex
	isHealthy  bool
	lastStatus int
	lastProbe  time.Time
}

// New creates a Target. Targets start out healthy until a probe says
// otherwise.
func New(name string, u *url.URL, breaker *circuitbreaker.CircuitBreaker) *Target {
	return &Target{
		name:      name,
		url:       u,
		breaker:   breaker,
		isHealthy: true,
	}
}

// Name returns the target name, which is also its breaker name.
func (t *Target) Name() string {
	return t.name
}

// URL returns the probed URL.
func (t *Target) URL() *url.URL {
	return t.url
}

// Breaker returns the circuit breaker guarding this target.
func (t *Target) Breaker() *circuitbreaker.CircuitBreaker {
	return t.breaker
}

// IsHealthy returns true if the last probe succeeded.
func (t *Target) IsHealthy() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.isHealthy
}

// SetHealthy updates the target's health status.
// Returns true if the status changed, false if it was already in that state.
func (t *Target) SetHealthy(healthy bool) (changed bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.isHealthy == healthy {
		return false
	}

	t.isHealthy = healthy
	return true
}

// RecordProbe stores the status code and timestamp of the latest probe.
func (t *Target) RecordProbe(status int, at time.Time) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	t.lastStatus = status
	t.lastProbe = at
}

// LastProbe returns the status code and timestamp of the latest probe.
// The status is 0 if no probe has completed yet.
func (t *Target) LastProbe() (status int, at time.Time) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.lastStatus, t.lastProbe
}
