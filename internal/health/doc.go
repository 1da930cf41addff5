// Package health exposes circuit breaker registry state over HTTP for
// health-check and readiness endpoints. The verdict is computed fresh from
// breaker effective state on every request.
package health
