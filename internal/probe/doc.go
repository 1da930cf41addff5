// Package probe periodically checks guarded upstreams by sending HTTP GET
// requests through their circuit breakers. A breaker that has tripped keeps
// probes off the wire until its recovery window elapses.
package probe
