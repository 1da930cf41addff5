// Package target represents a guarded upstream: a URL bound to the circuit
// breaker protecting it, with bookkeeping for the most recent probe result.
package target
