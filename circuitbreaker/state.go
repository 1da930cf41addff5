package circuitbreaker

// State is the externally observable state of a breaker.
//
// Only StateClosed and StateOpen are ever stored. StateHalfOpen is derived
// on read: an open breaker whose recovery timeout has elapsed reports
// half-open until the next guarded call drives a real transition.
type State int

const (
	StateClosed   State = iota // Normal operation
	StateOpen                  // Rejecting calls
	StateHalfOpen              // Timeout elapsed, next call is the probe
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}
