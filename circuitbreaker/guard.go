package circuitbreaker

import (
	"iter"
	"reflect"
	"runtime"
	"strings"
)

// Call guards a unary operation. While the circuit is effectively open the
// operation is never invoked: the fallback runs instead, or an *OpenError
// is returned. Otherwise the operation runs and its outcome drives the
// state machine: nil error closes the circuit and resets the failure count,
// a classified error counts toward the threshold and is returned unchanged,
// and an unclassified error is returned unchanged without touching breaker
// state.
func (cb *CircuitBreaker) Call(op func() (any, error)) (any, error) {
	cb.ensureRegistered(op)

	if err := cb.precheck(); err != nil {
		if cb.fallback != nil {
			return cb.fallback()
		}
		return nil, err
	}

	result, err := op()
	cb.record(err)
	return result, err
}

// CallStream guards a streaming operation. The guard is checked once, at
// invocation; the returned sequence lazily forwards the underlying
// sequence's elements. A classified failure element updates breaker state,
// is forwarded to the caller, and ends the sequence. Exhaustion without a
// classified failure closes the circuit. The sequence is not restartable;
// re-invoking CallStream re-enters the guard.
//
// While the circuit is open the fallback's single result is delivered as a
// one-element sequence; without a fallback an *OpenError is returned and no
// sequence is produced.
func (cb *CircuitBreaker) CallStream(op func() iter.Seq2[any, error]) (iter.Seq2[any, error], error) {
	cb.ensureRegistered(op)

	if err := cb.precheck(); err != nil {
		if cb.fallback != nil {
			value, fbErr := cb.fallback()
			return func(yield func(any, error) bool) {
				yield(value, fbErr)
			}, nil
		}
		return nil, err
	}

	seq := op()
	return func(yield func(any, error) bool) {
		for value, err := range seq {
			if err != nil && cb.isFailure(err) {
				cb.record(err)
				yield(value, err)
				return
			}
			if !yield(value, err) {
				// Abandoned by the consumer: no outcome observed,
				// no transition.
				return
			}
		}
		cb.record(nil)
	}, nil
}

// Do is the typed form of Call. A fallback result must be assignable to T
// or the zero value is returned in its place.
func Do[T any](cb *CircuitBreaker, op func() (T, error)) (T, error) {
	value, err := cb.Call(func() (any, error) {
		return op()
	})
	typed, _ := value.(T)
	return typed, err
}

// Stream is the typed form of CallStream.
func Stream[T any](cb *CircuitBreaker, op func() iter.Seq2[T, error]) (iter.Seq2[T, error], error) {
	seq, err := cb.CallStream(func() iter.Seq2[any, error] {
		return func(yield func(any, error) bool) {
			for value, err := range op() {
				if !yield(value, err) {
					return
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return func(yield func(T, error) bool) {
		for value, err := range seq {
			typed, _ := value.(T)
			if !yield(typed, err) {
				return
			}
		}
	}, nil
}

// precheck is the guard: it rejects while the effective state is open and
// lets closed and half-open calls through without a transition.
func (cb *CircuitBreaker) precheck() error {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	if cb.rawState == StateOpen && cb.openRemaining() > 0 {
		return cb.newOpenError()
	}
	return nil
}

// record applies the outcome of a guarded call. Unclassified errors leave
// the breaker untouched.
func (cb *CircuitBreaker) record(err error) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()

	switch {
	case err == nil:
		cb.callSucceeded()
	case cb.isFailure(err):
		cb.callFailed(err)
	}
}

// ensureRegistered names the breaker after its first guarded operation and
// registers it. Named breakers register at construction instead.
func (cb *CircuitBreaker) ensureRegistered(op any) {
	cb.mutex.Lock()
	if cb.registered {
		cb.mutex.Unlock()
		return
	}
	if cb.name == "" {
		cb.name = functionName(op)
	}
	cb.registered = true
	cb.mutex.Unlock()

	cb.registry.Register(cb)
}

func functionName(op any) string {
	pc := reflect.ValueOf(op).Pointer()
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "anonymous"
	}
	name := fn.Name()
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
