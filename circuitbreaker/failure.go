package circuitbreaker

import (
	"errors"
	"fmt"
)

// FailurePredicate classifies an observed error. Only errors it matches
// count against the breaker; everything else passes through untouched.
type FailurePredicate func(err error) bool

// NewFailurePredicate resolves a classifier input into a predicate. The
// input is one of:
//
//   - nil: every non-nil error counts (the default)
//   - an error value: matched with errors.Is
//   - a []error: matched with errors.Is against any element
//   - a func(error) bool or FailurePredicate: used verbatim
//
// A string is rejected loudly rather than treated as a classifier: a string
// names an error, it is not one.
func NewFailurePredicate(classifier any) (FailurePredicate, error) {
	switch c := classifier.(type) {
	case nil:
		return func(err error) bool { return err != nil }, nil
	case string:
		return nil, fmt.Errorf("%w (got %q)", ErrClassifierString, c)
	case error:
		return FailureIs(c), nil
	case []error:
		return FailureIn(c...), nil
	case FailurePredicate:
		return c, nil
	case func(error) bool:
		return FailurePredicate(c), nil
	default:
		return nil, fmt.Errorf("%w (got %T)", ErrClassifierInvalid, classifier)
	}
}

// FailureIs builds a predicate matching errors in target's tree.
func FailureIs(target error) FailurePredicate {
	return func(err error) bool {
		return err != nil && errors.Is(err, target)
	}
}

// FailureIn builds a predicate matching errors in any target's tree.
func FailureIn(targets ...error) FailurePredicate {
	return func(err error) bool {
		if err == nil {
			return false
		}
		for _, target := range targets {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}

// FailureAs builds a predicate matching errors assignable to the concrete
// type T via errors.As.
func FailureAs[T error]() FailurePredicate {
	return func(err error) bool {
		if err == nil {
			return false
		}
		var target T
		return errors.As(err, &target)
	}
}
