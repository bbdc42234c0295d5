package engine

import "github.com/siftlab/companysift/models"

// Compose combines per-condition results into the rule-level outcome.
//
// A single result is returned as-is, regardless of the declared
// operator. AND and OR fold over every result; callers are expected to
// have evaluated all conditions before composing, since evaluation may
// carry side effects (oracle calls) and downstream consumers may want
// each condition's outcome. Any other operator with multiple results
// is a fatal definition error.
func Compose(op models.BooleanOperator, results []bool) (bool, error) {
	if len(results) == 1 {
		return results[0], nil
	}

	switch op {
	case models.BooleanAnd:
		for _, r := range results {
			if !r {
				return false, nil
			}
		}
		return true, nil
	case models.BooleanOr:
		for _, r := range results {
			if r {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, &BooleanOperatorError{Operator: string(op)}
	}
}
