package engine

import (
	"errors"
	"fmt"
)

// Rule definition errors, reported at rule-creation time. The distinct
// list-shaped error is part of the API surface callers already depend
// on, so the branch ordering in ParseOperation keeps it separate from
// the generic non-object error.
var (
	ErrInvalidOperationBlock  = errors.New("invalid operation block")
	ErrInvalidBooleanOperator = errors.New("invalid boolean operator")
	ErrInvalidConditionFormat = errors.New("invalid condition format")
)

// AttributeError reports an attribute path that does not resolve on
// the evaluated entity. It indicates a rule definition bug and always
// propagates to the caller.
type AttributeError struct {
	Path    string
	Segment string
}

func (e *AttributeError) Error() string {
	if e.Segment != "" && e.Segment != e.Path {
		return fmt.Sprintf("attribute %q not found in path %q", e.Segment, e.Path)
	}
	return fmt.Sprintf("attribute %q not found", e.Path)
}

// CoercionError reports a value that could not be coerced to a number
// for an ordering operator. It propagates rather than defaulting the
// condition to false, since it signals a data/rule mismatch.
type CoercionError struct {
	Value any
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %v to a number", e.Value)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}

// BooleanOperatorError reports a rule whose boolean operator is not
// AND or OR while more than one condition is present.
type BooleanOperatorError struct {
	Operator string
}

func (e *BooleanOperatorError) Error() string {
	return fmt.Sprintf("unsupported boolean operator: %s", e.Operator)
}
