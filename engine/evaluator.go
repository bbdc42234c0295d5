package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/siftlab/companysift/models"
)

// Asker answers a yes/no natural-language question about some textual
// context. Implemented by the oracle client; stubbed in tests.
type Asker interface {
	Ask(ctx context.Context, question, contextText string) bool
}

// EvaluateCondition judges one condition against a resolved attribute
// value. Equality and containment compare string forms; ordering
// operators coerce both sides to float64 and fail on non-numeric
// input. The two behaviors are intentionally different: categorical
// features compare as text, numeric features as numbers.
//
// An unrecognized operator evaluates to false rather than erroring.
func EvaluateCondition(ctx context.Context, cond models.Condition, value any, oracle Asker) (bool, error) {
	switch cond.Operator {
	case models.OpEquals:
		return stringify(value) == cond.Value, nil
	case models.OpNotEquals:
		return stringify(value) != cond.Value, nil
	case models.OpGreaterThan:
		left, right, err := coercePair(value, cond.Value)
		if err != nil {
			return false, err
		}
		return left > right, nil
	case models.OpLessThan:
		left, right, err := coercePair(value, cond.Value)
		if err != nil {
			return false, err
		}
		return left < right, nil
	case models.OpContains:
		return strings.Contains(stringify(value), cond.Value), nil
	case models.OpNotContains:
		return !strings.Contains(stringify(value), cond.Value), nil
	case models.OpLLM:
		question := cond.Value
		contextText := fmt.Sprintf("%s: %s", cond.TargetObject, stringify(value))
		return oracle.Ask(ctx, question, contextText), nil
	default:
		return false, nil
	}
}

// coercePair converts both sides of an ordering comparison to float64
func coercePair(value any, literal string) (float64, float64, error) {
	left, err := toFloat(value)
	if err != nil {
		return 0, 0, &CoercionError{Value: value, Err: err}
	}
	right, err := strconv.ParseFloat(strings.TrimSpace(literal), 64)
	if err != nil {
		return 0, 0, &CoercionError{Value: literal, Err: err}
	}
	return left, right, nil
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, fmt.Errorf("value of type %T is not numeric", value)
	}
}

// stringify renders a value the way rule literals are stored. Integral
// floats print without a fractional part so numeric attributes and
// their string literals line up.
func stringify(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}
