// Package engine implements the rule evaluation core: attribute
// resolution, condition evaluation with a closed operator set,
// boolean composition, and parsing of rule definitions.
package engine

import (
	"context"

	"github.com/siftlab/companysift/models"
	"go.uber.org/zap"
)

// Outcome is the result of applying one rule to one entity
type Outcome struct {
	Matched bool
	Value   int
}

// Engine applies persisted rules to attribute-bearing entities. It
// holds no mutable state, so a single instance is safe for concurrent
// use across goroutines.
type Engine struct {
	oracle Asker
	logger *zap.Logger
}

// New creates a rule engine backed by the given semantic oracle
func New(oracle Asker, logger *zap.Logger) *Engine {
	return &Engine{
		oracle: oracle,
		logger: logger,
	}
}

// Apply evaluates every condition of the rule against the entity in
// declaration order, composes the results under the rule's boolean
// operator, and returns the matched flag plus the emitted value
// (Match when matched, Default otherwise).
//
// Attribute resolution and numeric coercion errors propagate to the
// caller: a single bad condition fails the whole rule application.
func (e *Engine) Apply(ctx context.Context, rule *models.Rule, entity AttributeSource) (Outcome, error) {
	results := make([]bool, 0, len(rule.Conditions))
	for _, cond := range rule.Conditions {
		value, err := Resolve(entity, cond.TargetObject)
		if err != nil {
			return Outcome{}, err
		}

		ok, err := EvaluateCondition(ctx, cond, value, e.oracle)
		if err != nil {
			return Outcome{}, err
		}
		results = append(results, ok)
	}

	matched, err := Compose(rule.BooleanOperator, results)
	if err != nil {
		return Outcome{}, err
	}

	value := rule.Default
	if matched {
		value = rule.Match
	}

	e.logger.Debug("rule applied",
		zap.String("rule_id", rule.ID.String()),
		zap.String("feature", rule.FeatureName),
		zap.Bool("matched", matched),
		zap.Int("value", value))

	return Outcome{Matched: matched, Value: value}, nil
}
