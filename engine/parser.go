package engine

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/siftlab/companysift/models"
)

// Operation is the decoded form of a rule-creation "operation" block:
// either a single condition (no boolean operator) or a boolean group
// of conditions combined under AND/OR.
type Operation struct {
	BooleanOperator models.BooleanOperator
	Conditions      []models.Condition
}

// rawCondition is the loosely typed wire shape of one condition. The
// literal may arrive as a string, number, or boolean and is stored in
// its string form.
type rawCondition struct {
	Operator     string `json:"operator"`
	TargetObject string `json:"target_object"`
	Value        any    `json:"value"`
}

// ParseOperation decodes a rule-creation operation block. Accepted
// shapes:
//
//	{"operator": ..., "target_object": ..., "value": ...}
//	{"AND": [condition, ...]} or {"OR": [condition, ...]}
//
// The wrapper key is matched case-insensitively. A list-shaped block
// is rejected as an invalid boolean operator, which differs from the
// generic invalid-block error for other non-object shapes; both error
// messages are load-bearing for API clients.
func ParseOperation(raw json.RawMessage) (*Operation, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, ErrInvalidOperationBlock
	}
	if trimmed[0] == '[' {
		return nil, ErrInvalidBooleanOperator
	}
	if trimmed[0] != '{' {
		return nil, ErrInvalidOperationBlock
	}

	var block map[string]json.RawMessage
	if err := json.Unmarshal(raw, &block); err != nil {
		return nil, ErrInvalidOperationBlock
	}

	if len(block) == 1 {
		for key, value := range block {
			op := strings.ToUpper(key)
			if op == string(models.BooleanAnd) || op == string(models.BooleanOr) {
				return parseGroup(models.BooleanOperator(op), value)
			}
		}
	}

	// Single-condition shape: the block itself is the condition
	cond, err := parseCondition(raw)
	if err != nil {
		return nil, err
	}
	return &Operation{
		BooleanOperator: models.BooleanNone,
		Conditions:      []models.Condition{cond},
	}, nil
}

func parseGroup(op models.BooleanOperator, raw json.RawMessage) (*Operation, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ErrInvalidConditionFormat
	}

	conditions := make([]models.Condition, 0, len(items))
	for _, item := range items {
		cond, err := parseCondition(item)
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)
	}

	return &Operation{BooleanOperator: op, Conditions: conditions}, nil
}

func parseCondition(raw json.RawMessage) (models.Condition, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.Condition{}, ErrInvalidConditionFormat
	}

	var rc rawCondition
	if err := json.Unmarshal(raw, &rc); err != nil {
		return models.Condition{}, ErrInvalidConditionFormat
	}

	return models.Condition{
		Operator:     models.Operator(rc.Operator),
		TargetObject: rc.TargetObject,
		Value:        stringify(rc.Value),
	}, nil
}
