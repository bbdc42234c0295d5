package models

import (
	"time"

	"github.com/google/uuid"
)

// BooleanOperator combines the results of a rule's conditions.
// An empty operator means the rule has exactly one condition and no
// composition is applied.
type BooleanOperator string

const (
	BooleanAnd  BooleanOperator = "AND"
	BooleanOr   BooleanOperator = "OR"
	BooleanNone BooleanOperator = ""
)

// Valid reports whether the operator is one of the supported values
func (op BooleanOperator) Valid() bool {
	return op == BooleanAnd || op == BooleanOr || op == BooleanNone
}

// Operator identifies the comparison applied by a single condition
type Operator string

const (
	OpEquals      Operator = "EQUALS"
	OpNotEquals   Operator = "NOT_EQUALS"
	OpGreaterThan Operator = "GREATER_THAN"
	OpLessThan    Operator = "LESS_THAN"
	OpContains    Operator = "CONTAINS"
	OpNotContains Operator = "NOT_CONTAINS"
	OpLLM         Operator = "LLM"
)

// Condition is one atomic predicate belonging to a rule. Literals are
// stored as strings; ordering operators coerce both sides to float at
// evaluation time.
type Condition struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Operator     Operator  `json:"operator" db:"operator"`
	TargetObject string    `json:"target_object" db:"target_object"`
	Value        string    `json:"value" db:"value"`
	RuleID       uuid.UUID `json:"rule_id" db:"rule_id"`
}

// TableName returns the table name for the Condition model
func (Condition) TableName() string {
	return "conditions"
}

// Rule is a named, user-owned boolean decision procedure over a
// company, emitting Match when it holds and Default otherwise.
type Rule struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Input           string          `json:"input" db:"input"`
	FeatureName     string          `json:"feature_name" db:"feature_name"`
	Match           int             `json:"match" db:"match"`
	Default         int             `json:"default" db:"default"`
	BooleanOperator BooleanOperator `json:"boolean_operator,omitempty" db:"boolean_operator"`
	UserID          uuid.UUID       `json:"user_id" db:"user_id"`
	Conditions      []Condition     `json:"conditions"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the Rule model
func (Rule) TableName() string {
	return "rules"
}

// NewRule creates a new Rule instance and assigns condition ownership
func NewRule(userID uuid.UUID, input, featureName string, match, def int, op BooleanOperator, conditions []Condition) *Rule {
	r := &Rule{
		ID:              uuid.New(),
		Input:           input,
		FeatureName:     featureName,
		Match:           match,
		Default:         def,
		BooleanOperator: op,
		UserID:          userID,
		CreatedAt:       time.Now(),
	}
	for i := range conditions {
		conditions[i].ID = uuid.New()
		conditions[i].RuleID = r.ID
	}
	r.Conditions = conditions
	return r
}
