package models

import (
	"time"

	"github.com/google/uuid"
)

// ProcessedFeature records the outcome of applying one rule to one
// company: the boolean result and when it was evaluated.
type ProcessedFeature struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CompanyID   uuid.UUID `json:"company_id" db:"company_id"`
	RuleID      uuid.UUID `json:"rule_id" db:"rule_id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	FeatureName string    `json:"feature_name" db:"feature_name"`
	Value       bool      `json:"value" db:"value"`
	ProcessedAt time.Time `json:"processed_at" db:"processed_at"`
}

// TableName returns the table name for the ProcessedFeature model
func (ProcessedFeature) TableName() string {
	return "processed_features"
}

// NewProcessedFeature creates a new ProcessedFeature instance
func NewProcessedFeature(companyID, ruleID, userID uuid.UUID, featureName string, value bool) *ProcessedFeature {
	return &ProcessedFeature{
		ID:          uuid.New(),
		CompanyID:   companyID,
		RuleID:      ruleID,
		UserID:      userID,
		FeatureName: featureName,
		Value:       value,
		ProcessedAt: time.Now(),
	}
}
