package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/siftlab/companysift/models"
	"github.com/siftlab/companysift/repositories"
	"go.uber.org/zap"
)

// RuleRepository implements the repositories.RuleRepository interface
type RuleRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewRuleRepository creates a new rule repository
func NewRuleRepository(db *DB, logger *zap.Logger) repositories.RuleRepository {
	return &RuleRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a rule together with its conditions. Condition order
// is recorded so evaluation follows declaration order.
func (r *RuleRepository) Create(ctx context.Context, rule *models.Rule) error {
	executor := GetExecutor(ctx, r.db)

	ruleQuery := `
		INSERT INTO rules (id, input, feature_name, match, "default", boolean_operator, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := executor.ExecContext(ctx, ruleQuery,
		rule.ID,
		rule.Input,
		rule.FeatureName,
		rule.Match,
		rule.Default,
		nullableOperator(rule.BooleanOperator),
		rule.UserID,
		rule.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	condQuery := `
		INSERT INTO conditions (id, operator, target_object, value, rule_id, position)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i, cond := range rule.Conditions {
		_, err := executor.ExecContext(ctx, condQuery,
			cond.ID,
			string(cond.Operator),
			cond.TargetObject,
			cond.Value,
			rule.ID,
			i,
		)
		if err != nil {
			return fmt.Errorf("failed to create condition: %w", err)
		}
	}

	r.logger.Debug("rule created",
		zap.String("id", rule.ID.String()),
		zap.Int("conditions", len(rule.Conditions)))
	return nil
}

// GetByID retrieves a rule with its conditions
func (r *RuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Rule, error) {
	query := `
		SELECT id, input, feature_name, match, "default", boolean_operator, user_id, created_at
		FROM rules
		WHERE id = $1
	`

	executor := GetExecutor(ctx, r.db)
	rule, err := scanRule(executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("rule not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	if err := r.loadConditions(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

// GetByUserID retrieves all rules (with conditions) for a user
func (r *RuleRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Rule, error) {
	query := `
		SELECT id, input, feature_name, match, "default", boolean_operator, user_id, created_at
		FROM rules
		WHERE user_id = $1
		ORDER BY created_at
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []*models.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	for _, rule := range rules {
		if err := r.loadConditions(ctx, rule); err != nil {
			return nil, err
		}
	}

	return rules, nil
}

// Exists reports whether the user already has a rule with the same
// input label and feature name
func (r *RuleRepository) Exists(ctx context.Context, userID uuid.UUID, input, featureName string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM rules
			WHERE user_id = $1 AND input = $2 AND feature_name = $3
		)
	`

	executor := GetExecutor(ctx, r.db)
	var exists bool
	if err := executor.QueryRowContext(ctx, query, userID, input, featureName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check rule existence: %w", err)
	}
	return exists, nil
}

// Delete removes a rule; conditions cascade via the schema
func (r *RuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM rules WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rule not found: %s", id)
	}

	r.logger.Debug("rule deleted", zap.String("id", id.String()))
	return nil
}

// loadConditions fetches a rule's conditions in declaration order
func (r *RuleRepository) loadConditions(ctx context.Context, rule *models.Rule) error {
	query := `
		SELECT id, operator, target_object, value, rule_id
		FROM conditions
		WHERE rule_id = $1
		ORDER BY position
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, rule.ID)
	if err != nil {
		return fmt.Errorf("failed to load conditions: %w", err)
	}
	defer rows.Close()

	rule.Conditions = nil
	for rows.Next() {
		var cond models.Condition
		var op string
		if err := rows.Scan(&cond.ID, &op, &cond.TargetObject, &cond.Value, &cond.RuleID); err != nil {
			return fmt.Errorf("failed to scan condition: %w", err)
		}
		cond.Operator = models.Operator(op)
		rule.Conditions = append(rule.Conditions, cond)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate conditions: %w", err)
	}

	return nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanRule(s scanner) (*models.Rule, error) {
	rule := &models.Rule{}
	var op sql.NullString

	err := s.Scan(
		&rule.ID,
		&rule.Input,
		&rule.FeatureName,
		&rule.Match,
		&rule.Default,
		&op,
		&rule.UserID,
		&rule.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if op.Valid {
		rule.BooleanOperator = models.BooleanOperator(op.String)
	}
	return rule, nil
}

func nullableOperator(op models.BooleanOperator) sql.NullString {
	if op == models.BooleanNone {
		return sql.NullString{}
	}
	return sql.NullString{String: string(op), Valid: true}
}
