package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/siftlab/companysift/models"
	"github.com/siftlab/companysift/repositories"
	"go.uber.org/zap"
)

// FeatureRepository implements the repositories.FeatureRepository interface
type FeatureRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewFeatureRepository creates a new feature repository
func NewFeatureRepository(db *DB, logger *zap.Logger) repositories.FeatureRepository {
	return &FeatureRepository{
		db:     db,
		logger: logger,
	}
}

// Create records one evaluation outcome
func (r *FeatureRepository) Create(ctx context.Context, feature *models.ProcessedFeature) error {
	query := `
		INSERT INTO processed_features (id, company_id, rule_id, user_id, feature_name, value, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		feature.ID,
		feature.CompanyID,
		feature.RuleID,
		feature.UserID,
		feature.FeatureName,
		feature.Value,
		feature.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create processed feature: %w", err)
	}

	r.logger.Debug("processed feature recorded",
		zap.String("company_id", feature.CompanyID.String()),
		zap.String("feature", feature.FeatureName))
	return nil
}

// GetByCompanyID retrieves all feature records for a company
func (r *FeatureRepository) GetByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*models.ProcessedFeature, error) {
	query := `
		SELECT id, company_id, rule_id, user_id, feature_name, value, processed_at
		FROM processed_features
		WHERE company_id = $1
		ORDER BY processed_at
	`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query processed features: %w", err)
	}
	defer rows.Close()

	var features []*models.ProcessedFeature
	for rows.Next() {
		f := &models.ProcessedFeature{}
		err := rows.Scan(&f.ID, &f.CompanyID, &f.RuleID, &f.UserID, &f.FeatureName, &f.Value, &f.ProcessedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan processed feature: %w", err)
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate processed features: %w", err)
	}

	return features, nil
}
