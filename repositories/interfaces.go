// Package repositories defines the persistence contracts consumed by
// the services and handlers. Implementations live in the postgres
// subpackage.
package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/siftlab/companysift/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Automatically commits if the function succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	Context() context.Context
}

// UserRepository handles user data operations
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByUserName retrieves a user by name; returns nil when absent
	GetByUserName(ctx context.Context, userName string) (*models.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*models.User, error)
}

// RuleRepository handles rule and condition data operations
type RuleRepository interface {
	// Create persists a rule together with its conditions
	Create(ctx context.Context, rule *models.Rule) error

	// GetByID retrieves a rule with its conditions
	GetByID(ctx context.Context, id uuid.UUID) (*models.Rule, error)

	// GetByUserID retrieves all rules (with conditions) for a user,
	// conditions ordered as declared
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Rule, error)

	// Exists reports whether the user already has a rule with the
	// same input label and feature name
	Exists(ctx context.Context, userID uuid.UUID, input, featureName string) (bool, error)

	// Delete removes a rule; conditions cascade
	Delete(ctx context.Context, id uuid.UUID) error
}

// CompanyRepository handles company data operations
type CompanyRepository interface {
	// Create creates a new company record
	Create(ctx context.Context, company *models.Company) error

	// GetByURL retrieves a company by its URL; returns nil when absent
	GetByURL(ctx context.Context, url string) (*models.Company, error)

	// GetByURLs retrieves the companies matching any of the URLs
	GetByURLs(ctx context.Context, urls []string) ([]*models.Company, error)

	// List retrieves all companies
	List(ctx context.Context) ([]*models.Company, error)

	// TouchProcessed updates a company's last-processed timestamp
	TouchProcessed(ctx context.Context, id uuid.UUID, at time.Time) error
}

// FeatureRepository handles processed feature records
type FeatureRepository interface {
	// Create records one evaluation outcome
	Create(ctx context.Context, feature *models.ProcessedFeature) error

	// GetByCompanyID retrieves all feature records for a company
	GetByCompanyID(ctx context.Context, companyID uuid.UUID) ([]*models.ProcessedFeature, error)
}

// Repositories groups all repository implementations
type Repositories struct {
	Users     UserRepository
	Rules     RuleRepository
	Companies CompanyRepository
	Features  FeatureRepository
}
