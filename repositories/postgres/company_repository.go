package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siftlab/companysift/models"
	"github.com/siftlab/companysift/repositories"
	"go.uber.org/zap"
)

const companyColumns = `
	id, name, url, founded_year, total_employees, headquarters_city,
	employee_locations, employee_growth_2y, employee_growth_1y,
	employee_growth_6m, description, industry, imported_at, last_processed_at
`

// CompanyRepository implements the repositories.CompanyRepository interface
type CompanyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *DB, logger *zap.Logger) repositories.CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new company record
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		company.ID,
		company.Name,
		company.URL,
		company.FoundedYear,
		company.TotalEmployees,
		company.HeadquartersCity,
		company.EmployeeLocations,
		company.EmployeeGrowth2Y,
		company.EmployeeGrowth1Y,
		company.EmployeeGrowth6M,
		company.Description,
		company.Industry,
		company.ImportedAt,
		company.LastProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	r.logger.Debug("company created",
		zap.String("id", company.ID.String()),
		zap.String("name", company.Name))
	return nil
}

// GetByURL retrieves a company by its URL; returns nil when absent
func (r *CompanyRepository) GetByURL(ctx context.Context, url string) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE url = $1`

	executor := GetExecutor(ctx, r.db)
	company, err := scanCompany(executor.QueryRowContext(ctx, query, url))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// GetByURLs retrieves the companies matching any of the URLs
func (r *CompanyRepository) GetByURLs(ctx context.Context, urls []string) ([]*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE url = ANY($1)`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, pq.Array(urls))
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	return collectCompanies(rows)
}

// List retrieves all companies
func (r *CompanyRepository) List(ctx context.Context) ([]*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY imported_at`

	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	return collectCompanies(rows)
}

// TouchProcessed updates a company's last-processed timestamp
func (r *CompanyRepository) TouchProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE companies SET last_processed_at = $2 WHERE id = $1`

	executor := GetExecutor(ctx, r.db)
	if _, err := executor.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}

func collectCompanies(rows *sql.Rows) ([]*models.Company, error) {
	var companies []*models.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}
	return companies, nil
}

func scanCompany(s scanner) (*models.Company, error) {
	company := &models.Company{}
	var lastProcessed sql.NullTime

	err := s.Scan(
		&company.ID,
		&company.Name,
		&company.URL,
		&company.FoundedYear,
		&company.TotalEmployees,
		&company.HeadquartersCity,
		&company.EmployeeLocations,
		&company.EmployeeGrowth2Y,
		&company.EmployeeGrowth1Y,
		&company.EmployeeGrowth6M,
		&company.Description,
		&company.Industry,
		&company.ImportedAt,
		&lastProcessed,
	)
	if err != nil {
		return nil, err
	}

	if lastProcessed.Valid {
		company.LastProcessedAt = &lastProcessed.Time
	}
	return company, nil
}
