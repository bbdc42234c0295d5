// Package importer ingests company records from CSV files or JSON
// payloads, skipping URL duplicates and collecting per-record errors.
package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/siftlab/companysift/models"
	"github.com/siftlab/companysift/repositories"
	"github.com/siftlab/companysift/services"
)

// CompanyInput is one company record as submitted for import
type CompanyInput struct {
	Name              string   `json:"name" validate:"required"`
	URL               string   `json:"url" validate:"required"`
	FoundedYear       int      `json:"founded_year"`
	TotalEmployees    int      `json:"total_employees"`
	HeadquartersCity  string   `json:"headquarters_city"`
	EmployeeLocations string   `json:"employee_locations"`
	EmployeeGrowth2Y  *float64 `json:"employee_growth_2y"`
	EmployeeGrowth1Y  *float64 `json:"employee_growth_1y"`
	EmployeeGrowth6M  *float64 `json:"employee_growth_6m"`
	Description       string   `json:"description"`
	Industry          string   `json:"industry"`
}

// Summary reports the outcome of an import: how many records landed,
// how many were duplicate URLs, and which records failed by name.
type Summary struct {
	ImportedRecords   int      `json:"imported_records"`
	SkippedDuplicates int      `json:"skipped_duplicates"`
	RecordErrors      int      `json:"record_errors"`
	Errors            []string `json:"errors"`
}

// Service ingests company data into the repository
type Service struct {
	repos     *repositories.Repositories
	txManager repositories.TransactionManager
	logger    *zap.Logger
}

// NewService creates a new company import service
func NewService(repos *repositories.Repositories, txManager repositories.TransactionManager, logger *zap.Logger) *Service {
	return &Service{
		repos:     repos,
		txManager: txManager,
		logger:    logger,
	}
}

// ImportJSON imports a batch of company records. Records whose URL is
// already present (in the database or earlier in the batch) are
// skipped; records missing a name or URL are counted as errors. The
// whole batch commits in one transaction.
func (s *Service) ImportJSON(ctx context.Context, inputs []CompanyInput) (*Summary, error) {
	if len(inputs) == 0 {
		return nil, services.ErrNoImportData
	}
	return s.importAll(ctx, inputs)
}

// ImportCSV imports company records from CSV content. The first row
// is the header; rows map onto CompanyInput by column name. Malformed
// numeric fields in the growth columns degrade to null rather than
// failing the record.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (*Summary, error) {
	inputs, err := parseCSV(r)
	if err != nil {
		return nil, services.WrapValidation("failed to parse CSV", err)
	}
	if len(inputs) == 0 {
		return nil, services.ErrNoImportData
	}
	return s.importAll(ctx, inputs)
}

func (s *Service) importAll(ctx context.Context, inputs []CompanyInput) (*Summary, error) {
	summary := &Summary{Errors: []string{}}
	seen := make(map[string]struct{}, len(inputs))

	err := s.txManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		for _, input := range inputs {
			if input.Name == "" || input.URL == "" {
				summary.RecordErrors++
				summary.Errors = append(summary.Errors, input.Name)
				s.logger.Warn("skipping invalid company record",
					zap.String("name", input.Name),
					zap.String("url", input.URL))
				continue
			}

			if _, dup := seen[input.URL]; dup {
				summary.SkippedDuplicates++
				continue
			}
			existing, err := s.repos.Companies.GetByURL(ctx, input.URL)
			if err != nil {
				return services.WrapInternal("failed to check for existing company", err)
			}
			if existing != nil {
				summary.SkippedDuplicates++
				continue
			}

			if err := s.repos.Companies.Create(ctx, input.toCompany()); err != nil {
				summary.RecordErrors++
				summary.Errors = append(summary.Errors, input.Name)
				s.logger.Warn("failed to import company",
					zap.String("name", input.Name),
					zap.Error(err))
				continue
			}
			seen[input.URL] = struct{}{}
			summary.ImportedRecords++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("company import finished",
		zap.Int("imported", summary.ImportedRecords),
		zap.Int("skipped_duplicates", summary.SkippedDuplicates),
		zap.Int("record_errors", summary.RecordErrors))

	return summary, nil
}

func (in CompanyInput) toCompany() *models.Company {
	company := models.NewCompany(in.Name, in.URL)
	company.FoundedYear = in.FoundedYear
	company.TotalEmployees = in.TotalEmployees
	company.HeadquartersCity = in.HeadquartersCity
	company.EmployeeLocations = in.EmployeeLocations
	company.EmployeeGrowth2Y = in.EmployeeGrowth2Y
	company.EmployeeGrowth1Y = in.EmployeeGrowth1Y
	company.EmployeeGrowth6M = in.EmployeeGrowth6M
	company.Description = in.Description
	company.Industry = in.Industry
	return company
}

func parseCSV(r io.Reader) ([]CompanyInput, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var inputs []CompanyInput
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		growth2y := field("employee_growth_2y")
		if growth2y == "" {
			// Legacy exports carry a misspelled 2Y header
			growth2y = field("employee_rowth_2y")
		}

		inputs = append(inputs, CompanyInput{
			Name:              field("company_name"),
			URL:               field("url"),
			FoundedYear:       intOrZero(field("founded_year")),
			TotalEmployees:    intOrZero(field("total_employees")),
			HeadquartersCity:  field("headquarters_city"),
			EmployeeLocations: field("employee_locations"),
			EmployeeGrowth2Y:  floatOrNil(growth2y),
			EmployeeGrowth1Y:  floatOrNil(field("employee_growth_1y")),
			EmployeeGrowth6M:  floatOrNil(field("employee_growth_6m")),
			Description:       field("description"),
			Industry:          field("industry"),
		})
	}
	return inputs, nil
}

func intOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func floatOrNil(s string) *float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
