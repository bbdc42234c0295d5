package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/siftlab/companysift/models"
	"github.com/siftlab/companysift/repositories"
	"github.com/siftlab/companysift/services/importer"
	"github.com/siftlab/companysift/utils"
)

// maxImportSize caps the accepted import payload at 32 MiB
const maxImportSize = 32 << 20

// ImportService defines the import operations the handler depends on
type ImportService interface {
	// ImportJSON imports a batch of company records
	ImportJSON(ctx context.Context, inputs []importer.CompanyInput) (*importer.Summary, error)

	// ImportCSV imports company records from CSV content
	ImportCSV(ctx context.Context, r io.Reader) (*importer.Summary, error)
}

// ProcessedFeatureOut is one evaluation record in a company listing
type ProcessedFeatureOut struct {
	UserName    string `json:"user_name"`
	CompanyName string `json:"company_name"`
	FeatureName string `json:"feature_name"`
	Value       bool   `json:"value"`
}

// CompanyOut is one company in the listing response: the raw imported
// data plus every recorded feature evaluation.
type CompanyOut struct {
	ID                uuid.UUID             `json:"id"`
	URL               string                `json:"url"`
	Data              map[string]any        `json:"data"`
	ProcessedFeatures []ProcessedFeatureOut `json:"processed_features"`
	ImportedAt        time.Time             `json:"imported_at"`
	LastProcessedAt   *time.Time            `json:"last_processed_at,omitempty"`
}

// CompanyHandler handles company-related HTTP requests
type CompanyHandler struct {
	importService ImportService
	companies     repositories.CompanyRepository
	features      repositories.FeatureRepository
	users         repositories.UserRepository
	logger        *zap.Logger
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(importService ImportService, repos *repositories.Repositories, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		importService: importService,
		companies:     repos.Companies,
		features:      repos.Features,
		users:         repos.Users,
		logger:        logger,
	}
}

// HandleImport handles POST /api/v1/companies/import. A multipart
// upload with a "file" part imports CSV; a JSON array body imports
// records directly.
func (h *CompanyHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)

	var (
		summary *importer.Summary
		err     error
	)

	contentType := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(contentType, "multipart/form-data"):
		file, _, ferr := r.FormFile("file")
		if ferr != nil {
			_ = utils.WriteBadRequest(w, "Missing file upload", nil)
			return
		}
		defer file.Close()
		summary, err = h.importService.ImportCSV(r.Context(), file)

	case strings.HasPrefix(contentType, "application/json"):
		var inputs []importer.CompanyInput
		if derr := json.NewDecoder(r.Body).Decode(&inputs); derr != nil {
			_ = utils.WriteBadRequest(w, "Invalid request body", nil)
			return
		}
		summary, err = h.importService.ImportJSON(r.Context(), inputs)

	default:
		_ = utils.WriteBadRequest(w, "No data provided", nil)
		return
	}

	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, summary)
}

// HandleList handles GET /api/v1/companies
func (h *CompanyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companies, err := h.companies.List(ctx)
	if err != nil {
		h.logger.Error("failed to list companies", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	userNames, err := h.userNamesByID(ctx)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	out := make([]CompanyOut, 0, len(companies))
	for _, company := range companies {
		features, err := h.features.GetByCompanyID(ctx, company.ID)
		if err != nil {
			h.logger.Error("failed to load features",
				zap.String("company_id", company.ID.String()),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}

		featuresOut := make([]ProcessedFeatureOut, 0, len(features))
		for _, f := range features {
			featuresOut = append(featuresOut, ProcessedFeatureOut{
				UserName:    userNames[f.UserID],
				CompanyName: company.Name,
				FeatureName: f.FeatureName,
				Value:       f.Value,
			})
		}

		out = append(out, CompanyOut{
			ID:                company.ID,
			URL:               company.URL,
			Data:              companyData(company),
			ProcessedFeatures: featuresOut,
			ImportedAt:        company.ImportedAt,
			LastProcessedAt:   company.LastProcessedAt,
		})
	}

	_ = utils.WriteJSON(w, http.StatusOK, out)
}

func (h *CompanyHandler) userNamesByID(ctx context.Context) (map[uuid.UUID]string, error) {
	users, err := h.users.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.UserName
	}
	return names, nil
}

// companyData exposes the stored business attributes, leaving out
// identifiers and processing timestamps.
func companyData(c *models.Company) map[string]any {
	return map[string]any{
		"name":               c.Name,
		"url":                c.URL,
		"founded_year":       c.FoundedYear,
		"total_employees":    c.TotalEmployees,
		"headquarters_city":  c.HeadquartersCity,
		"employee_locations": c.EmployeeLocations,
		"employee_growth_2y": c.EmployeeGrowth2Y,
		"employee_growth_1y": c.EmployeeGrowth1Y,
		"employee_growth_6m": c.EmployeeGrowth6M,
		"description":        c.Description,
		"industry":           c.Industry,
	}
}
