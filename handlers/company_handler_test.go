package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siftlab/companysift/models"
	"github.com/siftlab/companysift/repositories"
	"github.com/siftlab/companysift/services/importer"
)

type stubImportService struct {
	summary *importer.Summary
	err     error
	csvBody string
	inputs  []importer.CompanyInput
}

func (s *stubImportService) ImportJSON(_ context.Context, inputs []importer.CompanyInput) (*importer.Summary, error) {
	s.inputs = inputs
	return s.summary, s.err
}

func (s *stubImportService) ImportCSV(_ context.Context, r io.Reader) (*importer.Summary, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s.csvBody = string(body)
	return s.summary, s.err
}

type listCompanyRepo struct {
	companies []*models.Company
}

func (r *listCompanyRepo) Create(_ context.Context, c *models.Company) error { return nil }
func (r *listCompanyRepo) GetByURL(_ context.Context, _ string) (*models.Company, error) {
	return nil, nil
}
func (r *listCompanyRepo) GetByURLs(_ context.Context, _ []string) ([]*models.Company, error) {
	return nil, nil
}
func (r *listCompanyRepo) List(_ context.Context) ([]*models.Company, error) {
	return r.companies, nil
}
func (r *listCompanyRepo) TouchProcessed(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

type listFeatureRepo struct {
	features []*models.ProcessedFeature
}

func (r *listFeatureRepo) Create(_ context.Context, _ *models.ProcessedFeature) error { return nil }
func (r *listFeatureRepo) GetByCompanyID(_ context.Context, companyID uuid.UUID) ([]*models.ProcessedFeature, error) {
	var out []*models.ProcessedFeature
	for _, f := range r.features {
		if f.CompanyID == companyID {
			out = append(out, f)
		}
	}
	return out, nil
}

type listUserRepo struct {
	users []*models.User
}

func (r *listUserRepo) Create(_ context.Context, _ *models.User) error { return nil }
func (r *listUserRepo) GetByID(_ context.Context, _ uuid.UUID) (*models.User, error) {
	return nil, nil
}
func (r *listUserRepo) GetByUserName(_ context.Context, _ string) (*models.User, error) {
	return nil, nil
}
func (r *listUserRepo) List(_ context.Context) ([]*models.User, error) { return r.users, nil }

func newCompanyHandler(importSvc ImportService, companies *listCompanyRepo, features *listFeatureRepo, users *listUserRepo) *CompanyHandler {
	repos := &repositories.Repositories{
		Companies: companies,
		Features:  features,
		Users:     users,
	}
	return NewCompanyHandler(importSvc, repos, zap.NewNop())
}

func TestHandleImportJSON(t *testing.T) {
	stub := &stubImportService{summary: &importer.Summary{ImportedRecords: 2, Errors: []string{}}}
	handler := newCompanyHandler(stub, &listCompanyRepo{}, &listFeatureRepo{}, &listUserRepo{})

	body := `[{"name": "Acme", "url": "https://acme.example"}, {"name": "Crumb", "url": "https://crumb.example"}]`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.HandleImport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, stub.inputs, 2)
	assert.Equal(t, "Acme", stub.inputs[0].Name)

	var summary importer.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.ImportedRecords)
}

func TestHandleImportCSV(t *testing.T) {
	stub := &stubImportService{summary: &importer.Summary{ImportedRecords: 1, Errors: []string{}}}
	handler := newCompanyHandler(stub, &listCompanyRepo{}, &listFeatureRepo{}, &listUserRepo{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "companies.csv")
	require.NoError(t, err)
	csvBody := "company_name,url\nAcme,https://acme.example\n"
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.HandleImport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, csvBody, stub.csvBody)
}

func TestHandleImportNoData(t *testing.T) {
	handler := newCompanyHandler(&stubImportService{}, &listCompanyRepo{}, &listFeatureRepo{}, &listUserRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/import", nil)
	rec := httptest.NewRecorder()

	handler.HandleImport(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No data provided")
}

func TestHandleImportMissingFilePart(t *testing.T) {
	handler := newCompanyHandler(&stubImportService{}, &listCompanyRepo{}, &listFeatureRepo{}, &listUserRepo{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "value"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/companies/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.HandleImport(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListCompanies(t *testing.T) {
	user := models.NewUser("alice")
	company := models.NewCompany("Acme", "https://acme.example")
	company.Industry = "Technology"
	processed := time.Now()
	company.LastProcessedAt = &processed

	feature := models.NewProcessedFeature(company.ID, uuid.New(), user.ID, "tech_company", true)

	handler := newCompanyHandler(&stubImportService{},
		&listCompanyRepo{companies: []*models.Company{company}},
		&listFeatureRepo{features: []*models.ProcessedFeature{feature}},
		&listUserRepo{users: []*models.User{user}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/companies", nil)
	rec := httptest.NewRecorder()

	handler.HandleList(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var out []CompanyOut
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)

	assert.Equal(t, company.ID, out[0].ID)
	assert.Equal(t, "https://acme.example", out[0].URL)
	assert.Equal(t, "Technology", out[0].Data["industry"])
	assert.NotContains(t, out[0].Data, "id")
	assert.NotContains(t, out[0].Data, "imported_at")

	require.Len(t, out[0].ProcessedFeatures, 1)
	assert.Equal(t, "alice", out[0].ProcessedFeatures[0].UserName)
	assert.Equal(t, "Acme", out[0].ProcessedFeatures[0].CompanyName)
	assert.True(t, out[0].ProcessedFeatures[0].Value)
}
