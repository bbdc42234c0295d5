package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siftlab/companysift/models"
	"github.com/siftlab/companysift/repositories"
	"github.com/siftlab/companysift/services"
)

type fakeTx struct{ ctx context.Context }

func (t fakeTx) Commit() error            { return nil }
func (t fakeTx) Rollback() error          { return nil }
func (t fakeTx) Context() context.Context { return t.ctx }

type fakeTxManager struct{}

func (fakeTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return fakeTx{ctx: ctx}, nil
}

func (fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, fakeTx{ctx: ctx})
}

type fakeCompanyRepo struct {
	companies []*models.Company
	createErr error
}

func (r *fakeCompanyRepo) Create(_ context.Context, company *models.Company) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.companies = append(r.companies, company)
	return nil
}

func (r *fakeCompanyRepo) GetByURL(_ context.Context, url string) (*models.Company, error) {
	for _, c := range r.companies {
		if c.URL == url {
			return c, nil
		}
	}
	return nil, nil
}

func (r *fakeCompanyRepo) GetByURLs(_ context.Context, urls []string) ([]*models.Company, error) {
	return nil, nil
}

func (r *fakeCompanyRepo) List(_ context.Context) ([]*models.Company, error) {
	return r.companies, nil
}

func (r *fakeCompanyRepo) TouchProcessed(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

func newService(repo *fakeCompanyRepo) *Service {
	repos := &repositories.Repositories{Companies: repo}
	return NewService(repos, fakeTxManager{}, zap.NewNop())
}

func TestImportJSON(t *testing.T) {
	repo := &fakeCompanyRepo{}
	svc := newService(repo)

	growth := 12.5
	inputs := []CompanyInput{
		{Name: "Acme", URL: "https://acme.example", FoundedYear: 2015, TotalEmployees: 150,
			HeadquartersCity: "Paris (France)", Industry: "Technology", EmployeeGrowth1Y: &growth},
		{Name: "Crumb", URL: "https://crumb.example", Industry: "Food"},
	}

	summary, err := svc.ImportJSON(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ImportedRecords)
	assert.Zero(t, summary.SkippedDuplicates)
	assert.Zero(t, summary.RecordErrors)
	require.Len(t, repo.companies, 2)

	acme := repo.companies[0]
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, 2015, acme.FoundedYear)
	require.NotNil(t, acme.EmployeeGrowth1Y)
	assert.Equal(t, 12.5, *acme.EmployeeGrowth1Y)
	assert.NotEqual(t, uuid.Nil, acme.ID)
	assert.False(t, acme.ImportedAt.IsZero())
}

func TestImportJSONSkipsDuplicates(t *testing.T) {
	repo := &fakeCompanyRepo{}
	require.NoError(t, repo.Create(context.Background(), models.NewCompany("Acme", "https://acme.example")))
	svc := newService(repo)

	inputs := []CompanyInput{
		{Name: "Acme", URL: "https://acme.example"}, // already stored
		{Name: "Crumb", URL: "https://crumb.example"},
		{Name: "Crumb Again", URL: "https://crumb.example"}, // duplicate within batch
	}

	summary, err := svc.ImportJSON(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ImportedRecords)
	assert.Equal(t, 2, summary.SkippedDuplicates)
	assert.Len(t, repo.companies, 2)
}

func TestImportJSONRecordErrors(t *testing.T) {
	repo := &fakeCompanyRepo{}
	svc := newService(repo)

	inputs := []CompanyInput{
		{Name: "", URL: "https://nameless.example"},
		{Name: "NoURL", URL: ""},
		{Name: "Fine", URL: "https://fine.example"},
	}

	summary, err := svc.ImportJSON(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ImportedRecords)
	assert.Equal(t, 2, summary.RecordErrors)
	assert.Equal(t, []string{"", "NoURL"}, summary.Errors)
}

func TestImportJSONEmpty(t *testing.T) {
	svc := newService(&fakeCompanyRepo{})

	_, err := svc.ImportJSON(context.Background(), nil)
	assert.ErrorIs(t, err, services.ErrNoImportData)
}

const sampleCSV = `company_name,url,founded_year,total_employees,headquarters_city,employee_locations,employee_rowth_2Y,employee_growth_1Y,employee_growth_6M,description,industry
Acme,https://acme.example,2015,150,Paris (France),France; Germany,30.5,12.5,4.0,Widgets,Technology
Crumb,https://crumb.example,,12,Lyon (France),France,,,,Bread,Food
`

func TestImportCSV(t *testing.T) {
	repo := &fakeCompanyRepo{}
	svc := newService(repo)

	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ImportedRecords)
	require.Len(t, repo.companies, 2)

	acme := repo.companies[0]
	assert.Equal(t, "Acme", acme.Name)
	assert.Equal(t, "https://acme.example", acme.URL)
	assert.Equal(t, 2015, acme.FoundedYear)
	assert.Equal(t, 150, acme.TotalEmployees)
	assert.Equal(t, "Paris (France)", acme.HeadquartersCity)
	require.NotNil(t, acme.EmployeeGrowth2Y)
	assert.Equal(t, 30.5, *acme.EmployeeGrowth2Y)

	// Empty numeric fields degrade instead of failing the row
	crumb := repo.companies[1]
	assert.Zero(t, crumb.FoundedYear)
	assert.Nil(t, crumb.EmployeeGrowth2Y)
	assert.Nil(t, crumb.EmployeeGrowth1Y)
}

func TestImportCSVModernGrowthHeader(t *testing.T) {
	repo := &fakeCompanyRepo{}
	svc := newService(repo)

	csvData := "company_name,url,employee_growth_2Y\nAcme,https://acme.example,21.0\n"
	summary, err := svc.ImportCSV(context.Background(), strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ImportedRecords)
	require.NotNil(t, repo.companies[0].EmployeeGrowth2Y)
	assert.Equal(t, 21.0, *repo.companies[0].EmployeeGrowth2Y)
}

func TestImportCSVMalformed(t *testing.T) {
	svc := newService(&fakeCompanyRepo{})

	// Unbalanced quote makes the reader fail
	_, err := svc.ImportCSV(context.Background(), strings.NewReader("company_name,url\n\"Acme,https://acme.example\n"))
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))
}

func TestImportCSVEmpty(t *testing.T) {
	svc := newService(&fakeCompanyRepo{})

	_, err := svc.ImportCSV(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, services.ErrNoImportData)

	_, err = svc.ImportCSV(context.Background(), strings.NewReader("company_name,url\n"))
	assert.ErrorIs(t, err, services.ErrNoImportData)
}
