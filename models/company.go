package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var countryPattern = regexp.MustCompile(`\(([^)]+)\)`)

// Company represents an imported company record with its business
// attributes. Rules reference attributes by name, including the
// computed ones exposed through ResolveAttribute.
type Company struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	URL               string     `json:"url" db:"url"`
	FoundedYear       int        `json:"founded_year" db:"founded_year"`
	TotalEmployees    int        `json:"total_employees" db:"total_employees"`
	HeadquartersCity  string     `json:"headquarters_city" db:"headquarters_city"`
	EmployeeLocations string     `json:"employee_locations" db:"employee_locations"`
	EmployeeGrowth2Y  *float64   `json:"employee_growth_2y,omitempty" db:"employee_growth_2y"`
	EmployeeGrowth1Y  *float64   `json:"employee_growth_1y,omitempty" db:"employee_growth_1y"`
	EmployeeGrowth6M  *float64   `json:"employee_growth_6m,omitempty" db:"employee_growth_6m"`
	Description       string     `json:"description,omitempty" db:"description"`
	Industry          string     `json:"industry,omitempty" db:"industry"`
	ImportedAt        time.Time  `json:"imported_at" db:"imported_at"`
	LastProcessedAt   *time.Time `json:"last_processed_at,omitempty" db:"last_processed_at"`
}

// TableName returns the table name for the Company model
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new Company instance
func NewCompany(name, url string) *Company {
	return &Company{
		ID:         uuid.New(),
		Name:       name,
		URL:        url,
		ImportedAt: time.Now(),
	}
}

// HeadquartersCountry extracts the country from the city string.
// "Paris (France)" yields "France"; no parenthesized segment yields "".
func (c *Company) HeadquartersCountry() string {
	if c.HeadquartersCity == "" {
		return ""
	}
	m := countryPattern.FindStringSubmatch(c.HeadquartersCity)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// CompanyAge returns the age in years based on the foundation year,
// or 0 when the foundation year is unknown.
func (c *Company) CompanyAge() int {
	if c.FoundedYear == 0 {
		return 0
	}
	return time.Now().Year() - c.FoundedYear
}

// accessor maps an attribute name to its value provider, built once
// for the Company type rather than looked up reflectively per call.
type accessor func(c *Company) any

var companyAccessors = map[string]accessor{
	"name":                 func(c *Company) any { return c.Name },
	"url":                  func(c *Company) any { return c.URL },
	"founded_year":         func(c *Company) any { return c.FoundedYear },
	"total_employees":      func(c *Company) any { return c.TotalEmployees },
	"headquarters_city":    func(c *Company) any { return c.HeadquartersCity },
	"employee_locations":   func(c *Company) any { return c.EmployeeLocations },
	"employee_growth_2y":   func(c *Company) any { return deref(c.EmployeeGrowth2Y) },
	"employee_growth_1y":   func(c *Company) any { return deref(c.EmployeeGrowth1Y) },
	"employee_growth_6m":   func(c *Company) any { return deref(c.EmployeeGrowth6M) },
	"description":          func(c *Company) any { return c.Description },
	"industry":             func(c *Company) any { return c.Industry },
	"headquarters_country": func(c *Company) any { return c.HeadquartersCountry() },
	"company_age":          func(c *Company) any { return c.CompanyAge() },
}

// ResolveAttribute returns the value of a named attribute. Computed
// attributes (headquarters_country, company_age) resolve alongside
// stored fields.
func (c *Company) ResolveAttribute(name string) (any, bool) {
	get, ok := companyAccessors[name]
	if !ok {
		return nil, false
	}
	return get(c), true
}

func deref(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
