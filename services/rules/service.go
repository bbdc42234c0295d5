// Package rules implements rule definition and batch evaluation on top
// of the engine and the persistence layer.
package rules

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/siftlab/companysift/engine"
	"github.com/siftlab/companysift/models"
	"github.com/siftlab/companysift/repositories"
	"github.com/siftlab/companysift/services"
)

// defaultConcurrency bounds the number of companies evaluated in
// parallel during a processing batch.
const defaultConcurrency = 4

// RulePayload is one rule definition as submitted by a client. The
// operation block stays raw until the engine parser decodes it.
type RulePayload struct {
	Input       string          `json:"input" validate:"required"`
	FeatureName string          `json:"feature_name" validate:"required"`
	Match       int             `json:"match"`
	Default     int             `json:"default"`
	Operation   json.RawMessage `json:"operation" validate:"required"`
}

// CreatedRule summarizes one persisted rule in a creation response
type CreatedRule struct {
	Input           string             `json:"input"`
	FeatureName     string             `json:"feature_name"`
	Match           int                `json:"match"`
	Default         int                `json:"default"`
	BooleanOperator string             `json:"boolean_operator"`
	Conditions      []models.Condition `json:"conditions"`
}

// CreateSummary is the result of a rule-creation request. Duplicate
// definitions are skipped silently, so Rules may be shorter than the
// submitted payload list.
type CreateSummary struct {
	UserName string        `json:"user_name"`
	Rules    []CreatedRule `json:"rules"`
}

// CompanyResult holds one company's evaluation outcomes: the emitted
// integer per feature name.
type CompanyResult struct {
	Company  string
	Features map[string]int
}

// MarshalJSON flattens the result so feature names sit alongside the
// company name, matching the processing response format.
func (r CompanyResult) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Features)+1)
	out["company"] = r.Company
	for name, value := range r.Features {
		out[name] = value
	}
	return json.Marshal(out)
}

// Service orchestrates rule creation and batch company processing
type Service struct {
	repos       *repositories.Repositories
	txManager   repositories.TransactionManager
	engine      *engine.Engine
	logger      *zap.Logger
	concurrency int
}

// NewService creates a new rule service
func NewService(repos *repositories.Repositories, txManager repositories.TransactionManager, eng *engine.Engine, logger *zap.Logger) *Service {
	return &Service{
		repos:       repos,
		txManager:   txManager,
		engine:      eng,
		logger:      logger,
		concurrency: defaultConcurrency,
	}
}

// CreateRules persists a batch of rule definitions for a user,
// creating the user on first contact. A payload whose (input,
// feature_name) pair the user already owns is skipped without error.
func (s *Service) CreateRules(ctx context.Context, userName string, payloads []RulePayload) (*CreateSummary, error) {
	if userName == "" {
		return nil, services.ErrMissingUserName
	}
	if len(payloads) == 0 {
		return nil, services.ErrMissingRules
	}

	summary := &CreateSummary{UserName: userName, Rules: []CreatedRule{}}

	err := s.txManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		user, err := s.findOrCreateUser(ctx, userName)
		if err != nil {
			return err
		}

		for _, payload := range payloads {
			op, err := engine.ParseOperation(payload.Operation)
			if err != nil {
				return services.WrapValidation(err.Error(), err)
			}

			exists, err := s.repos.Rules.Exists(ctx, user.ID, payload.Input, payload.FeatureName)
			if err != nil {
				return services.WrapInternal("failed to check for existing rule", err)
			}
			if exists {
				s.logger.Debug("skipping duplicate rule",
					zap.String("user_name", userName),
					zap.String("input", payload.Input),
					zap.String("feature_name", payload.FeatureName))
				continue
			}

			rule := models.NewRule(user.ID, payload.Input, payload.FeatureName,
				payload.Match, payload.Default, op.BooleanOperator, op.Conditions)
			if err := s.repos.Rules.Create(ctx, rule); err != nil {
				return services.WrapInternal("failed to create rule", err)
			}

			boolOp := string(rule.BooleanOperator)
			if rule.BooleanOperator == models.BooleanNone {
				boolOp = "N/A"
			}
			summary.Rules = append(summary.Rules, CreatedRule{
				Input:           rule.Input,
				FeatureName:     rule.FeatureName,
				Match:           rule.Match,
				Default:         rule.Default,
				BooleanOperator: boolOp,
				Conditions:      rule.Conditions,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rules created",
		zap.String("user_name", userName),
		zap.Int("requested", len(payloads)),
		zap.Int("created", len(summary.Rules)))

	return summary, nil
}

// ProcessCompanies applies every rule the user owns to every company
// matching the given URLs and records one feature row per (rule,
// company) pair. Companies are evaluated concurrently with bounded
// parallelism; each company commits in its own transaction. The first
// failing company aborts the batch.
func (s *Service) ProcessCompanies(ctx context.Context, userName string, urls []string) ([]CompanyResult, error) {
	if userName == "" {
		return nil, services.ErrMissingUserName
	}
	if len(urls) == 0 {
		return nil, services.ErrMissingURLs
	}

	user, err := s.repos.Users.GetByUserName(ctx, userName)
	if err != nil {
		return nil, services.WrapInternal("failed to load user", err)
	}
	if user == nil {
		return nil, services.ErrUserNotFound
	}

	companies, err := s.repos.Companies.GetByURLs(ctx, urls)
	if err != nil {
		return nil, services.WrapInternal("failed to load companies", err)
	}
	if len(companies) == 0 {
		return nil, services.ErrCompaniesNotFound
	}

	ruleSet, err := s.repos.Rules.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, services.WrapInternal("failed to load rules", err)
	}

	results := make([]CompanyResult, len(companies))
	sem := make(chan struct{}, s.concurrency)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for i, company := range companies {
		wg.Add(1)
		go func(i int, company *models.Company) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := s.processCompany(ctx, ruleSet, company)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			results[i] = result
		}(i, company)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	s.logger.Info("companies processed",
		zap.String("user_name", userName),
		zap.Int("companies", len(companies)),
		zap.Int("rules", len(ruleSet)))

	return results, nil
}

// processCompany applies the rule set to one company inside a single
// transaction, recording the outcome of each rule.
func (s *Service) processCompany(ctx context.Context, ruleSet []*models.Rule, company *models.Company) (CompanyResult, error) {
	result := CompanyResult{
		Company:  company.Name,
		Features: make(map[string]int, len(ruleSet)),
	}

	err := s.txManager.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
		for _, rule := range ruleSet {
			outcome, err := s.engine.Apply(ctx, rule, company)
			if err != nil {
				return mapEngineError(rule, err)
			}
			result.Features[rule.FeatureName] = outcome.Value

			feature := models.NewProcessedFeature(company.ID, rule.ID, rule.UserID, rule.FeatureName, outcome.Matched)
			if err := s.repos.Features.Create(ctx, feature); err != nil {
				return services.WrapInternal("failed to record feature", err)
			}
		}
		return s.repos.Companies.TouchProcessed(ctx, company.ID, time.Now().UTC())
	})
	if err != nil {
		return CompanyResult{}, err
	}
	return result, nil
}

// mapEngineError classifies evaluation failures: bad rule data
// (unresolvable attributes, non-numeric comparisons, unsupported
// boolean operators) is the client's to fix, everything else is ours.
func mapEngineError(rule *models.Rule, err error) error {
	var (
		attrErr   *engine.AttributeError
		coerceErr *engine.CoercionError
		boolOpErr *engine.BooleanOperatorError
	)
	if errors.As(err, &attrErr) || errors.As(err, &coerceErr) || errors.As(err, &boolOpErr) {
		domainErr := services.WrapValidation(err.Error(), err)
		if de, ok := domainErr.(*services.DomainError); ok {
			de.WithDetail("feature_name", rule.FeatureName)
		}
		return domainErr
	}
	return services.WrapInternal("rule evaluation failed", err)
}

func (s *Service) findOrCreateUser(ctx context.Context, userName string) (*models.User, error) {
	user, err := s.repos.Users.GetByUserName(ctx, userName)
	if err != nil {
		return nil, services.WrapInternal("failed to load user", err)
	}
	if user != nil {
		return user, nil
	}

	user = models.NewUser(userName)
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, services.WrapInternal("failed to create user", err)
	}
	return user, nil
}
