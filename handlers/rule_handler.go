package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/siftlab/companysift/services/rules"
	"github.com/siftlab/companysift/utils"
)

// CreateRulesRequest is the body of POST /api/v1/rules
type CreateRulesRequest struct {
	UserName string              `json:"user_name" validate:"required"`
	Rules    []rules.RulePayload `json:"rules" validate:"required,min=1"`
}

// ProcessCompaniesRequest is the body of POST /api/v1/rules/process
type ProcessCompaniesRequest struct {
	UserName string   `json:"user_name" validate:"required"`
	URLs     []string `json:"urls" validate:"required,min=1"`
}

// RuleService defines the rule operations the handler depends on
type RuleService interface {
	// CreateRules persists rule definitions for a user
	CreateRules(ctx context.Context, userName string, payloads []rules.RulePayload) (*rules.CreateSummary, error)

	// ProcessCompanies applies a user's rules to companies by URL
	ProcessCompanies(ctx context.Context, userName string, urls []string) ([]rules.CompanyResult, error)
}

// RuleHandler handles rule-related HTTP requests
type RuleHandler struct {
	service RuleService
	logger  *zap.Logger
}

// NewRuleHandler creates a new RuleHandler
func NewRuleHandler(service RuleService, logger *zap.Logger) *RuleHandler {
	return &RuleHandler{
		service: service,
		logger:  logger,
	}
}

// HandleCreateRules handles POST /api/v1/rules
func (h *RuleHandler) HandleCreateRules(w http.ResponseWriter, r *http.Request) {
	var req CreateRulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	summary, err := h.service.CreateRules(r.Context(), req.UserName, req.Rules)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse{
		Data:    summary,
		Message: "Rule created successfully",
	})
}

// HandleProcessCompanies handles POST /api/v1/rules/process
func (h *RuleHandler) HandleProcessCompanies(w http.ResponseWriter, r *http.Request) {
	var req ProcessCompaniesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	results, err := h.service.ProcessCompanies(r.Context(), req.UserName, req.URLs)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteJSON(w, http.StatusOK, results)
}
