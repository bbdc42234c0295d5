package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorMessage(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "bad input", nil)
	assert.Equal(t, "validation: bad input", err.Error())

	wrapped := NewDomainError(ErrorTypeInternal, "query failed", assert.AnError)
	assert.Contains(t, wrapped.Error(), "internal: query failed")
	assert.Contains(t, wrapped.Error(), assert.AnError.Error())
}

func TestDomainErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapInternal("query failed", cause)

	assert.ErrorIs(t, err, cause)
}

func TestDomainErrorIs(t *testing.T) {
	assert.ErrorIs(t, WrapInternal("query failed", ErrUserNotFound), ErrUserNotFound)

	// Same type but different message is a different error
	other := NewDomainError(ErrorTypeNotFound, "rule not found", nil)
	assert.NotErrorIs(t, other, ErrUserNotFound)
}

func TestErrorTypePredicates(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrUserNotFound))
	assert.True(t, IsNotFoundError(ErrCompaniesNotFound))
	assert.True(t, IsValidationError(ErrMissingRules))
	assert.True(t, IsInternalError(WrapInternal("boom", nil)))
	assert.True(t, IsExternalError(WrapExternal("oracle down", nil)))

	assert.False(t, IsNotFoundError(ErrMissingRules))
	assert.False(t, IsValidationError(errors.New("plain")))
	assert.False(t, IsConflictError(nil))
}

func TestErrorDetails(t *testing.T) {
	err := NewDomainError(ErrorTypeValidation, "bad rule", nil).
		WithDetail("feature_name", "tech_company")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "tech_company", details["feature_name"])

	assert.Nil(t, GetErrorDetails(errors.New("plain")))
	assert.Equal(t, ErrorType(""), GetErrorType(errors.New("plain")))
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
}
