package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	UserName string   `json:"user_name" validate:"required"`
	URLs     []string `json:"urls" validate:"required,min=1"`
}

func TestValidateStruct(t *testing.T) {
	valid := sampleRequest{UserName: "alice", URLs: []string{"https://acme.example"}}
	assert.NoError(t, ValidateStruct(valid))
}

func TestValidateStructMissingFields(t *testing.T) {
	err := ValidateStruct(sampleRequest{})
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	fields := GetValidationFields(err)
	assert.Contains(t, fields, "UserName")
	assert.Contains(t, fields, "URLs")
	assert.Equal(t, "UserName is required", fields["UserName"])
}

func TestGetValidationFieldsNonValidationError(t *testing.T) {
	assert.Nil(t, GetValidationFields(assert.AnError))
	assert.False(t, IsValidationError(assert.AnError))
}
