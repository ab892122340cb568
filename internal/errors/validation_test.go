package errors

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorFormatting(t *testing.T) {
	err := NewValidationError("duration", "must be at least 1", 0)

	assert.Equal(t, "duration", err.Field)
	assert.Equal(t, 0, err.Value)
	assert.Equal(t, "validation error on field 'duration': must be at least 1", err.Error())
}

func TestValidationErrorsMessage(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())

	errs = append(errs, *NewValidationError("test_id", "is required", nil))
	assert.Equal(t, "validation failed: test_id is required", errs.Error())

	errs = append(errs, *NewValidationErrorWithRule("action", "must be one of: next prev goto", "oneof", "sideways"))
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())
	assert.Equal(t, "oneof", errs[1].Rule)
}

func TestToValidationErrors(t *testing.T) {
	type startRequest struct {
		TestID uint   `json:"test_id" validate:"required"`
		Action string `json:"action" validate:"omitempty,oneof=next prev goto"`
	}

	v := validator.New()
	err := v.Struct(startRequest{Action: "sideways"})
	require.Error(t, err)

	converted := ToValidationErrors(err)
	require.Len(t, converted, 2)

	byField := map[string]ValidationError{}
	for _, ve := range converted {
		byField[ve.Field] = ve
	}
	assert.Equal(t, "is required", byField["TestID"].Message)
	assert.Equal(t, "required", byField["TestID"].Rule)
	assert.Contains(t, byField["Action"].Message, "must be one of")
}

func TestToValidationErrorsIgnoresOtherErrors(t *testing.T) {
	converted := ToValidationErrors(assert.AnError)
	assert.Empty(t, converted)
}
