package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeOf_WrappedAppError(t *testing.T) {
	base := NewNotFoundError("user 42 not found")
	wrapped := fmt.Errorf("set location: %w", base)

	assert.Equal(t, ErrorTypeNotFound, TypeOf(wrapped))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsValidation(wrapped))
}

func TestTypeOf_PlainError(t *testing.T) {
	assert.Equal(t, ErrorType(""), TypeOf(stderrors.New("boom")))
	assert.False(t, IsNotFound(nil))
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewInternalError("failed to list points of interest", cause)

	assert.Equal(t, "INTERNAL: failed to list points of interest: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "VALIDATION: latitude out of range", NewValidationError("latitude out of range").Error())
	assert.True(t, IsConflict(NewConflictError("duplicate")))
}
