package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewDatabaseError("get campaign", cause)

	assert.Equal(t, "[DATABASE_ERROR] database operation failed: get campaign: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, err.IsInternal())
	assert.Equal(t, "get campaign", err.Details["operation"])
}

func TestAsAppError_FindsWrapped(t *testing.T) {
	inner := NewValidationError("goal", "must be positive")
	wrapped := fmt.Errorf("create campaign: %w", inner)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, appErr)
	assert.True(t, appErr.IsValidation())
	assert.True(t, HasCode(wrapped, ErrCodeValidation))
	assert.False(t, HasCode(wrapped, ErrCodeNotFound))
}

func TestAsAppError_PlainError(t *testing.T) {
	_, ok := AsAppError(stderrors.New("boom"))
	assert.False(t, ok)

	_, ok = AsAppError(nil)
	assert.False(t, ok)
}

func TestClassification(t *testing.T) {
	assert.True(t, NewCampaignNotFoundError("c1").IsNotFound())
	assert.True(t, NewNotOwnerError("c1").IsUnauthorized())
	assert.True(t, NewStorageError("upload", stderrors.New("disk full")).IsInternal())
}

func TestStatusOf(t *testing.T) {
	cases := map[ErrorCode]int{
		ErrCodeValidation:       http.StatusBadRequest,
		ErrCodeCampaignNotFound: http.StatusNotFound,
		ErrCodeNotOwner:         http.StatusForbidden,
		ErrCodeUnauthorized:     http.StatusUnauthorized,
		ErrCodeConflict:         http.StatusConflict,
		ErrCodePayloadTooLarge:  http.StatusRequestEntityTooLarge,
		ErrCodeCacheError:       http.StatusServiceUnavailable,
		ErrCodeExternalAPI:      http.StatusBadGateway,
		"SOMETHING_ELSE":        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusOf(code), code)
	}
	assert.Equal(t, ClassInternal, ClassOf("SOMETHING_ELSE"))
}

func TestNew_RecordsOrigin(t *testing.T) {
	err := NewCampaignNotFoundError("c1")
	assert.Contains(t, err.Origin, "errors_test.go:")
}
