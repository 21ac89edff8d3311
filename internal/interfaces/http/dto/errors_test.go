package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/inventa/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeTransaction, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusUnprocessableEntity},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{ErrCodeBodyTooLarge, http.StatusRequestEntityTooLarge},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(shared.ErrNotFound.Code))
	assert.Equal(t, ErrCodeValidation, NormalizeErrorCode(shared.CodeValidationFailed))
	assert.Equal(t, ErrCodeTransaction, NormalizeErrorCode(shared.CodeTransactionFailed))
	assert.Equal(t, ErrCodeInvalidState, NormalizeErrorCode("INVALID_STATE"))
	assert.Equal(t, ErrCodeBadRequest, NormalizeErrorCode(ErrCodeBadRequest))
	assert.Equal(t, "SOMETHING_ELSE", NormalizeErrorCode("SOMETHING_ELSE"))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2}, 11, 2, 5)
	require.NotNil(t, resp.Meta)
	assert.True(t, resp.Success)
	assert.Equal(t, 3, resp.Meta.TotalPages)

	empty := NewSuccessResponseWithMeta([]int{}, 0, 1, 0)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestNewPageResponse(t *testing.T) {
	page := shared.NewPaginated([]string{"a"}, 6, 2, 5)

	resp := NewPageResponse(page)

	assert.Equal(t, []string{"a"}, resp.Data)
	assert.Equal(t, &Meta{Total: 6, Page: 2, PageSize: 5, TotalPages: 2}, resp.Meta)
}

func TestNewValidationErrorResponse_JSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1",
		ValidationDetailsFrom([]shared.FieldError{{Field: "name", Message: "has already been taken"}}))

	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"success": false,
		"error": {
			"code": "ERR_VALIDATION",
			"message": "Request validation failed",
			"request_id": "req-1",
			"details": [{"field": "name", "message": "has already been taken"}]
		}
	}`, string(raw))
}

func TestNewErrorResponse_OmitsEmptyRequestID(t *testing.T) {
	raw, err := json.Marshal(NewErrorResponse(ErrCodeNotFound, "Resource not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":{"code":"ERR_NOT_FOUND","message":"Resource not found"}}`, string(raw))
}
