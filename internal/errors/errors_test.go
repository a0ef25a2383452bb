package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageError("open session store", cause).WithContext("backend", "postgres")

	assert.Equal(t, "[STORAGE] open session store: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "postgres", err.Context["backend"])

	wrapped := fmt.Errorf("startup: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)

	assert.Equal(t, "[NOT_FOUND] session not found", NewAppError(ErrTypeNotFound, "session not found", nil).Error())
	assert.Equal(t, ErrTypeParsing, NewParsingError("bad rule file", nil).Type)
	assert.Equal(t, ErrTypeExport, NewExportError("write xlsx", cause).Type)
}

func TestValidationErrorConstructors(t *testing.T) {
	single := ErrValidation("file_id", "must be a session id")
	multi := NewValidationErrors([]ValidationError{{Field: "issue_ids", Message: "required"}})

	for _, err := range []*APIError{single, multi} {
		assert.Equal(t, http.StatusBadRequest, err.StatusCode)
		assert.Equal(t, "VALIDATION_FAILED", err.ErrorCode)
	}
	assert.Equal(t, ValidationError{Field: "file_id", Message: "must be a session id"}, single.Details)
	assert.Len(t, multi.Details.(ValidationErrors).Errors, 1)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeNotFound, "Not Found", "", "/x").
		WithExtension("trace_id", "abc").
		WithExtension("status", 999)

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, float64(404), body["status"], "standard members win over extensions")
	assert.Equal(t, "abc", body["trace_id"])
	assert.NotContains(t, body, "detail")
}
