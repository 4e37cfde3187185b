package apperror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("Category is required"), want: http.StatusBadRequest},
		{name: "unauthorized", err: Unauthorized("The user is not authorized"), want: http.StatusUnauthorized},
		{name: "not found", err: NotFound("Category not found"), want: http.StatusNotFound},
		{name: "conflict", err: Conflict("in use"), want: http.StatusConflict},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", NotFound("x")), want: http.StatusNotFound},
		{name: "internal", err: Internal("Error creating product", errors.New("boom")), want: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestMessage_HidesInternalCause(t *testing.T) {
	assert.Equal(t, "Error creating product", Message(Internal("Error creating product", errors.New("socket closed"))))
	assert.Equal(t, internalMessage, Message(errors.New("socket closed")))
	assert.Equal(t, "Category not found", Message(NotFound("Category not found")))
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(context.Background(), rec, Internal("Error deleting user", errors.New("dial tcp: refused")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"message": "Error deleting user"}, body)
}
