package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productivity/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		Body(map[string]int{"n": 1}).
		Write(context.Background(), w)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "1", w.Header().Get("X-Test"))
	assert.JSONEq(t, `{"n":1}`, w.Body.String())
}

func TestJSONResponseBuilder_EncodingFailureIs500(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Body(math.Inf(1)).Write(context.Background(), w)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Internal server error"}`, w.Body.String())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.NewValidationError("title", "title is required"), http.StatusBadRequest},
		{core.NewNotFoundError("Expense"), http.StatusNotFound},
		{core.NewAuthenticationError("nope"), http.StatusUnauthorized},
		{core.NewAuthorizationError("nope"), http.StatusForbidden},
		{core.NewConflictError("email", "taken"), http.StatusConflict},
		{fmt.Errorf("list: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestWriteError(t *testing.T) {
	decode := func(w *httptest.ResponseRecorder) map[string]any {
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body
	}

	w := httptest.NewRecorder()
	WriteError(context.Background(), w, fmt.Errorf("create expense: %w", core.NewValidationError("amount", "amount is required")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"message": "amount is required", "field": "amount"}, decode(w))

	w = httptest.NewRecorder()
	WriteError(context.Background(), w, core.NewNotFoundError("Task"))
	assert.Equal(t, map[string]any{"message": "Task not found"}, decode(w))

	w = httptest.NewRecorder()
	WriteError(context.Background(), w, errors.New("pq: password authentication failed for user secret"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, map[string]any{"message": "Internal server error"}, decode(w))

	w = httptest.NewRecorder()
	WriteError(context.Background(), w, context.DeadlineExceeded)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, map[string]any{"message": "Request timed out"}, decode(w))
}
