// Package http provides the JSON API server and its handlers.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the single error writer every handler goes through.

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"productivity/internal/core"
	"productivity/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {"message": ...} body.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	return b.Body(MessageBody{Message: msg})
}

// Write encodes the body first so an encoding failure can still become a 500.
func (b *JSONResponseBuilder) Write(ctx context.Context, w http.ResponseWriter) {
	payload, err := json.Marshal(b.body)
	status := b.statusCode
	if err != nil {
		log.FromContext(ctx).LogError(ctx, "Failed to encode response", err, "encode")
		payload, _ = json.Marshal(ErrorBody{Message: internalMessage})
		status = http.StatusInternalServerError
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(payload, '\n'))
}

// MessageBody is the body of confirmations such as logout.
type MessageBody struct {
	Message string `json:"message"`
}

// DeletedBody confirms a delete.
type DeletedBody struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ErrorBody is the single error shape of the API.
type ErrorBody struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

const internalMessage = "Internal server error"

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	switch core.KindOf(err) {
	case core.KindValidation:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindAuthentication:
		return http.StatusUnauthorized
	case core.KindAuthorization:
		return http.StatusForbidden
	case core.KindConflict:
		return http.StatusConflict
	case core.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err in the unified error shape. Details of server-side
// failures are logged, never returned.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	status := StatusFor(err)
	body := ErrorBody{Message: internalMessage}

	var de *core.Error
	switch {
	case status == http.StatusServiceUnavailable && !errors.As(err, &de):
		body.Message = "Request timed out"
		log.FromContext(ctx).LogError(ctx, "Request timed out", err, "request")
	case status >= http.StatusInternalServerError:
		log.FromContext(ctx).LogError(ctx, "Request failed", err, "request")
		if errors.As(err, &de) && de.Kind == core.KindUnavailable {
			body.Message = de.Message
		}
	case errors.As(err, &de):
		body.Message = de.Message
		body.Field = de.Field
	}

	NewJSONResponse().Status(status).Body(body).Write(ctx, w)
}
