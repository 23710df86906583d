// Package http provides the JSON API server and its handlers.
//
// This file implements request body decoding and path parameter helpers.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"productivity/internal/core"
)

// MaxBodyBytes caps every JSON request body.
const MaxBodyBytes = 1 << 20

// DecodeJSON reads one JSON object from the request body into dst. Unknown
// fields are ignored. Malformed or oversized bodies are validation errors.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		var (
			de       *core.Error
			typeErr  *json.UnmarshalTypeError
			tooLarge *http.MaxBytesError
		)
		switch {
		case errors.As(err, &de):
			return de
		case errors.Is(err, io.EOF):
			return core.NewValidationError("", "Request body is required")
		case errors.As(err, &tooLarge):
			return core.NewValidationError("", "Request body is too large")
		case errors.As(err, &typeErr):
			return core.NewValidationError(typeErr.Field, "%s has the wrong type", fieldName(typeErr.Field))
		default:
			return core.NewValidationError("", "Malformed JSON body")
		}
	}

	if dec.More() {
		return core.NewValidationError("", "Request body must contain a single JSON object")
	}
	return nil
}

func fieldName(f string) string {
	if f == "" {
		return "value"
	}
	return f
}

// PathID returns the {id} path value, trimmed.
func PathID(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("id"))
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
