package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productivity/internal/core"
	"productivity/internal/services"
)

func decodeBody(t *testing.T, body string, dst any) error {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return DecodeJSON(httptest.NewRecorder(), r, dst)
}

func TestDecodeJSON(t *testing.T) {
	var in services.ExpenseInput
	require.NoError(t, decodeBody(t, `{"title":"Coffee","amount":"4,50","userId":"someone-else"}`, &in))
	require.NotNil(t, in.Title)
	assert.Equal(t, "Coffee", *in.Title)
	assert.Equal(t, int64(450), in.Amount.Cents)
	assert.Nil(t, in.Type)
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
		wantMsg   string
	}{
		{name: "empty", body: "", wantMsg: "Request body is required"},
		{name: "malformed", body: `{"title":`, wantMsg: "Malformed JSON body"},
		{name: "not json", body: `title=x`, wantMsg: "Malformed JSON body"},
		{name: "wrong type", body: `{"title":5}`, wantField: "title", wantMsg: "title has the wrong type"},
		{name: "bad amount", body: `{"amount":"abc"}`, wantField: "amount"},
		{name: "two objects", body: `{} {}`, wantMsg: "Request body must contain a single JSON object"},
		{name: "too large", body: `{"title":"` + strings.Repeat("x", MaxBodyBytes) + `"}`, wantMsg: "Request body is too large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var in services.ExpenseInput
			err := decodeBody(t, tt.body, &in)
			var de *core.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, core.KindValidation, de.Kind)
			assert.Equal(t, tt.wantField, de.Field)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, de.Message)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := bearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "Basic abc")
	_, ok = bearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "bearer  abc.def ")
	tok, ok := bearerToken(r)
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)
}
