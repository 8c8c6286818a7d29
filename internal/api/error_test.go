package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorBodyStringDetail(t *testing.T) {
	err := parseErrorBody(http.StatusUnauthorized,
		[]byte(`{"detail": "Incorrect username or password"}`))

	require.Equal(t, http.StatusUnauthorized, err.Status)
	require.Equal(t, "Incorrect username or password", err.Message)
}

func TestParseErrorBodyValidationList(t *testing.T) {
	body := []byte(`{"detail": [
		{"msg": "field required", "loc": ["body", "title"]},
		{"msg": "value is not a valid integer", "loc": ["body", "assigned_user_id"]}
	]}`)

	err := parseErrorBody(http.StatusUnprocessableEntity, body)

	require.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Equal(t, "field required\nvalue is not a valid integer", err.Message)
}

func TestParseErrorBodyUnknownShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "unexpected status 500"},
		{"non-json body", "Internal Server Error", "Internal Server Error"},
		{"no detail field", `{"error": "boom"}`, `{"error": "boom"}`},
		{"detail is an object", `{"detail": {"code": 7}}`, `{"code": 7}`},
		{"detail is null", `{"detail": null}`, "unexpected status 500"},
		{"detail is an empty string", `{"detail": ""}`, "unexpected status 500"},
		{"detail is an empty list", `{"detail": []}`, "unexpected status 500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErrorBody(http.StatusInternalServerError, []byte(tt.body))
			assert.Equal(t, tt.want, err.Message)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(&DisplayError{Status: http.StatusUnauthorized, Message: "nope"}))
	assert.True(t, IsAuthError(fmt.Errorf("fetching profile: %w",
		&DisplayError{Status: http.StatusUnauthorized, Message: "nope"})))

	assert.False(t, IsAuthError(nil))
	assert.False(t, IsAuthError(errors.New("connection refused")))
	assert.False(t, IsAuthError(&DisplayError{Status: http.StatusForbidden, Message: "no"}))
}
