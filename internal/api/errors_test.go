package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/tagmarks/tagmarks-server/internal/errors"
	"github.com/tagmarks/tagmarks-server/internal/http/response"
	"github.com/tagmarks/tagmarks-server/internal/store"
)

func TestNewAPIError(t *testing.T) {
	t.Run("domain error", func(t *testing.T) {
		err := newAPIError(http.StatusInternalServerError, "ignored",
			fmt.Errorf("wrapped: %w", domainerrors.Forbidden("user unauthorized to access tag")))
		apiErr, ok := err.(*APIError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, apiErr.GetStatus())
		assert.Equal(t, "FORBIDDEN", apiErr.Code)
		assert.Equal(t, "user unauthorized to access tag", apiErr.Message)
	})

	t.Run("store not found", func(t *testing.T) {
		err := newAPIError(http.StatusInternalServerError, "boom", store.ErrNotFound)
		assert.Equal(t, http.StatusNotFound, err.GetStatus())
	})

	t.Run("field errors", func(t *testing.T) {
		err := newAPIError(http.StatusUnprocessableEntity, "validation failed",
			&huma.ErrorDetail{Location: "body.url", Message: "expected required property url to be present"})
		apiErr := err.(*APIError)
		assert.Equal(t, http.StatusBadRequest, apiErr.GetStatus())
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
		assert.Equal(t, "url: expected required property url to be present", apiErr.Message)
		assert.Equal(t, map[string]string{"url": "expected required property url to be present"}, apiErr.Details)
	})

	t.Run("plain status", func(t *testing.T) {
		err := newAPIError(http.StatusMethodNotAllowed, "method not allowed")
		apiErr := err.(*APIError)
		assert.Equal(t, http.StatusMethodNotAllowed, apiErr.GetStatus())
		assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
		assert.Nil(t, apiErr.Details)
	})
}

func TestStatusToCode(t *testing.T) {
	cases := map[int]string{
		http.StatusBadRequest:          "VALIDATION_ERROR",
		http.StatusUnauthorized:        "UNAUTHORIZED",
		http.StatusForbidden:           "FORBIDDEN",
		http.StatusNotFound:            "NOT_FOUND",
		http.StatusConflict:            "CONFLICT_RISK",
		http.StatusTooManyRequests:     "RATE_LIMITED",
		http.StatusBadGateway:          "EXTERNAL_SERVICE_ERROR",
		http.StatusInternalServerError: "INTERNAL_ERROR",
	}
	for status, code := range cases {
		assert.Equal(t, code, statusToCode(status), "status %d", status)
	}
}

func TestEnvelopeTransformer(t *testing.T) {
	wrap := func(v any) response.Envelope {
		t.Helper()
		out, err := EnvelopeTransformer(nil, "200", v)
		require.NoError(t, err)
		env, ok := out.(response.Envelope)
		require.True(t, ok, "got %T", out)
		return env
	}

	env := wrap(map[string]int{"n": 1})
	assert.True(t, env.Success)
	assert.Equal(t, map[string]int{"n": 1}, env.Data)

	env = wrap(MessageResponse{Message: "done"})
	assert.True(t, env.Success)
	assert.Equal(t, "done", env.Message)
	assert.Nil(t, env.Data)

	env = wrap(&APIError{status: http.StatusNotFound, Code: "NOT_FOUND", Message: "bookmark not found"})
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, "bookmark not found", env.Error)

	env = wrap(domainerrors.ExternalService("tag generation failed"))
	assert.Equal(t, "EXTERNAL_SERVICE_ERROR", env.Code)

	env = wrap(errors.New("unexpected"))
	assert.Equal(t, "INTERNAL_ERROR", env.Code)

	already := response.OK("x")
	assert.Equal(t, already, wrap(already))
}
