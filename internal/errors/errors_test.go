package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeValidation, http.StatusBadRequest},
		{CodeNotFound, http.StatusNotFound},
		{CodeForbidden, http.StatusForbidden},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeAlreadyExists, http.StatusConflict},
		{CodeConflictRisk, http.StatusConflict},
		{CodeExternalService, http.StatusBadGateway},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestIs_MatchesByCode(t *testing.T) {
	err := Forbidden("user unauthorized to access tag")

	assert.True(t, Is(err, ErrForbidden))
	assert.False(t, Is(err, ErrNotFound))
	assert.True(t, Is(fmt.Errorf("get tag: %w", err), ErrForbidden))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "bookmark not found", NotFound("bookmark not found").Error())
	assert.Equal(t, "invalid match_type: XOR", Validationf("invalid match_type: %s", "XOR").Error())
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("dial tcp: timeout")
	err := Wrap(cause, CodeExternalService, "tag generation failed")

	assert.Equal(t, "tag generation failed: dial tcp: timeout", err.Error())
	assert.Equal(t, http.StatusBadGateway, err.GetStatus())
	assert.ErrorIs(t, err, cause)
	assert.True(t, Is(err, ErrExternalService))
}

func TestWithCause(t *testing.T) {
	cause := fmt.Errorf("badger: conflict")
	err := ConflictRisk("tag resolution kept conflicting").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeConflictRisk, err.Code)
}

func TestValidationWithDetails(t *testing.T) {
	err := ValidationWithDetails("validation failed", map[string]string{"url": "is required"})

	var target *Error
	assert.True(t, As(err, &target))
	assert.Equal(t, map[string]string{"url": "is required"}, target.Details)
	assert.Equal(t, http.StatusBadRequest, target.HTTPStatus())
}
