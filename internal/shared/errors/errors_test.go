package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Behavior(t *testing.T) {
	err := NewValidationError("invalid input").WithCode("VAL001").WithDetail("field", "name").WithComponent("test-component")
	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "VAL001", err.Code)
	assert.Equal(t, "test-component", err.Component)
	assert.Equal(t, "name", err.Details["field"])
	assert.Equal(t, "invalid input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.HTTPCode)
}

func TestAppError_WithCause_Unwrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewInfrastructureError("database unavailable").WithCause(cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, "database unavailable: connection refused", err.Error())
}

func TestValidationErrors(t *testing.T) {
	ve := NewValidationErrors()
	assert.Nil(t, ve.ToAppError())

	ve.Add("title", "is required", "")
	assert.True(t, ve.HasErrors())
	appErr := ve.ToAppError()
	require.NotNil(t, appErr)
	assert.Equal(t, ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "validation failed: title is required", appErr.Message)
	assert.True(t, IsValidation(ve))
}

func TestTypePredicates(t *testing.T) {
	nf := NewNotFoundError("opportunity")
	assert.True(t, IsNotFound(nf))
	assert.Equal(t, "opportunity not found", nf.Error()[:len("opportunity not found")])
	assert.False(t, IsValidation(nf))
	assert.False(t, IsAuthentication(nf))
	assert.False(t, IsAuthorization(nf))

	assert.True(t, IsAuthentication(NewAuthenticationError("bad")))
	assert.True(t, IsAuthentication(ErrTokenExpired))
	assert.True(t, IsAuthorization(NewAuthorizationError("bad")))
	assert.True(t, IsConflict(NewConflictError("full")))
	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", ErrNotFound)))
}

func TestWrapError(t *testing.T) {
	nf := NewNotFoundError("application")
	assert.Same(t, nf, WrapError(fmt.Errorf("ctx: %w", nf), "ignored"))

	wrapped := WrapError(fmt.Errorf("boom"), "insert failed")
	assert.Equal(t, ErrorTypeInfrastructure, wrapped.Type)
	assert.Equal(t, http.StatusInternalServerError, wrapped.HTTPCode)
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"app error", NewConflictError("no slots"), http.StatusConflict},
		{"not found sentinel", ErrNotFound, http.StatusNotFound},
		{"expired token", ErrTokenExpired, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"invalid object", fmt.Errorf("parse: %w", ErrInvalidObject), http.StatusBadRequest},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}
