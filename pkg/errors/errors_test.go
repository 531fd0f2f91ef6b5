package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized,
		ErrForbidden, ErrInternal, ErrConflict,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j])
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	withCause := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Equal(t, "INTERNAL_ERROR: something broke: db connection lost", withCause.Error())

	bare := &AppError{Code: "NOT_FOUND", Message: "cart not found"}
	assert.Equal(t, "NOT_FOUND: cart not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestNotFound(t *testing.T) {
	err := NotFound("product", "red-shoes")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, `product "red-shoes" not found`, err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, IsNotFound(err))
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("user", "username", "anna")
	require.NotNil(t, err)
	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.Contains(t, err.Message, "anna")
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, IsAlreadyExists(err))
}

func TestConflict(t *testing.T) {
	err := Conflict("cart is already ordered")
	assert.Equal(t, "CONFLICT", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, IsAlreadyExists(err))
}

func TestInvalidInputUnauthorizedForbidden(t *testing.T) {
	assert.True(t, errors.Is(InvalidInput("qty must be positive"), ErrInvalidInput))
	assert.Equal(t, http.StatusUnauthorized, Unauthorized("login required").Status)
	assert.Equal(t, http.StatusForbidden, Forbidden("not yours").Status)
}

func TestInternal(t *testing.T) {
	err := Internal(fmt.Errorf("segfault"))
	assert.Equal(t, "an internal error occurred", err.Message)
	assert.Contains(t, err.Error(), "segfault")
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "get cart")
	assert.Equal(t, "get cart: resource not found", wrapped.Error())
	assert.True(t, IsNotFound(wrapped))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"app error", NotFound("category", "shoes"), http.StatusNotFound},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"already exists", ErrAlreadyExists, http.StatusConflict},
		{"conflict", ErrConflict, http.StatusConflict},
		{"invalid input", ErrInvalidInput, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"wrapped sentinel", fmt.Errorf("outer: %w", ErrNotFound), http.StatusNotFound},
		{"wrapped app error", fmt.Errorf("outer: %w", Conflict("closed")), http.StatusConflict},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}
