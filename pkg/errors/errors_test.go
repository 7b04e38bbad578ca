package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	e := InvalidInput("name must contain at least 2 characters")
	assert.Equal(t, "INVALID_INPUT: name must contain at least 2 characters: invalid input", e.Error())

	bare := &AppError{Code: "X", Message: "y"}
	assert.Equal(t, "X: y", bare.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	assert.ErrorIs(t, NotFound("node", "42"), ErrNotFound)
	assert.ErrorIs(t, AlreadyExists("product", "triple", "n/m"), ErrAlreadyExists)
	assert.ErrorIs(t, BusinessRule("factory must not have a supplier"), ErrBusinessRule)
	assert.ErrorIs(t, InvalidInput("bad"), ErrInvalidInput)
}

func TestHTTPStatus_AppError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NotFound("ad", "1"), http.StatusNotFound},
		{AlreadyExists("user", "email", "a@b.com"), http.StatusConflict},
		{InvalidInput("bad field"), http.StatusBadRequest},
		{BusinessRule("max hierarchy level is 2"), http.StatusUnprocessableEntity},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("not the author"), http.StatusForbidden},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "error: %v", tt.err)
	}
}

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(fmt.Errorf("get node: %w", ErrNotFound)))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(fmt.Errorf("create: %w", ErrBusinessRule)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}

func TestHTTPStatus_ConstraintDistinctFromValidation(t *testing.T) {
	// A duplicate product triple must never surface as a validation failure.
	constraint := AlreadyExists("product", "(network_node, name, model)", "n/m")
	assert.NotEqual(t, HTTPStatus(InvalidInput("x")), HTTPStatus(constraint))
	assert.False(t, errors.Is(constraint, ErrInvalidInput))
}
