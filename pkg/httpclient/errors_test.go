package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
)

func makeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_StructuredNotFound(t *testing.T) {
	resp := makeResponse(http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"node not found"}}`)

	err := ParseResponseError(resp, "mailer")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Contains(t, err.Error(), "node not found")
}

func TestParseResponseError_StructuredValidation(t *testing.T) {
	resp := makeResponse(http.StatusBadRequest, `{"error":{"code":"INVALID_INPUT","message":"email is required"}}`)

	err := ParseResponseError(resp, "mailer")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestParseResponseError_StructuredBusinessRule(t *testing.T) {
	resp := makeResponse(http.StatusUnprocessableEntity, `{"error":{"code":"BUSINESS_RULE","message":"factory cannot have a supplier"}}`)

	err := ParseResponseError(resp, "nodes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBusinessRule))
}

func TestParseResponseError_StructuredConflict(t *testing.T) {
	resp := makeResponse(http.StatusConflict, `{"error":{"code":"ALREADY_EXISTS","message":"email already registered"}}`)

	err := ParseResponseError(resp, "users")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	resp := makeResponse(http.StatusBadGateway, `upstream timed out`)

	err := ParseResponseError(resp, "mailer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream timed out")
}

func TestParseResponseError_ServerErrorWithStructuredBody(t *testing.T) {
	resp := makeResponse(http.StatusInternalServerError, `{"error":{"code":"INTERNAL","message":"boom"}}`)

	err := ParseResponseError(resp, "mailer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server error")
	assert.Contains(t, err.Error(), "boom")
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(400))
	assert.True(t, IsClientError(404))
	assert.True(t, IsClientError(499))
	assert.False(t, IsClientError(399))
	assert.False(t, IsClientError(500))
	assert.False(t, IsClientError(200))
}
