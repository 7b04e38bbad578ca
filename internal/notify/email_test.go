package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Altair788/DigitalBazaar/pkg/httpclient"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestEmailClient_SendVerificationEmail(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/send", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewEmailClient(
		httpclient.New(httpclient.Config{}),
		server.URL,
		"Digital Bazaar",
		"https://bazaar.example.com",
		testLogger(),
	)

	err := client.SendVerificationEmail(context.Background(), "alice@example.com", "tok-123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.To)
	assert.Equal(t, "Confirm your email address", got.Subject)
	assert.Contains(t, got.Body, "confirm-email/tok-123")
}

func TestEmailClient_SendPasswordResetEmail(t *testing.T) {
	var got sendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewEmailClient(
		httpclient.New(httpclient.Config{}),
		server.URL,
		"Digital Bazaar",
		"https://bazaar.example.com",
		testLogger(),
	)

	err := client.SendPasswordResetEmail(context.Background(), "bob@example.com", "tok-456")
	require.NoError(t, err)
	assert.Equal(t, "Reset your password", got.Subject)
	assert.Contains(t, got.Body, "reset-password?token=tok-456")
}

func TestEmailClient_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"INVALID_INPUT","message":"bad recipient"}`))
	}))
	defer server.Close()

	client := NewEmailClient(
		httpclient.New(httpclient.Config{}),
		server.URL,
		"Digital Bazaar",
		"https://bazaar.example.com",
		testLogger(),
	)

	err := client.SendVerificationEmail(context.Background(), "not-an-email", "tok")
	assert.Error(t, err)
}

func TestLogMailer_AlwaysSucceeds(t *testing.T) {
	m := NewLogMailer(testLogger())
	assert.NoError(t, m.SendVerificationEmail(context.Background(), "a@b.c", "t"))
	assert.NoError(t, m.SendPasswordResetEmail(context.Background(), "a@b.c", "t"))
}
