package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Altair788/DigitalBazaar/pkg/httpclient"
)

// HTTPDoer abstracts the HTTP client used to reach the mail gateway.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Mailer sends transactional emails to users.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, email, token string) error
	SendPasswordResetEmail(ctx context.Context, email, token string) error
}

// sendRequest is the payload accepted by the mail gateway.
type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// EmailClient delivers emails through an external HTTP mail gateway.
type EmailClient struct {
	httpClient HTTPDoer
	baseURL    string
	fromName   string
	publicURL  string
	logger     *slog.Logger
}

// NewEmailClient creates a mail gateway client. publicURL is the externally
// reachable base URL used to build confirmation links.
func NewEmailClient(httpClient HTTPDoer, baseURL, fromName, publicURL string, logger *slog.Logger) *EmailClient {
	return &EmailClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		fromName:   fromName,
		publicURL:  publicURL,
		logger:     logger,
	}
}

// SendVerificationEmail sends an account activation email containing a
// confirmation link with the given token.
func (c *EmailClient) SendVerificationEmail(ctx context.Context, email, token string) error {
	body := fmt.Sprintf(
		"Welcome to %s!\n\nConfirm your email address by following the link:\n%s/api/v1/auth/confirm-email/%s\n\nThe link expires in 24 hours.",
		c.fromName, c.publicURL, token,
	)
	return c.send(ctx, sendRequest{
		To:      email,
		Subject: "Confirm your email address",
		Body:    body,
	})
}

// SendPasswordResetEmail sends a password reset email containing a reset link
// with the given token.
func (c *EmailClient) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	body := fmt.Sprintf(
		"A password reset was requested for your %s account.\n\nReset your password by following the link:\n%s/reset-password?token=%s\n\nIf you did not request this, ignore this email.",
		c.fromName, c.publicURL, token,
	)
	return c.send(ctx, sendRequest{
		To:      email,
		Subject: "Reset your password",
		Body:    body,
	})
}

func (c *EmailClient) send(ctx context.Context, payload sendRequest) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/send", bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return httpclient.ParseResponseError(resp, "mail")
	}

	c.logger.DebugContext(ctx, "email sent",
		slog.String("to", payload.To),
		slog.String("subject", payload.Subject),
	)

	return nil
}

// LogMailer logs emails instead of sending them. It is used when no mail
// gateway is configured, so local environments work without one.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that only logs.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerificationEmail(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "mail gateway not configured, logging verification email",
		slog.String("to", email),
		slog.String("token", token),
	)
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "mail gateway not configured, logging password reset email",
		slog.String("to", email),
		slog.String("token", token),
	)
	return nil
}
