package http

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"

	"github.com/Altair788/DigitalBazaar/internal/domain"
)

func sampleActiveUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	now := time.Now().UTC()
	return &domain.User{
		ID:           7,
		Email:        "buyer@example.com",
		PasswordHash: string(hash),
		FirstName:    "Elena",
		Role:         domain.RoleMember,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestRegister_Created(t *testing.T) {
	env := newTestEnv(t)

	env.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 7
		}).
		Return(nil)
	env.tokenRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.UserToken")).Return(nil)

	body := `{"email": "Buyer@Example.com", "password": "sup3rsecret", "first_name": "Elena"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "buyer@example.com", data["email"])
	assert.Equal(t, false, data["is_active"])
	// The password hash never leaves the server.
	_, leaked := data["password_hash"]
	assert.False(t, leaked)
	env.userRepo.AssertExpectations(t)
}

func TestRegister_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)

	body := `{"email": "not-an-email", "password": "sup3rsecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	env.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(`{"email":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	env.userRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)

	user := sampleActiveUser(t, "sup3rsecret")
	env.userRepo.On("GetByEmail", mock.Anything, "buyer@example.com").Return(user, nil)

	body := `{"email": "buyer@example.com", "password": "sup3rsecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	tokens, ok := data["tokens"].(map[string]any)
	require.True(t, ok)
	assert.NotEmpty(t, tokens["access_token"])
	assert.NotEmpty(t, tokens["refresh_token"])
}

func TestLogin_UnconfirmedEmail(t *testing.T) {
	env := newTestEnv(t)

	user := sampleActiveUser(t, "sup3rsecret")
	user.IsActive = false
	env.userRepo.On("GetByEmail", mock.Anything, "buyer@example.com").Return(user, nil)

	body := `{"email": "buyer@example.com", "password": "sup3rsecret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestConfirmEmail_PublicEndpoint(t *testing.T) {
	env := newTestEnv(t)

	rawToken := "verification-token"
	sum := sha256.Sum256([]byte(rawToken))
	tokenHash := hex.EncodeToString(sum[:])

	storedToken := &domain.UserToken{
		ID:        3,
		UserID:    7,
		Purpose:   domain.TokenPurposeEmailVerification,
		TokenHash: tokenHash,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	user := sampleActiveUser(t, "sup3rsecret")
	user.IsActive = false

	env.tokenRepo.On("GetByHash", mock.Anything, tokenHash).Return(storedToken, nil)
	env.userRepo.On("GetByID", mock.Anything, int64(7)).Return(user, nil)
	env.userRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.IsActive
	})).Return(nil)
	env.tokenRepo.On("Delete", mock.Anything, int64(3)).Return(nil)

	// No Authorization header and no Content-Type: confirmation links are
	// opened straight from the mail client.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/confirm-email/"+rawToken, nil)
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.userRepo.AssertExpectations(t)
	env.tokenRepo.AssertExpectations(t)
}

func TestRefreshToken_Garbage(t *testing.T) {
	env := newTestEnv(t)

	body := `{"refresh_token": "garbage"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotPassword_AlwaysAccepted(t *testing.T) {
	env := newTestEnv(t)

	env.userRepo.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, apperrors.NotFound("user", "ghost@example.com"))

	body := `{"email": "ghost@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/forgot-password", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	env.tokenRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateUser_StrangerForbidden(t *testing.T) {
	env := newTestEnv(t)

	b, _ := json.Marshal(map[string]string{"first_name": "Mallory"})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/42", bytes.NewReader(b))
	req.Header.Set("Authorization", "Bearer "+env.memberToken(t, 7))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	env.userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
