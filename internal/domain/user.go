package domain

import (
	"time"
	"unicode"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
)

// Role constants define the allowed user roles.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// Token purposes stored in user_tokens.
const (
	TokenPurposeEmailVerification = "email_verification"
	TokenPurposePasswordReset     = "password_reset"
)

// IsValidRole checks whether the given role string is a valid user role.
func IsValidRole(role string) bool {
	return role == RoleMember || role == RoleAdmin
}

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone,omitempty"`
	Country      string    `json:"country,omitempty"`
	TgID         string    `json:"tg_id,omitempty"`
	TgNick       string    `json:"tg_nick,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserToken is a single-use verification or password-reset token. Only the
// sha256 hash of the token is stored.
type UserToken struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Purpose   string    `json:"purpose"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the token is past its expiry.
func (t *UserToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// TokenPair holds an access and refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ValidatePassword enforces the password policy: at least 8 characters with
// at least one letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.InvalidInput("password must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.InvalidInput("password must contain at least one letter and one digit")
	}
	return nil
}
