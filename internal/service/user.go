package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
	"github.com/Altair788/DigitalBazaar/pkg/pagination"

	"github.com/Altair788/DigitalBazaar/internal/auth"
	"github.com/Altair788/DigitalBazaar/internal/domain"
	"github.com/Altair788/DigitalBazaar/internal/event"
	"github.com/Altair788/DigitalBazaar/internal/notify"
	"github.com/Altair788/DigitalBazaar/internal/repository"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// Token lifetimes for email verification and password reset.
const (
	verificationTokenTTL  = 24 * time.Hour
	passwordResetTokenTTL = time.Hour
)

// UserService implements the business logic for user and auth operations.
type UserService struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.TokenRepository
	jwtManager *auth.JWTManager
	producer   *event.Producer
	mailer     notify.Mailer
	logger     *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	tokenRepo repository.TokenRepository,
	jwtManager *auth.JWTManager,
	producer *event.Producer,
	mailer notify.Mailer,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		jwtManager: jwtManager,
		producer:   producer,
		mailer:     mailer,
		logger:     logger,
	}
}

// RegisterInput holds the parameters for registering a new user.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Country   string
	TgID      string
	TgNick    string
}

// LoginInput holds the parameters for user login.
type LoginInput struct {
	Email    string
	Password string
}

// UpdateUserInput holds the parameters for updating a user's profile.
// Nil fields are left unchanged.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Country   *string
	TgID      *string
	TgNick    *string
}

// Register creates a new inactive account and sends a verification email.
// The account stays inactive until the email is confirmed.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.InvalidInput("email must contain @")
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        input.Phone,
		Country:      input.Country,
		TgID:         input.TgID,
		TgNick:       input.TgNick,
		Role:         domain.RoleMember,
		IsActive:     false,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.issueToken(ctx, user.ID, domain.TokenPurposeEmailVerification, verificationTokenTTL)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to send verification email",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	// Publish registration event (non-blocking on failure).
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// ConfirmEmail activates the account referenced by a verification token.
func (s *UserService) ConfirmEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperrors.InvalidInput("token is required")
	}

	stored, err := s.tokenRepo.GetByHash(ctx, hashToken(token))
	if err != nil {
		return apperrors.Unauthorized("invalid or expired verification token")
	}
	if stored.Purpose != domain.TokenPurposeEmailVerification || stored.Expired(time.Now().UTC()) {
		return apperrors.Unauthorized("invalid or expired verification token")
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return fmt.Errorf("get user for email confirmation: %w", err)
	}

	user.IsActive = true
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	if err := s.tokenRepo.Delete(ctx, stored.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete used verification token",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "email confirmed",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return nil
}

// Login authenticates a user with email and password, returning tokens.
// Accounts that have not confirmed their email are rejected.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*domain.User, *domain.TokenPair, error) {
	if input.Email == "" {
		return nil, nil, apperrors.InvalidInput("email is required")
	}
	if input.Password == "" {
		return nil, nil, apperrors.InvalidInput("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(input.Email))
	if err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	if !user.IsActive {
		return nil, nil, apperrors.Unauthorized("email address is not confirmed")
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, tokens, nil
}

// RefreshToken validates a refresh token and generates a new token pair.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	if refreshToken == "" {
		return nil, apperrors.InvalidInput("refresh token is required")
	}

	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}

	// Fetch user to get current email/role for the new access token.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired refresh token")
	}
	if !user.IsActive {
		return nil, apperrors.Unauthorized("account is deactivated")
	}

	tokens, err := s.generateTokenPair(user)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "tokens refreshed",
		slog.Int64("user_id", user.ID),
	)

	return tokens, nil
}

// ForgotPassword initiates a password reset. It never reveals whether the
// email exists.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.InvalidInput("email is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		s.logger.InfoContext(ctx, "password reset requested for unknown email",
			slog.String("email", email),
		)
		return nil
	}

	// A new request invalidates earlier reset tokens.
	if err := s.tokenRepo.DeleteByUserAndPurpose(ctx, user.ID, domain.TokenPurposePasswordReset); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate old reset tokens",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	token, err := s.issueToken(ctx, user.ID, domain.TokenPurposePasswordReset, passwordResetTokenTTL)
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		s.logger.ErrorContext(ctx, "failed to send password reset email",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishUserPasswordReset(ctx, user.ID, user.Email); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.password_reset event",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset requested",
		slog.Int64("user_id", user.ID),
	)

	return nil
}

// ResetPassword sets a new password using a reset token.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperrors.InvalidInput("reset token is required")
	}
	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}

	stored, err := s.tokenRepo.GetByHash(ctx, hashToken(token))
	if err != nil {
		return apperrors.Unauthorized("invalid or expired reset token")
	}
	if stored.Purpose != domain.TokenPurposePasswordReset || stored.Expired(time.Now().UTC()) {
		return apperrors.Unauthorized("invalid or expired reset token")
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return fmt.Errorf("get user for password reset: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user password: %w", err)
	}

	if err := s.tokenRepo.DeleteByUserAndPurpose(ctx, user.ID, domain.TokenPurposePasswordReset); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete used reset tokens",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password reset completed",
		slog.Int64("user_id", user.ID),
	)

	return nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns users newest first, with the total count.
func (s *UserService) ListUsers(ctx context.Context, p pagination.Params) ([]domain.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

// UpdateUser modifies a user's profile. Only the user themselves or an admin
// may update it.
func (s *UserService) UpdateUser(ctx context.Context, actorID int64, actorRole string, id int64, input UpdateUserInput) (*domain.User, error) {
	if actorID != id && actorRole != domain.RoleAdmin {
		return nil, apperrors.Forbidden("you may only update your own profile")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user for update: %w", err)
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}
	if input.Country != nil {
		user.Country = *input.Country
	}
	if input.TgID != nil {
		user.TgID = *input.TgID
	}
	if input.TgNick != nil {
		user.TgNick = *input.TgNick
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.Int64("user_id", user.ID),
	)

	return user, nil
}

// DeleteUser removes an account. Only the user themselves or an admin may
// delete it.
func (s *UserService) DeleteUser(ctx context.Context, actorID int64, actorRole string, id int64) error {
	if actorID != id && actorRole != domain.RoleAdmin {
		return apperrors.Forbidden("you may only delete your own account")
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.Int64("user_id", id),
	)

	return nil
}

// issueToken stores the hash of a fresh single-use token and returns the
// plaintext for delivery to the user.
func (s *UserService) issueToken(ctx context.Context, userID int64, purpose string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	record := &domain.UserToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return "", fmt.Errorf("store %s token: %w", purpose, err)
	}
	return token, nil
}

// generateTokenPair creates an access/refresh token pair.
func (s *UserService) generateTokenPair(user *domain.User) (*domain.TokenPair, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// hashToken returns the SHA256 hex digest of the given token string.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
