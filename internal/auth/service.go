package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ciaraugasmoy/user-management-api/internal/logging"
	"github.com/ciaraugasmoy/user-management-api/internal/user"
)

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrEmailNotVerified         = errors.New("email not verified, please check your inbox")
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	ErrVerificationExpired      = errors.New("verification token has expired")
	ErrEmailAlreadyVerified     = errors.New("email already verified")
)

// AuthTokens is the response of a successful login. There is no refresh
// or revocation path: a token stays valid until its natural expiry.
type AuthTokens struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Service owns account state transitions: registration, login, email
// verification, profile updates, role upgrades, and deletion. Each
// operation maps to a single atomic store call.
type Service struct {
	userRepo            UserRepository
	passwordResetRepo   *PasswordResetRepository
	tokenService        TokenService
	emailService        EmailService
	lockout             *LockoutGuard
	logger              *logging.Logger
	accessTokenDuration time.Duration
}

func NewService(
	userRepo UserRepository,
	passwordResetRepo *PasswordResetRepository,
	tokenService TokenService,
	emailService EmailService,
	lockout *LockoutGuard,
	logger *logging.Logger,
	accessTokenDuration time.Duration,
) *Service {
	return &Service{
		userRepo:            userRepo,
		passwordResetRepo:   passwordResetRepo,
		tokenService:        tokenService,
		emailService:        emailService,
		lockout:             lockout,
		logger:              logger,
		accessTokenDuration: accessTokenDuration,
	}
}

// Register creates a new account with the default role and unverified
// state, then sends the verification email without blocking the caller.
func (s *Service) Register(ctx context.Context, params user.Registration) (*user.User, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Hash password using argon2id
	passwordHash, err := hashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Generate verification token
	verificationToken, err := generateRandomToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	newUser, err := s.userRepo.Create(ctx, user.CreateParams{
		Email:              params.Email,
		PasswordHash:       passwordHash,
		VerificationToken:  verificationToken,
		Nickname:           params.Nickname,
		FirstName:          params.FirstName,
		LastName:           params.LastName,
		Bio:                params.Bio,
		Location:           params.Location,
		ProfilePictureURL:  params.ProfilePictureURL,
		GithubProfileURL:   params.GithubProfileURL,
		LinkedinProfileURL: params.LinkedinProfileURL,
		Role:               user.RoleAuthenticated,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Send verification email in a goroutine (non-blocking)
	go func() {
		// Create a new context for the goroutine to avoid cancellation issues
		emailCtx := context.Background()
		if err := s.emailService.SendVerificationEmail(emailCtx, newUser.Email, newUser.ID, verificationToken); err != nil {
			// Log error but don't fail registration
			// User can request a new verification email later
			s.logger.Warn("failed to send verification email", "email", newUser.Email, "error", err)
		}
	}()

	return newUser, nil
}

// Login authenticates a user and mints an access token carrying a role
// snapshot. The lockout guard is consulted before the credential is
// checked: attempts against a locked account are rejected outright and
// do not touch the failure counter.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthTokens, error) {
	// Validate input
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.lockout.Check(existingUser); err != nil {
		return nil, err
	}

	if !verifyPassword(existingUser.PasswordHash, password) {
		if err := s.lockout.RecordFailure(ctx, existingUser); err != nil {
			s.logger.Error("failed to record login failure", "user_id", existingUser.ID, "error", err)
		}
		return nil, ErrInvalidCredentials
	}

	// Check if email is verified
	if !existingUser.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	// A success always resets the failure counter, whatever its prior value
	updatedUser, err := s.lockout.RecordSuccess(ctx, existingUser)
	if err != nil {
		return nil, fmt.Errorf("failed to record login success: %w", err)
	}

	accessToken, err := s.tokenService.CreateToken(updatedUser.ID, updatedUser.Email, updatedUser.Role, s.accessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}

	return &AuthTokens{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTokenDuration.Seconds()),
	}, nil
}

// VerifyEmail flips the verified flag iff the token matches the account
// and was not used before. Reuse or mismatch leaves state untouched.
func (s *Service) VerifyEmail(ctx context.Context, id uuid.UUID, token string) error {
	existingUser, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if existingUser.EmailVerified {
		return ErrEmailAlreadyVerified
	}
	if existingUser.EmailVerificationToken == nil || *existingUser.EmailVerificationToken != token {
		return ErrInvalidVerificationToken
	}

	// Check if token has expired (24 hours)
	if existingUser.EmailVerificationSentAt == nil {
		return ErrVerificationExpired
	}
	if time.Now().After(existingUser.EmailVerificationSentAt.Add(24 * time.Hour)) {
		return ErrVerificationExpired
	}

	// The store clears the token in the same statement, so a concurrent
	// duplicate call affects zero rows
	if err := s.userRepo.MarkEmailVerified(ctx, id, token); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("failed to verify email: %w", err)
	}

	return nil
}

// GetByID fetches a single account
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetIDByEmail resolves an account ID from its email address
func (s *Service) GetIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	return existingUser.ID, nil
}

// List returns a page of accounts plus the total count
func (s *Service) List(ctx context.Context, offset, limit int) ([]*user.User, int, error) {
	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	users, err := s.userRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update applies a partial update to an account
func (s *Service) Update(ctx context.Context, id uuid.UUID, params user.UpdateParams) (*user.User, error) {
	return s.userRepo.Update(ctx, id, params)
}

// UpdateProfileField mutates one profile column on an account
func (s *Service) UpdateProfileField(ctx context.Context, id uuid.UUID, field user.ProfileField, value string) (*user.User, error) {
	return s.userRepo.UpdateField(ctx, id, field, value)
}

// GetProfileField reads one profile column off an account
func (s *Service) GetProfileField(ctx context.Context, id uuid.UUID, field user.ProfileField) (string, error) {
	existingUser, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return field.ValueFrom(existingUser), nil
}

// UpgradeRole changes an account's role and notifies the owner by
// email. The notification is best-effort: a send failure is logged and
// swallowed, never rolling back the role change.
func (s *Service) UpgradeRole(ctx context.Context, id uuid.UUID, newRole user.Role) (*user.User, error) {
	updatedUser, err := s.userRepo.Update(ctx, id, user.UpdateParams{Role: &newRole})
	if err != nil {
		return nil, err
	}

	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendRoleUpgradeEmail(emailCtx, updatedUser.Email, newRole); err != nil {
			s.logger.Warn("failed to send role upgrade notification", "email", updatedUser.Email, "error", err)
		}
	}()

	return updatedUser, nil
}

// Delete removes an account
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.userRepo.Delete(ctx, id)
}

// RequestPasswordReset initiates the password reset process
// Always returns nil to prevent email enumeration attacks
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal if user exists
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		// Log error but return nil to prevent enumeration
		s.logger.Warn("failed to get user for password reset", "error", err)
		return nil
	}

	token, err := generateRandomToken()
	if err != nil {
		s.logger.Warn("failed to generate password reset token", "error", err)
		return nil
	}

	// Store token in Redis with 1-hour TTL
	if err := s.passwordResetRepo.StorePasswordResetToken(ctx, existingUser.ID, token); err != nil {
		s.logger.Warn("failed to store password reset token", "error", err)
		return nil
	}

	// Send password reset email in goroutine (non-blocking)
	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendPasswordResetEmail(emailCtx, existingUser.Email, token); err != nil {
			s.logger.Warn("failed to send password reset email", "email", existingUser.Email, "error", err)
		}
	}()

	return nil
}

// ResetPassword resets a user's password using a valid reset token
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := user.ValidatePassword(newPassword); err != nil {
		return err
	}

	userID, err := s.passwordResetRepo.GetPasswordResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrPasswordResetTokenNotFound) {
			return ErrPasswordResetTokenNotFound
		}
		return fmt.Errorf("failed to get password reset token: %w", err)
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	// Delete used token
	if err := s.passwordResetRepo.DeletePasswordResetToken(ctx, token); err != nil {
		s.logger.Warn("failed to delete password reset token", "error", err)
	}

	return nil
}

// ResendVerificationEmail sends a new verification email to the user
// Always returns nil to prevent email enumeration attacks
func (s *Service) ResendVerificationEmail(ctx context.Context, email string) error {
	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Don't reveal if user exists
		if errors.Is(err, user.ErrNotFound) {
			return nil
		}
		s.logger.Warn("failed to get user for resend verification", "error", err)
		return nil
	}

	// Don't reveal that email is already verified
	if existingUser.EmailVerified {
		return nil
	}

	token, err := generateRandomToken()
	if err != nil {
		s.logger.Warn("failed to generate verification token", "error", err)
		return nil
	}

	if err := s.userRepo.UpdateVerificationToken(ctx, existingUser.ID, token); err != nil {
		s.logger.Warn("failed to update verification token", "error", err)
		return nil
	}

	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendVerificationEmail(emailCtx, existingUser.Email, existingUser.ID, token); err != nil {
			s.logger.Warn("failed to resend verification email", "email", existingUser.Email, "error", err)
		}
	}()

	return nil
}
