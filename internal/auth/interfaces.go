package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ciaraugasmoy/user-management-api/internal/user"
)

// TokenService defines the interface for token creation and validation.
// The production implementation is PasetoService (PASETO v4.local).
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, role user.Role, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserRepository is the credential store consumed by the auth service
// and the lockout guard. *user.Repository satisfies it; tests use an
// in-memory fake.
type UserRepository interface {
	Create(ctx context.Context, params user.CreateParams) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	Update(ctx context.Context, id uuid.UUID, params user.UpdateParams) (*user.User, error)
	UpdateField(ctx context.Context, id uuid.UUID, field user.ProfileField, value string) (*user.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, offset, limit int) ([]*user.User, error)
	RecordLoginFailure(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (*user.User, error)
	RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) (*user.User, error)
	MarkEmailVerified(ctx context.Context, id uuid.UUID, token string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateVerificationToken(ctx context.Context, id uuid.UUID, token string) error
}

// EmailService defines the interface for email operations. All sends
// are best-effort; callers never fail an account mutation on a send
// error.
type EmailService interface {
	SendVerificationEmail(ctx context.Context, toEmail string, userID uuid.UUID, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
	SendRoleUpgradeEmail(ctx context.Context, toEmail string, newRole user.Role) error
}
