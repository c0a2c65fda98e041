package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/ciaraugasmoy/user-management-api/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles account persistence. It is the single writer for
// the users table; all mutations are single atomic statements.
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// CreateParams carries the fields accepted at registration time
type CreateParams struct {
	Email              string
	PasswordHash       string
	VerificationToken  string
	Nickname           string
	FirstName          string
	LastName           string
	Bio                string
	Location           string
	ProfilePictureURL  string
	GithubProfileURL   string
	LinkedinProfileURL string
	Role               Role
}

// UpdateParams carries optional fields for a partial update.
// Nil pointers are left untouched.
type UpdateParams struct {
	Nickname           *string
	FirstName          *string
	LastName           *string
	Bio                *string
	Location           *string
	ProfilePictureURL  *string
	GithubProfileURL   *string
	LinkedinProfileURL *string
	Role               *Role
}

// Create inserts a new user. Email is stored lower-cased; the unique
// index violation surfaces as ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*User, error) {
	now := time.Now()
	role := params.Role
	if role == "" {
		role = RoleAuthenticated
	}

	dbUser := &database.User{
		Email:                   NormalizeEmail(params.Email),
		PasswordHash:            params.PasswordHash,
		Nickname:                params.Nickname,
		FirstName:               params.FirstName,
		LastName:                params.LastName,
		Bio:                     params.Bio,
		Location:                params.Location,
		ProfilePictureURL:       params.ProfilePictureURL,
		GithubProfileURL:        params.GithubProfileURL,
		LinkedinProfileURL:      params.LinkedinProfileURL,
		Role:                    string(role),
		EmailVerificationToken:  &params.VerificationToken,
		EmailVerificationSentAt: &now,
		EmailVerified:           false,
	}

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("lower(email) = ?", NormalizeEmail(email)).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Update applies a partial update and returns the updated user.
// An unknown id returns ErrNotFound, never a partial write.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (*User, error) {
	dbUser := new(database.User)
	q := r.db.NewUpdate().
		Model(dbUser).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*")

	touched := false
	setIf := func(column string, value *string) {
		if value != nil {
			q = q.Set(column+" = ?", *value)
			touched = true
		}
	}
	setIf("nickname", params.Nickname)
	setIf("first_name", params.FirstName)
	setIf("last_name", params.LastName)
	setIf("bio", params.Bio)
	setIf("location", params.Location)
	setIf("profile_picture_url", params.ProfilePictureURL)
	setIf("github_profile_url", params.GithubProfileURL)
	setIf("linkedin_profile_url", params.LinkedinProfileURL)
	if params.Role != nil {
		q = q.Set("role = ?", string(*params.Role))
		touched = true
	}
	if !touched {
		return r.GetByID(ctx, id)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// UpdateField mutates a single profile column, leaving every other
// column untouched
func (r *Repository) UpdateField(ctx context.Context, id uuid.UUID, field ProfileField, value string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewUpdate().
		Model(dbUser).
		Set(field.Column()+" = ?", value).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update %s: %w", field.Column(), err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Delete removes a user by ID
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Count returns the total number of accounts
func (r *Repository) Count(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Count(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}

// List returns a page of accounts in creation order
func (r *Repository) List(ctx context.Context, offset, limit int) ([]*User, error) {
	var dbUsers []database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*User, len(dbUsers))
	for i := range dbUsers {
		users[i] = mapDBUserToModel(&dbUsers[i])
	}

	return users, nil
}

// RecordLoginFailure increments the failure counter and sets locked_until
// when the counter reaches the threshold. The increment and the lock are
// a single UPDATE so concurrent failed attempts cannot lose updates.
func (r *Repository) RecordLoginFailure(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewUpdate().
		Model(dbUser).
		Set("failed_login_attempts = failed_login_attempts + 1").
		Set("locked_until = CASE WHEN failed_login_attempts + 1 >= ? THEN ? ELSE locked_until END", threshold, lockUntil).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to record login failure: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// RecordLoginSuccess resets the failure counter, clears any lock, and
// stamps last_login_at. A success always resets the counter to zero
// regardless of its prior value.
func (r *Repository) RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewUpdate().
		Model(dbUser).
		Set("failed_login_attempts = 0").
		Set("locked_until = NULL").
		Set("last_login_at = ?", at).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Returning("*").
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to record login success: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// MarkEmailVerified flips the verified flag iff the token matches an
// unverified account. The token is cleared in the same statement, so a
// second call with the same token affects zero rows and returns
// ErrNotFound without mutating state.
func (r *Repository) MarkEmailVerified(ctx context.Context, id uuid.UUID, token string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("email_verified = ?", true).
		Set("email_verification_token = NULL").
		Set("email_verification_sent_at = NULL").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("email_verification_token = ?", token).
		Where("email_verified = ?", false).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to mark email as verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdatePassword updates a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// UpdateVerificationToken regenerates the verification token for resend
func (r *Repository) UpdateVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	now := time.Now()
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("email_verification_token = ?", token).
		Set("email_verification_sent_at = ?", now).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("email_verified = ?", false).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update verification token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// NormalizeEmail lower-cases and trims an email for storage and lookups
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:                      dbu.ID,
		Email:                   dbu.Email,
		PasswordHash:            dbu.PasswordHash,
		Nickname:                dbu.Nickname,
		FirstName:               dbu.FirstName,
		LastName:                dbu.LastName,
		Bio:                     dbu.Bio,
		Location:                dbu.Location,
		ProfilePictureURL:       dbu.ProfilePictureURL,
		GithubProfileURL:        dbu.GithubProfileURL,
		LinkedinProfileURL:      dbu.LinkedinProfileURL,
		Role:                    Role(dbu.Role),
		EmailVerified:           dbu.EmailVerified,
		EmailVerificationToken:  dbu.EmailVerificationToken,
		EmailVerificationSentAt: dbu.EmailVerificationSentAt,
		FailedLoginAttempts:     dbu.FailedLoginAttempts,
		LockedUntil:             dbu.LockedUntil,
		LastLoginAt:             dbu.LastLoginAt,
		CreatedAt:               dbu.CreatedAt,
		UpdatedAt:               dbu.UpdatedAt,
	}
}
