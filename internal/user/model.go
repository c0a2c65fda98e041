package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                      uuid.UUID  `json:"id"`
	Email                   string     `json:"email"`
	PasswordHash            string     `json:"-"` // Never expose password hash in JSON
	Nickname                string     `json:"nickname"`
	FirstName               string     `json:"first_name"`
	LastName                string     `json:"last_name"`
	Bio                     string     `json:"bio"`
	Location                string     `json:"location"`
	ProfilePictureURL       string     `json:"profile_picture_url"`
	GithubProfileURL        string     `json:"github_profile_url"`
	LinkedinProfileURL      string     `json:"linkedin_profile_url"`
	Role                    Role       `json:"role"`
	EmailVerified           bool       `json:"email_verified"`
	EmailVerificationToken  *string    `json:"-"`
	EmailVerificationSentAt *time.Time `json:"-"`
	FailedLoginAttempts     int        `json:"-"`
	LockedUntil             *time.Time `json:"-"`
	LastLoginAt             *time.Time `json:"last_login_at,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// IsLockedAt reports whether the account is locked at the given instant.
// Lock state is derived from locked_until rather than a stored flag so
// it can never desynchronize from the failure counter.
func (u *User) IsLockedAt(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
