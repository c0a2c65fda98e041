package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the database representation of an account row.
// Domain packages map this to their own models and never expose it.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID                      uuid.UUID  `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email                   string     `bun:"email,notnull,unique"`
	PasswordHash            string     `bun:"password_hash,notnull"`
	Nickname                string     `bun:"nickname"`
	FirstName               string     `bun:"first_name"`
	LastName                string     `bun:"last_name"`
	Bio                     string     `bun:"bio"`
	Location                string     `bun:"location"`
	ProfilePictureURL       string     `bun:"profile_picture_url"`
	GithubProfileURL        string     `bun:"github_profile_url"`
	LinkedinProfileURL      string     `bun:"linkedin_profile_url"`
	Role                    string     `bun:"role,notnull,default:'AUTHENTICATED'"`
	EmailVerified           bool       `bun:"email_verified,notnull,default:false"`
	EmailVerificationToken  *string    `bun:"email_verification_token"`
	EmailVerificationSentAt *time.Time `bun:"email_verification_sent_at"`
	FailedLoginAttempts     int        `bun:"failed_login_attempts,notnull,default:0"`
	LockedUntil             *time.Time `bun:"locked_until"`
	LastLoginAt             *time.Time `bun:"last_login_at"`
	CreatedAt               time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt               time.Time  `bun:"updated_at,notnull,default:current_timestamp"`
}
