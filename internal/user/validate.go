package user

import (
	"errors"
	"net/mail"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

// maxEmailLength is the RFC 5321 limit on an address
const maxEmailLength = 254

// Validate checks the registration input. The returned sentinels let
// handlers map validation failures to 400s while everything else
// surfaces as an internal failure.
func (r Registration) Validate() error {
	if r.Email == "" {
		return ErrEmailRequired
	}
	if len(r.Email) > maxEmailLength {
		return ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return ErrInvalidEmailFormat
	}
	return ValidatePassword(r.Password)
}

// ValidatePassword enforces the minimum password policy. It is shared
// between registration and password reset.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}
