package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistrationValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reg     Registration
		wantErr error
	}{
		{"valid", Registration{Email: "gopher@example.com", Password: "correct-horse"}, nil},
		{"empty email", Registration{Password: "correct-horse"}, ErrEmailRequired},
		{"not an address", Registration{Email: "not-an-email", Password: "correct-horse"}, ErrInvalidEmailFormat},
		{"oversized email", Registration{Email: strings.Repeat("a", 250) + "@example.com", Password: "correct-horse"}, ErrInvalidEmailFormat},
		{"empty password", Registration{Email: "gopher@example.com"}, ErrPasswordRequired},
		{"short password", Registration{Email: "gopher@example.com", Password: "short"}, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidatePassword("long-enough"))
	assert.ErrorIs(t, ValidatePassword(""), ErrPasswordRequired)
	assert.ErrorIs(t, ValidatePassword("1234567"), ErrPasswordTooShort)
}
