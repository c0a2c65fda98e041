package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"ADMIN", RoleAdmin, false},
		{"admin", RoleAdmin, false},
		{"  Manager ", RoleManager, false},
		{"PROFESSIONAL", RoleProfessional, false},
		{"AUTHENTICATED", RoleAuthenticated, false},
		{"", "", true},
		{"SUPERUSER", "", true},
	}

	for _, tt := range tests {
		got, err := ParseRole(tt.input)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidRole, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestRoleValid(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("GUEST").Valid())
}

func TestRoleSetContains(t *testing.T) {
	t.Parallel()

	set := NewRoleSet(RoleAdmin, RoleManager)

	assert.True(t, set.Contains(RoleAdmin))
	assert.True(t, set.Contains(RoleManager))
	assert.False(t, set.Contains(RoleAuthenticated))
	assert.False(t, set.Contains(RoleProfessional))
}

func TestEmptyRoleSetContainsNothing(t *testing.T) {
	t.Parallel()

	set := NewRoleSet()

	assert.False(t, set.Contains(RoleAdmin))
}
