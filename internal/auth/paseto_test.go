package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciaraugasmoy/user-management-api/internal/user"
)

var testPasetoKey = []byte("0123456789abcdef0123456789abcdef")

func newTestPasetoService(t *testing.T) *PasetoService {
	t.Helper()
	svc, err := NewPasetoService(testPasetoKey)
	require.NoError(t, err)
	return svc
}

func TestNewPasetoServiceRejectsShortKey(t *testing.T) {
	t.Parallel()

	_, err := NewPasetoService([]byte("too-short"))
	require.Error(t, err)
}

func TestPasetoTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestPasetoService(t)
	userID := uuid.New()

	token, err := svc.CreateToken(userID, "gopher@example.com", user.RoleManager, time.Hour)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "gopher@example.com", claims.Email)
	assert.Equal(t, user.RoleManager, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestPasetoRoleIsSnapshottedAtIssuance(t *testing.T) {
	t.Parallel()

	svc := newTestPasetoService(t)

	token, err := svc.CreateToken(uuid.New(), "gopher@example.com", user.RoleAuthenticated, time.Hour)
	require.NoError(t, err)

	// The claims carry whatever role the account had when the token was
	// minted, not the account's current role
	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAuthenticated, claims.Role)
}

func TestVerifyTokenExpired(t *testing.T) {
	t.Parallel()

	svc := newTestPasetoService(t)

	token, err := svc.CreateToken(uuid.New(), "gopher@example.com", user.RoleAuthenticated, -time.Minute)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyTokenGarbage(t *testing.T) {
	t.Parallel()

	svc := newTestPasetoService(t)

	_, err := svc.VerifyToken("v4.local.not-a-real-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenWrongKey(t *testing.T) {
	t.Parallel()

	svc := newTestPasetoService(t)
	other, err := NewPasetoService([]byte("fedcba9876543210fedcba9876543210"))
	require.NoError(t, err)

	token, err := svc.CreateToken(uuid.New(), "gopher@example.com", user.RoleAdmin, time.Hour)
	require.NoError(t, err)

	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
