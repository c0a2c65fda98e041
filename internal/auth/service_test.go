package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ciaraugasmoy/user-management-api/internal/logging"
	"github.com/ciaraugasmoy/user-management-api/internal/user"
)

// --- fakes ---

// fakeUserRepo is an in-memory UserRepository mirroring the store's
// observable semantics, including the atomic lockout mutations.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*user.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, params user.CreateParams) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, params.Email) {
			return nil, user.ErrDuplicateEmail
		}
	}

	now := time.Now()
	token := params.VerificationToken
	u := &user.User{
		ID:                      uuid.New(),
		Email:                   strings.ToLower(params.Email),
		PasswordHash:            params.PasswordHash,
		Nickname:                params.Nickname,
		FirstName:               params.FirstName,
		LastName:                params.LastName,
		Bio:                     params.Bio,
		Location:                params.Location,
		ProfilePictureURL:       params.ProfilePictureURL,
		GithubProfileURL:        params.GithubProfileURL,
		LinkedinProfileURL:      params.LinkedinProfileURL,
		Role:                    params.Role,
		EmailVerificationToken:  &token,
		EmailVerificationSentAt: &now,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	f.users[u.ID] = u
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id uuid.UUID, params user.UpdateParams) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}

	if params.Nickname != nil {
		u.Nickname = *params.Nickname
	}
	if params.FirstName != nil {
		u.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		u.LastName = *params.LastName
	}
	if params.Bio != nil {
		u.Bio = *params.Bio
	}
	if params.Location != nil {
		u.Location = *params.Location
	}
	if params.ProfilePictureURL != nil {
		u.ProfilePictureURL = *params.ProfilePictureURL
	}
	if params.GithubProfileURL != nil {
		u.GithubProfileURL = *params.GithubProfileURL
	}
	if params.LinkedinProfileURL != nil {
		u.LinkedinProfileURL = *params.LinkedinProfileURL
	}
	if params.Role != nil {
		u.Role = *params.Role
	}
	u.UpdatedAt = time.Now()

	out := *u
	return &out, nil
}

func (f *fakeUserRepo) UpdateField(ctx context.Context, id uuid.UUID, field user.ProfileField, value string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}

	switch field {
	case user.FieldNickname:
		u.Nickname = value
	case user.FieldBio:
		u.Bio = value
	case user.FieldLocation:
		u.Location = value
	case user.FieldProfilePictureURL:
		u.ProfilePictureURL = value
	case user.FieldGithubProfileURL:
		u.GithubProfileURL = value
	case user.FieldLinkedinProfileURL:
		u.LinkedinProfileURL = value
	}
	u.UpdatedAt = time.Now()

	out := *u
	return &out, nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

func (f *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*user.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (f *fakeUserRepo) RecordLoginFailure(ctx context.Context, id uuid.UUID, threshold int, lockUntil time.Time) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}

	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= threshold {
		until := lockUntil
		u.LockedUntil = &until
	}

	out := *u
	return &out, nil
}

func (f *fakeUserRepo) RecordLoginSuccess(ctx context.Context, id uuid.UUID, at time.Time) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}

	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	lastLogin := at
	u.LastLoginAt = &lastLogin

	out := *u
	return &out, nil
}

func (f *fakeUserRepo) MarkEmailVerified(ctx context.Context, id uuid.UUID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok || u.EmailVerified || u.EmailVerificationToken == nil || *u.EmailVerificationToken != token {
		return user.ErrNotFound
	}

	u.EmailVerified = true
	u.EmailVerificationToken = nil
	return nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) UpdateVerificationToken(ctx context.Context, id uuid.UUID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return user.ErrNotFound
	}
	now := time.Now()
	u.EmailVerificationToken = &token
	u.EmailVerificationSentAt = &now
	return nil
}

// setUser mutates a stored user directly, for arranging test state
func (f *fakeUserRepo) setUser(id uuid.UUID, mutate func(u *user.User)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		mutate(u)
	}
}

type fakeEmailService struct {
	mu      sync.Mutex
	sendErr error

	verificationSends int
	resetSends        int
	upgradeSends      int
}

func (f *fakeEmailService) SendVerificationEmail(ctx context.Context, toEmail string, userID uuid.UUID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verificationSends++
	return f.sendErr
}

func (f *fakeEmailService) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetSends++
	return f.sendErr
}

func (f *fakeEmailService) SendRoleUpgradeEmail(ctx context.Context, toEmail string, newRole user.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upgradeSends++
	return f.sendErr
}

type fakeTokenService struct {
	createErr error
}

func (f *fakeTokenService) CreateToken(userID uuid.UUID, email string, role user.Role, duration time.Duration) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return "token-for-" + email + "-as-" + role.String(), nil
}

func (f *fakeTokenService) VerifyToken(tokenStr string) (*TokenClaims, error) {
	return nil, ErrInvalidToken
}

// --- helpers ---

const (
	testLockoutThreshold = 3
	testLockoutWindow    = 15 * time.Minute
)

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeEmailService) {
	t.Helper()

	repo := newFakeUserRepo()
	emails := &fakeEmailService{}
	lockout := NewLockoutGuard(repo, testLockoutThreshold, testLockoutWindow)
	logger := logging.NewLogger(true)

	svc := NewService(repo, nil, &fakeTokenService{}, emails, lockout, logger, 15*time.Minute)
	return svc, repo, emails
}

func registerVerifiedUser(t *testing.T, svc *Service, repo *fakeUserRepo, email, password string) *user.User {
	t.Helper()

	u, err := svc.Register(context.Background(), user.Registration{Email: email, Password: password})
	require.NoError(t, err)

	repo.setUser(u.ID, func(u *user.User) {
		u.EmailVerified = true
		u.EmailVerificationToken = nil
	})
	return u
}

// --- registration ---

func TestRegisterCreatesUnverifiedAccountWithDefaultRole(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)

	u, err := svc.Register(context.Background(), user.Registration{
		Email:    "Gopher@Example.com",
		Password: "correct-horse",
		Nickname: "gopher",
	})
	require.NoError(t, err)

	assert.Equal(t, user.RoleAuthenticated, u.Role)
	assert.False(t, u.EmailVerified)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)

	stored, err := repo.GetByEmail(context.Background(), "gopher@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.EmailVerificationToken)
	assert.NotEmpty(t, *stored.EmailVerificationToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), user.Registration{Email: "gopher@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), user.Registration{Email: "GOPHER@example.com", Password: "another-pass"})
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)

	// Two racing registrations of the same address must yield exactly
	// one account; the store's uniqueness check is the arbiter (the
	// unique index on lower(email) in production, the locked map here)
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Register(context.Background(), user.Registration{
				Email:    "gopher@example.com",
				Password: "correct-horse",
			})
			errs <- err
		}()
	}

	var successes, duplicates int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			successes++
		case errors.Is(err, user.ErrDuplicateEmail):
			duplicates++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, duplicates)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	tests := []struct {
		name    string
		reg     user.Registration
		wantErr error
	}{
		{"empty email", user.Registration{Password: "correct-horse"}, user.ErrEmailRequired},
		{"malformed email", user.Registration{Email: "not-an-email", Password: "correct-horse"}, user.ErrInvalidEmailFormat},
		{"empty password", user.Registration{Email: "gopher@example.com"}, user.ErrPasswordRequired},
		{"short password", user.Registration{Email: "gopher@example.com", Password: "short"}, user.ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.reg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// --- login ---

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	u := registerVerifiedUser(t, svc, repo, "gopher@example.com", "correct-horse")

	tokens, err := svc.Login(context.Background(), "gopher@example.com", "correct-horse")
	require.NoError(t, err)

	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.Contains(t, tokens.AccessToken, "gopher@example.com")
	assert.Equal(t, int64(900), tokens.ExpiresIn)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginUnknownEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWrongPasswordIncrementsCounter(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	u := registerVerifiedUser(t, svc, repo, "gopher@example.com", "correct-horse")

	_, err := svc.Login(context.Background(), "gopher@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestLoginLocksAfterThresholdFailures(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	u := registerVerifiedUser(t, svc, repo, "gopher@example.com", "correct-horse")

	for i := 0; i < testLockoutThreshold; i++ {
		_, err := svc.Login(context.Background(), "gopher@example.com", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LockedUntil)
	assert.True(t, stored.IsLockedAt(time.Now()))

	// Even the correct password is rejected while locked, and the
	// rejected attempt does not grow the counter
	_, err = svc.Login(context.Background(), "gopher@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrAccountLocked)

	stored, err = repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, testLockoutThreshold, stored.FailedLoginAttempts)
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	u := registerVerifiedUser(t, svc, repo, "gopher@example.com", "correct-horse")

	for i := 0; i < testLockoutThreshold-1; i++ {
		_, err := svc.Login(context.Background(), "gopher@example.com", "wrong-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := svc.Login(context.Background(), "gopher@example.com", "correct-horse")
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestLoginAfterLockWindowElapses(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	u := registerVerifiedUser(t, svc, repo, "gopher@example.com", "correct-horse")

	// Arrange an already-expired lock
	repo.setUser(u.ID, func(u *user.User) {
		past := time.Now().Add(-time.Minute)
		u.LockedUntil = &past
		u.FailedLoginAttempts = testLockoutThreshold
	})

	tokens, err := svc.Login(context.Background(), "gopher@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.Register(context.Background(), user.Registration{Email: "gopher@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "gopher@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

// --- email verification ---

func TestVerifyEmail(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)

	u, err := svc.Register(context.Background(), user.Registration{Email: "gopher@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	token := *stored.EmailVerificationToken

	require.NoError(t, svc.VerifyEmail(context.Background(), u.ID, token))

	stored, err = repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
	assert.Nil(t, stored.EmailVerificationToken)

	// The token is single-use
	err = svc.VerifyEmail(context.Background(), u.ID, token)
	assert.ErrorIs(t, err, ErrEmailAlreadyVerified)
}

func TestVerifyEmailWrongToken(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)

	u, err := svc.Register(context.Background(), user.Registration{Email: "gopher@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	err = svc.VerifyEmail(context.Background(), u.ID, "not-the-token")
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.False(t, stored.EmailVerified)
}

func TestVerifyEmailUnknownUser(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	err := svc.VerifyEmail(context.Background(), uuid.New(), "some-token")
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)

	u, err := svc.Register(context.Background(), user.Registration{Email: "gopher@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	var token string
	repo.setUser(u.ID, func(u *user.User) {
		token = *u.EmailVerificationToken
		past := time.Now().Add(-25 * time.Hour)
		u.EmailVerificationSentAt = &past
	})

	err = svc.VerifyEmail(context.Background(), u.ID, token)
	assert.ErrorIs(t, err, ErrVerificationExpired)
}

// --- role upgrade ---

func TestUpgradeRole(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	u := registerVerifiedUser(t, svc, repo, "gopher@example.com", "correct-horse")

	upgraded, err := svc.UpgradeRole(context.Background(), u.ID, user.RoleProfessional)
	require.NoError(t, err)
	assert.Equal(t, user.RoleProfessional, upgraded.Role)

	stored, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleProfessional, stored.Role)
}

func TestUpgradeRoleSurvivesEmailFailure(t *testing.T) {
	t.Parallel()

	svc, repo, emails := newTestService(t)
	u := registerVerifiedUser(t, svc, repo, "gopher@example.com", "correct-horse")

	emails.mu.Lock()
	emails.sendErr = context.DeadlineExceeded
	emails.mu.Unlock()

	// The notification is best-effort; a send failure never rolls back
	// the role change
	upgraded, err := svc.UpgradeRole(context.Background(), u.ID, user.RoleProfessional)
	require.NoError(t, err)
	assert.Equal(t, user.RoleProfessional, upgraded.Role)
}

func TestUpgradeRoleUnknownUser(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	_, err := svc.UpgradeRole(context.Background(), uuid.New(), user.RoleProfessional)
	assert.ErrorIs(t, err, user.ErrNotFound)
}

// --- profile fields ---

func TestGetProfileField(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	u := registerVerifiedUser(t, svc, repo, "gopher@example.com", "correct-horse")

	_, err := svc.UpdateProfileField(context.Background(), u.ID, user.FieldBio, "writes Go")
	require.NoError(t, err)

	value, err := svc.GetProfileField(context.Background(), u.ID, user.FieldBio)
	require.NoError(t, err)
	assert.Equal(t, "writes Go", value)

	// An unset field reads as empty
	value, err = svc.GetProfileField(context.Background(), u.ID, user.FieldLocation)
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestGetIDByEmail(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	u := registerVerifiedUser(t, svc, repo, "gopher@example.com", "correct-horse")

	id, err := svc.GetIDByEmail(context.Background(), "Gopher@Example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = svc.GetIDByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestListReturnsTotal(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	registerVerifiedUser(t, svc, repo, "a@example.com", "correct-horse")
	registerVerifiedUser(t, svc, repo, "b@example.com", "correct-horse")
	registerVerifiedUser(t, svc, repo, "c@example.com", "correct-horse")

	users, total, err := svc.List(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, users, 2)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	u := registerVerifiedUser(t, svc, repo, "gopher@example.com", "correct-horse")

	require.NoError(t, svc.Delete(context.Background(), u.ID))

	_, err := repo.GetByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, user.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), u.ID), user.ErrNotFound)
}
