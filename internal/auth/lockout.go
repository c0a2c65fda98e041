package auth

import (
	"context"
	"errors"
	"time"

	"github.com/ciaraugasmoy/user-management-api/internal/user"
)

var ErrAccountLocked = errors.New("account locked due to too many failed login attempts")

// LockoutGuard enforces temporary account lockout after consecutive
// failed login attempts. Counter and lock timestamp live on the user
// row and are mutated through single atomic UPDATEs, so concurrent
// failures on the same account cannot lose increments.
//
// State machine per account:
// unlocked -> (threshold consecutive failures) -> locked -> (window elapses) -> unlocked
type LockoutGuard struct {
	users     UserRepository
	threshold int
	window    time.Duration
	now       func() time.Time
}

func NewLockoutGuard(users UserRepository, threshold int, window time.Duration) *LockoutGuard {
	return &LockoutGuard{
		users:     users,
		threshold: threshold,
		window:    window,
		now:       time.Now,
	}
}

// Check returns ErrAccountLocked while the lock window is active. The
// counter is not touched for attempts rejected here.
func (g *LockoutGuard) Check(u *user.User) error {
	if u.IsLockedAt(g.now()) {
		return ErrAccountLocked
	}
	return nil
}

// RecordFailure registers a failed attempt. Reaching the threshold sets
// the lock to now + window in the same statement.
func (g *LockoutGuard) RecordFailure(ctx context.Context, u *user.User) error {
	_, err := g.users.RecordLoginFailure(ctx, u.ID, g.threshold, g.now().Add(g.window))
	return err
}

// RecordSuccess resets the counter to zero, clears the lock, and stamps
// the login time. There is no partial decay: any success fully resets.
func (g *LockoutGuard) RecordSuccess(ctx context.Context, u *user.User) (*user.User, error) {
	return g.users.RecordLoginSuccess(ctx, u.ID, g.now())
}
