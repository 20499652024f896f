package domain

import (
	"context"
	"errors"
	"time"
)

// ErrUserExists is returned by UserRepository.Create for a taken username.
var ErrUserExists = errors.New("username already taken")

// User is an account of the Remote Weight API. Accounts provisioned from an
// OIDC identity have an empty PasswordHash and cannot log in with a password.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session binds a bearer token to a user until ExpiresAt.
type Session struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// UserRepository stores accounts. Lookups return (nil, nil) when the user
// does not exist.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository stores bearer sessions. GetByToken returns (nil, nil) for
// an unknown token and returns expired sessions as-is; expiry is the caller's
// decision. DeleteExpired removes sessions expiring at or before the cutoff
// and reports how many went.
type SessionRepository interface {
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
