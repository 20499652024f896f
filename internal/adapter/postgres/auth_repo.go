package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trackr/internal/domain"

	"golang.org/x/crypto/blake2b"
)

const userColumns = "id, username, password_hash, created_at"

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks an account up by name.
func (d *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username))
}

// GetByID looks an account up by id.
func (d *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

// Create inserts an account. A taken username yields domain.ErrUserExists.
func (d *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"INSERT INTO users (username, password_hash, created_at) VALUES ($1, $2, $3) RETURNING "+userColumns,
		username, passwordHash, time.Now().UTC(),
	))
	if uniqueViolation(err) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUserExists, username)
	}
	return u, err
}

// Count returns the number of accounts.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// SessionRepo stores bearer sessions. Only a digest of each token is
// persisted, so a leaked table cannot be replayed as Authorization headers.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo wraps a DB as a domain.SessionRepository.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func tokenDigest(token string) []byte {
	sum := blake2b.Sum256([]byte(token))
	return sum[:]
}

// Create stores a session for token.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO api_sessions (token_digest, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)",
		tokenDigest(token), userID, expiresAt.UTC(), time.Now().UTC(),
	)
	return err
}

// GetByToken returns the session for token, expired or not.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	s := domain.Session{Token: token}
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT user_id, expires_at, created_at FROM api_sessions WHERE token_digest = $1",
		tokenDigest(token),
	).Scan(&s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete revokes token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.db.sql.ExecContext(ctx, "DELETE FROM api_sessions WHERE token_digest = $1", tokenDigest(token))
	return err
}

// DeleteExpired removes sessions expired at cutoff.
func (r *SessionRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.sql.ExecContext(ctx, "DELETE FROM api_sessions WHERE expires_at <= $1", cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
