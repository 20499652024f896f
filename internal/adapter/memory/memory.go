// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"sync"
	"time"

	"trackr/internal/domain"
)

type weightRow struct {
	userID int64
	domain.WeightEntry
}

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	weights  []weightRow
	users    []*domain.User
	sessions map[string]*domain.Session

	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.WeightRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- WeightRepository ---

func (db *DB) find(userID int64, date string) int {
	for i, w := range db.weights {
		if w.userID == userID && w.Date == date {
			return i
		}
	}
	return -1
}

// ListEntries lists the user's entries in insertion order.
func (db *DB) ListEntries(ctx context.Context, userID int64) ([]domain.WeightEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := []domain.WeightEntry{}
	for _, w := range db.weights {
		if w.userID == userID {
			result = append(result, w.WeightEntry)
		}
	}
	return result, nil
}

// AddEntry appends an entry; one per user and date.
func (db *DB) AddEntry(ctx context.Context, userID int64, date string, weight float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.find(userID, date) >= 0 {
		return domain.ErrEntryExists
	}
	db.weights = append(db.weights, weightRow{
		userID:      userID,
		WeightEntry: domain.WeightEntry{Date: date, Weight: weight},
	})
	return nil
}

// DeleteEntry removes the user's entry for date.
func (db *DB) DeleteEntry(ctx context.Context, userID int64, date string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.find(userID, date)
	if i < 0 {
		return domain.ErrEntryNotFound
	}
	db.weights = append(db.weights[:i], db.weights[i+1:]...)
	return nil
}

// ModifyEntry replaces the weight of the user's entry for date.
func (db *DB) ModifyEntry(ctx context.Context, userID int64, date string, weight float64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.find(userID, date)
	if i < 0 {
		return domain.ErrEntryNotFound
	}
	db.weights[i].Weight = weight
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, domain.ErrUserExists
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		return s, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes sessions expired at cutoff.
func (r *SessionRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for k, v := range r.db.sessions {
		if v.Expired(cutoff) {
			delete(r.db.sessions, k)
			n++
		}
	}
	return n, nil
}
