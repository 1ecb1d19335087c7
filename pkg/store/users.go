package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// User is an account record.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}

// Users is the pgx-backed UserStore.
type Users struct {
	db DB
}

// NewUsers creates a repository on db.
func NewUsers(db DB) (repo *Users) {
	repo = &Users{db: db}
	return repo
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create inserts a user. A zero ID is filled in.
func (r *Users) Create(ctx context.Context, u User) (saved User, err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, $3)
		 RETURNING id, email, password_hash, created_at`,
		u.ID, NormalizeEmail(u.Email), u.PasswordHash)

	err = row.Scan(&saved.ID, &saved.Email, &saved.PasswordHash, &saved.CreatedAt)
	if err != nil {
		err = errors.Wrap(err, "failed to create user")
	}
	return saved, err
}

// GetByEmail looks up a user by normalized email or returns ErrNotFound.
func (r *Users) GetByEmail(ctx context.Context, email string) (u User, err error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = $1`,
		NormalizeEmail(email))

	err = row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		err = errors.Wrap(err, "failed to load user")
	}
	return u, err
}
