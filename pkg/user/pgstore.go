package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed user store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the users table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS users_name_idx ON users(name)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE UNIQUE INDEX IF NOT EXISTS users_email_idx ON users(email) WHERE email IS NOT NULL`)
	return err
}

// Register creates or returns an existing user. Idempotent.
func (s *PgStore) Register(ctx context.Context, name, email string) (*User, error) {
	if email != "" {
		u, err := s.scanOne(ctx, `SELECT id, name, email, created_at FROM users WHERE email = $1`, email)
		if err == nil {
			return u, nil
		}
	}

	u, err := s.scanOne(ctx, `SELECT id, name, email, created_at FROM users WHERE name = $1`, name)
	if err == nil {
		return u, nil
	}

	id := uuid.Must(uuid.NewV7()).String()
	now := time.Now().Truncate(time.Microsecond)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING`,
		id, name, nilIfEmpty(email), now)
	if err != nil {
		return nil, fmt.Errorf("register user %s: %w", name, err)
	}

	// Re-fetch to handle race conditions (ON CONFLICT DO NOTHING)
	u, err = s.scanOne(ctx, `SELECT id, name, email, created_at FROM users WHERE name = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("register user %s: re-fetch failed: %w", name, err)
	}
	return u, nil
}

// Get returns a user by ID.
func (s *PgStore) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.scanOne(ctx, `SELECT id, name, email, created_at FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// List returns all users.
func (s *PgStore) List(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, email, created_at FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		var email *string
		if err := rows.Scan(&u.ID, &u.Name, &email, &u.CreatedAt); err != nil {
			return nil, err
		}
		if email != nil {
			u.Email = *email
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *PgStore) scanOne(ctx context.Context, query string, args ...any) (*User, error) {
	var u User
	var email *string
	err := s.pool.QueryRow(ctx, query, args...).Scan(&u.ID, &u.Name, &email, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if email != nil {
		u.Email = *email
	}
	return &u, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
