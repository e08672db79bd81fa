package user

import (
	"context"
	"time"
)

// User is a minimal owner record for reminders. Authentication and
// sessions live outside this system; these are plain identity records.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the contract for user persistence.
type Store interface {
	// Register creates or returns an existing user. Idempotent: matches on
	// email first, then name.
	Register(ctx context.Context, name, email string) (*User, error)

	// Get returns a user by ID.
	Get(ctx context.Context, id string) (*User, error)

	// List returns all users.
	List(ctx context.Context) ([]User, error)

	// EnsureTable creates the users table if it doesn't exist.
	EnsureTable(ctx context.Context) error
}
