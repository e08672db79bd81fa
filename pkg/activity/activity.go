// Package activity records an append-only log of reminder lifecycle
// events: creations, completions, materialized occurrences, score
// recomputations, and tracked interactions.
package activity

import (
	"context"
	"time"
)

// Entry is one record in the activity log.
type Entry struct {
	ID         string         `json:"id"` // UUID v7 (time-ordered)
	Type       string         `json:"type"`
	ReminderID string         `json:"reminder_id,omitempty"`
	UserID     string         `json:"user_id,omitempty"`
	Detail     map[string]any `json:"detail"`
	CreatedAt  time.Time      `json:"created_at"`
}

// Store is the contract for activity persistence.
type Store interface {
	Append(ctx context.Context, entryType, reminderID, userID string, detail map[string]any) (*Entry, error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	ByReminder(ctx context.Context, reminderID string, limit int) ([]Entry, error)
	ByUser(ctx context.Context, userID string, limit int) ([]Entry, error)

	// Since returns entries created after the given ID, for polling/SSE.
	Since(ctx context.Context, afterID string, limit int) ([]Entry, error)

	Count(ctx context.Context) (int, error)
	EnsureTable(ctx context.Context) error
}
