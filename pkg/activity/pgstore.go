package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed activity log.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the activity table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS activity (
			id          TEXT PRIMARY KEY,
			type        TEXT NOT NULL,
			reminder_id TEXT NOT NULL DEFAULT '',
			user_id     TEXT NOT NULL DEFAULT '',
			detail      JSONB NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_activity_created ON activity(created_at, id)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_activity_reminder ON activity(reminder_id) WHERE reminder_id != ''`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_activity_user ON activity(user_id) WHERE user_id != ''`)
	return err
}

// Append creates and stores a new entry.
func (s *PgStore) Append(ctx context.Context, entryType, reminderID, userID string, detail map[string]any) (*Entry, error) {
	if detail == nil {
		detail = map[string]any{}
	}
	detailJSON, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("marshal detail: %w", err)
	}

	e := &Entry{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Type:       entryType,
		ReminderID: reminderID,
		UserID:     userID,
		Detail:     detail,
		CreatedAt:  time.Now().Truncate(time.Microsecond),
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO activity (id, type, reminder_id, user_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
		e.ID, e.Type, e.ReminderID, e.UserID, string(detailJSON), e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert activity: %w", err)
	}
	return e, nil
}

// Recent returns the most recent entries in reverse chronological order.
func (s *PgStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return s.scanMany(ctx, `
		SELECT id, type, reminder_id, user_id, detail, created_at
		FROM activity ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

// ByReminder returns entries for one reminder, newest first.
func (s *PgStore) ByReminder(ctx context.Context, reminderID string, limit int) ([]Entry, error) {
	return s.scanMany(ctx, `
		SELECT id, type, reminder_id, user_id, detail, created_at
		FROM activity WHERE reminder_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, reminderID, limit)
}

// ByUser returns entries for one user, newest first.
func (s *PgStore) ByUser(ctx context.Context, userID string, limit int) ([]Entry, error) {
	return s.scanMany(ctx, `
		SELECT id, type, reminder_id, user_id, detail, created_at
		FROM activity WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
}

// Since returns entries created after the given ID, oldest first.
func (s *PgStore) Since(ctx context.Context, afterID string, limit int) ([]Entry, error) {
	return s.scanMany(ctx, `
		SELECT id, type, reminder_id, user_id, detail, created_at
		FROM activity
		WHERE (created_at, id) > (SELECT created_at, id FROM activity WHERE id = $1)
		ORDER BY created_at ASC, id ASC LIMIT $2`, afterID, limit)
}

// Count returns the total number of entries.
func (s *PgStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activity`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return n, nil
}

func (s *PgStore) scanMany(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows pgx.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var detailJSON []byte
		if err := rows.Scan(&e.ID, &e.Type, &e.ReminderID, &e.UserID, &detailJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(detailJSON, &e.Detail); err != nil {
			return nil, fmt.Errorf("unmarshal detail: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return entries, nil
}
