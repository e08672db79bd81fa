package reminder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reminderCols = `id, user_id, task, due_at, original_message, category, tags, priority,
	recurrence, smart_priority, interactions, completed, completed_at, created_at, updated_at`

// PgStore is a PostgreSQL-backed reminder store. The recurrence, smart
// priority, and interaction sub-documents live in JSONB columns.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the reminders table if it doesn't exist. The partial
// unique index on (parent, due day) is what makes instance materialization
// idempotent even across overlapping sweeps.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reminders (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			task             TEXT NOT NULL,
			due_at           TIMESTAMPTZ NOT NULL,
			original_message TEXT NOT NULL DEFAULT '',
			category         TEXT NOT NULL DEFAULT 'personal',
			tags             TEXT[] DEFAULT '{}',
			priority         TEXT NOT NULL DEFAULT 'medium',
			recurrence       JSONB NOT NULL DEFAULT '{}',
			smart_priority   JSONB NOT NULL DEFAULT '{}',
			interactions     JSONB NOT NULL DEFAULT '{}',
			completed        BOOLEAN NOT NULL DEFAULT false,
			completed_at     TIMESTAMPTZ,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_reminders_user_due ON reminders(user_id, due_at)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_reminders_score ON reminders(((smart_priority->>'score')::int) DESC)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_reminders_recurring ON reminders(((recurrence->>'is_recurring')::bool)) WHERE (recurrence->>'is_recurring')::bool`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_reminders_parent_day
		ON reminders((recurrence->>'parent_id'), date(timezone('UTC', due_at)))
		WHERE recurrence->>'parent_id' IS NOT NULL`)
	return err
}

// Create inserts a new reminder.
func (s *PgStore) Create(ctx context.Context, r *Reminder) (*Reminder, error) {
	r.ID = uuid.Must(uuid.NewV7()).String()
	now := time.Now().Truncate(time.Microsecond)
	r.CreatedAt = now
	r.UpdatedAt = now
	if r.Category == "" {
		r.Category = CategoryPersonal
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}

	recJSON, spJSON, intJSON, err := marshalSubdocs(r)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO reminders (`+reminderCols+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10::jsonb, $11::jsonb, $12, $13, $14, $15)`,
		r.ID, r.UserID, r.Task, r.DueAt, r.OriginalMessage, r.Category, r.Tags, r.Priority,
		recJSON, spJSON, intJSON, r.Completed, r.CompletedAt, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	return r, nil
}

// Get retrieves a single reminder by ID.
func (s *PgStore) Get(ctx context.Context, id string) (*Reminder, error) {
	r, err := s.scanOne(ctx, `SELECT `+reminderCols+` FROM reminders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get reminder %s: %w", id, err)
	}
	return r, nil
}

// List returns reminders matching the filter.
func (s *PgStore) List(ctx context.Context, f ListFilter) ([]Reminder, error) {
	where := "user_id = $1"
	args := []any{f.UserID}
	idx := 2

	if f.Category != "" {
		where += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, f.Category)
		idx++
	}
	if f.Priority != "" {
		where += fmt.Sprintf(" AND priority = $%d", idx)
		args = append(args, f.Priority)
		idx++
	}
	if f.Completed != nil {
		where += fmt.Sprintf(" AND completed = $%d", idx)
		args = append(args, *f.Completed)
		idx++
	}
	if f.DueAfter != nil {
		where += fmt.Sprintf(" AND due_at > $%d", idx)
		args = append(args, *f.DueAfter)
		idx++
	}

	order := "due_at ASC"
	if f.Sort == "smart" {
		order = "(smart_priority->>'score')::int DESC, due_at ASC"
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)

	return s.scanMany(ctx, fmt.Sprintf(
		`SELECT `+reminderCols+` FROM reminders WHERE %s ORDER BY %s LIMIT $%d`,
		where, order, idx), args...)
}

// Update modifies reminder fields. Supported keys: task, due_at, category,
// tags, priority, recurrence.
func (s *PgStore) Update(ctx context.Context, id string, updates map[string]any) (*Reminder, error) {
	now := time.Now().Truncate(time.Microsecond)

	setClauses := "updated_at = $1"
	args := []any{now}
	argIdx := 2

	for k, v := range updates {
		switch k {
		case "task", "category", "priority", "original_message":
			setClauses += fmt.Sprintf(", %s = $%d", k, argIdx)
			args = append(args, v)
			argIdx++
		case "due_at":
			setClauses += fmt.Sprintf(", due_at = $%d", argIdx)
			args = append(args, v)
			argIdx++
		case "tags":
			setClauses += fmt.Sprintf(", tags = $%d", argIdx)
			args = append(args, v)
			argIdx++
		case "recurrence":
			b, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("marshal recurrence: %w", err)
			}
			setClauses += fmt.Sprintf(", recurrence = $%d::jsonb", argIdx)
			args = append(args, string(b))
			argIdx++
		}
	}

	args = append(args, id)
	_, err := s.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE reminders SET %s WHERE id = $%d`, setClauses, argIdx), args...)
	if err != nil {
		return nil, fmt.Errorf("update reminder %s: %w", id, err)
	}
	return s.Get(ctx, id)
}

// SetCompleted marks a reminder (un)completed, stamping completed_at.
func (s *PgStore) SetCompleted(ctx context.Context, id string, completed bool) (*Reminder, error) {
	now := time.Now().Truncate(time.Microsecond)
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE reminders SET completed = $1, completed_at = $2, updated_at = $3 WHERE id = $4`,
		completed, completedAt, now, id)
	if err != nil {
		return nil, fmt.Errorf("set completed %s: %w", id, err)
	}
	return s.Get(ctx, id)
}

// Delete removes a reminder.
func (s *PgStore) Delete(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete reminder %s: %w", id, err)
	}
	return nil
}

// OpenAfter returns every uncompleted reminder due after now.
func (s *PgStore) OpenAfter(ctx context.Context, now time.Time) ([]Reminder, error) {
	return s.scanMany(ctx, `
		SELECT `+reminderCols+` FROM reminders
		WHERE completed = false AND due_at > $1
		ORDER BY due_at ASC`, now)
}

// UpdateScores persists recomputed smart priorities in a single batch.
func (s *PgStore) UpdateScores(ctx context.Context, updates []ScoreUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	now := time.Now().Truncate(time.Microsecond)
	for _, u := range updates {
		b, err := json.Marshal(u.SmartPriority)
		if err != nil {
			return fmt.Errorf("marshal smart priority for %s: %w", u.ID, err)
		}
		batch.Queue(`UPDATE reminders SET smart_priority = $1::jsonb, updated_at = $2 WHERE id = $3`,
			string(b), now, u.ID)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range updates {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch score update: %w", err)
		}
	}
	return nil
}

// Track bumps the interaction counter for kind inside the interactions
// sub-document, plus last_viewed. A single UPDATE keeps it atomic.
func (s *PgStore) Track(ctx context.Context, id string, kind InteractionKind, completionMinutes int) error {
	now := time.Now().Truncate(time.Microsecond)

	expr, wantsMinutes, err := trackExpr(kind, completionMinutes)
	if err != nil {
		return err
	}
	args := []any{now, id}
	if wantsMinutes {
		args = append(args, completionMinutes)
	}

	_, err = s.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE reminders
		SET interactions = jsonb_set(%s, '{last_viewed}', to_jsonb($1::timestamptz)), updated_at = $1
		WHERE id = $2`, expr), args...)
	if err != nil {
		return fmt.Errorf("track %s on %s: %w", kind, id, err)
	}
	return nil
}

// trackExpr returns the interactions-column expression for kind and whether
// it consumes the completion-minutes argument ($3). Completion duration is
// optional: a complete action without one leaves the sub-document untouched
// beyond last_viewed.
func trackExpr(kind InteractionKind, completionMinutes int) (string, bool, error) {
	switch kind {
	case InteractionView:
		return `jsonb_set(interactions, '{views}', to_jsonb(COALESCE((interactions->>'views')::int, 0) + 1))`, false, nil
	case InteractionSnooze:
		return `jsonb_set(interactions, '{snoozes}', to_jsonb(COALESCE((interactions->>'snoozes')::int, 0) + 1))`, false, nil
	case InteractionEdit:
		return `jsonb_set(interactions, '{edits}', to_jsonb(COALESCE((interactions->>'edits')::int, 0) + 1))`, false, nil
	case InteractionComplete:
		if completionMinutes <= 0 {
			return `interactions`, false, nil
		}
		return `jsonb_set(interactions, '{completion_minutes}', to_jsonb($3::int))`, true, nil
	default:
		return "", false, fmt.Errorf("track: unknown interaction kind %q", kind)
	}
}

// ActiveTemplates returns recurring templates still eligible to produce
// occurrences.
func (s *PgStore) ActiveTemplates(ctx context.Context, now time.Time) ([]Reminder, error) {
	return s.scanMany(ctx, `
		SELECT `+reminderCols+` FROM reminders
		WHERE (recurrence->>'is_recurring')::bool
		  AND completed = false
		  AND (recurrence->>'end_date' IS NULL OR (recurrence->>'end_date')::timestamptz > $1)
		ORDER BY due_at ASC`, now)
}

// InstanceExistsOn reports whether an instance of the template is already
// due on the same UTC calendar day as at.
func (s *PgStore) InstanceExistsOn(ctx context.Context, parentID string, at time.Time) (bool, error) {
	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reminders
			WHERE recurrence->>'parent_id' = $1 AND due_at >= $2 AND due_at < $3
		)`, parentID, dayStart, dayEnd).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("instance exists for %s: %w", parentID, err)
	}
	return exists, nil
}

// AdvanceTemplate bumps current_occurrence and records next_due_at.
func (s *PgStore) AdvanceTemplate(ctx context.Context, id string, nextDue time.Time) error {
	now := time.Now().Truncate(time.Microsecond)
	_, err := s.pool.Exec(ctx, `
		UPDATE reminders
		SET recurrence = jsonb_set(
				jsonb_set(recurrence, '{current_occurrence}',
					to_jsonb(COALESCE((recurrence->>'current_occurrence')::int, 1) + 1)),
				'{next_due_at}', to_jsonb($1::timestamptz)),
		    updated_at = $2
		WHERE id = $3`, nextDue, now, id)
	if err != nil {
		return fmt.Errorf("advance template %s: %w", id, err)
	}
	return nil
}

// Stats summarises a user's reminders relative to now.
func (s *PgStore) Stats(ctx context.Context, userID string, now time.Time) (*Stats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var st Stats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE due_at >= $2 AND due_at < $3),
		       COUNT(*) FILTER (WHERE due_at > $4 AND NOT completed),
		       COUNT(*) FILTER (WHERE completed)
		FROM reminders WHERE user_id = $1`,
		userID, dayStart, dayEnd, now).
		Scan(&st.Total, &st.Today, &st.Upcoming, &st.Completed)
	if err != nil {
		return nil, fmt.Errorf("stats for %s: %w", userID, err)
	}
	return &st, nil
}

// Count returns the total number of reminders.
func (s *PgStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reminders`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count reminders: %w", err)
	}
	return n, nil
}

// IsDuplicate reports whether err is a unique-constraint violation. The
// materializer treats a duplicate instance insert as an idempotent no-op.
func IsDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func marshalSubdocs(r *Reminder) (rec, sp, inter string, err error) {
	b, err := json.Marshal(r.Recurrence)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal recurrence: %w", err)
	}
	rec = string(b)
	b, err = json.Marshal(r.SmartPriority)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal smart priority: %w", err)
	}
	sp = string(b)
	b, err = json.Marshal(r.Interactions)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal interactions: %w", err)
	}
	inter = string(b)
	return rec, sp, inter, nil
}

func (s *PgStore) scanOne(ctx context.Context, query string, args ...any) (*Reminder, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	return scanReminder(rows)
}

func (s *PgStore) scanMany(ctx context.Context, query string, args ...any) ([]Reminder, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return reminders, nil
}

func scanReminder(rows pgx.Rows) (*Reminder, error) {
	var r Reminder
	var recJSON, spJSON, intJSON []byte
	err := rows.Scan(&r.ID, &r.UserID, &r.Task, &r.DueAt, &r.OriginalMessage, &r.Category,
		&r.Tags, &r.Priority, &recJSON, &spJSON, &intJSON,
		&r.Completed, &r.CompletedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(recJSON, &r.Recurrence); err != nil {
		return nil, fmt.Errorf("unmarshal recurrence: %w", err)
	}
	if err := json.Unmarshal(spJSON, &r.SmartPriority); err != nil {
		return nil, fmt.Errorf("unmarshal smart priority: %w", err)
	}
	if err := json.Unmarshal(intJSON, &r.Interactions); err != nil {
		return nil, fmt.Errorf("unmarshal interactions: %w", err)
	}
	return &r, nil
}
