package reminder

import (
	"context"
	"time"
)

// Priority is a user-declared priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Category buckets a reminder by topic.
type Category string

const (
	CategoryWork     Category = "work"
	CategoryPersonal Category = "personal"
	CategoryHealth   Category = "health"
	CategoryFinance  Category = "finance"
	CategoryShopping Category = "shopping"
	CategoryOther    Category = "other"
)

// Recurrence describes how a reminder repeats. A recurring reminder acts
// as a template: the materializer spawns one-shot instances from it, each
// pointing back via ParentID. When IsRecurring is false all other fields
// are zero except ParentID on spawned instances.
type Recurrence struct {
	IsRecurring       bool       `json:"is_recurring"`
	Pattern           string     `json:"pattern,omitempty"` // daily, weekly, monthly, yearly, custom
	Interval          int        `json:"interval,omitempty"`
	DaysOfWeek        []int      `json:"days_of_week,omitempty"` // 0=Sunday .. 6=Saturday
	EndDate           *time.Time `json:"end_date,omitempty"`
	MaxOccurrences    int        `json:"max_occurrences,omitempty"`
	CurrentOccurrence int        `json:"current_occurrence,omitempty"`
	ParentID          string     `json:"parent_id,omitempty"`
	NextDueAt         *time.Time `json:"next_due_at,omitempty"`
}

// Factors is the per-factor breakdown behind a smart priority score.
type Factors struct {
	Urgency      int `json:"urgency"`
	Importance   int `json:"importance"`
	UserBehavior int `json:"user_behavior"`
	TimeOfDay    int `json:"time_of_day"`
}

// SmartPriority is the derived urgency ranking for a reminder. Score is
// always the weighted sum of the factors, never set independently.
type SmartPriority struct {
	Score          int       `json:"score"`
	Factors        Factors   `json:"factors"`
	LastCalculated time.Time `json:"last_calculated"`
}

// Interactions counts user actions against a reminder. Counters only go up.
type Interactions struct {
	Views             int        `json:"views"`
	Snoozes           int        `json:"snoozes"`
	Edits             int        `json:"edits"`
	CompletionMinutes *int       `json:"completion_minutes,omitempty"`
	LastViewed        *time.Time `json:"last_viewed,omitempty"`
}

// Reminder is a persisted reminder owned by one user.
type Reminder struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Task            string        `json:"task"`
	DueAt           time.Time     `json:"due_at"`
	OriginalMessage string        `json:"original_message"`
	Category        Category      `json:"category"`
	Tags            []string      `json:"tags"`
	Priority        Priority      `json:"priority"`
	Recurrence      Recurrence    `json:"recurrence"`
	SmartPriority   SmartPriority `json:"smart_priority"`
	Interactions    Interactions  `json:"interactions"`
	Completed       bool          `json:"completed"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsTemplate reports whether this reminder is a recurring template rather
// than a one-shot or a spawned instance.
func (r *Reminder) IsTemplate() bool {
	return r.Recurrence.IsRecurring
}

// ListFilter narrows a List call.
type ListFilter struct {
	UserID    string
	Category  Category
	Priority  Priority
	Completed *bool      // nil means both
	DueAfter  *time.Time // only reminders due strictly after this instant
	Sort      string     // "smart" (score desc, then due asc) or "time" (due asc)
	Limit     int
}

// ScoreUpdate carries one recomputed score for a batched persist.
type ScoreUpdate struct {
	ID            string
	SmartPriority SmartPriority
}

// InteractionKind names a trackable user action.
type InteractionKind string

const (
	InteractionView     InteractionKind = "view"
	InteractionSnooze   InteractionKind = "snooze"
	InteractionEdit     InteractionKind = "edit"
	InteractionComplete InteractionKind = "complete"
)

// Stats summarises a user's reminders.
type Stats struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Upcoming  int `json:"upcoming"`
	Completed int `json:"completed"`
}

// Store is the contract for reminder persistence.
type Store interface {
	Create(ctx context.Context, r *Reminder) (*Reminder, error)
	Get(ctx context.Context, id string) (*Reminder, error)
	List(ctx context.Context, f ListFilter) ([]Reminder, error)
	Update(ctx context.Context, id string, updates map[string]any) (*Reminder, error)
	SetCompleted(ctx context.Context, id string, completed bool) (*Reminder, error)
	Delete(ctx context.Context, id string) error

	// OpenAfter returns every uncompleted reminder due strictly after now,
	// across all users. Used by the priority recompute sweep.
	OpenAfter(ctx context.Context, now time.Time) ([]Reminder, error)

	// UpdateScores persists recomputed smart priorities in one batch.
	UpdateScores(ctx context.Context, updates []ScoreUpdate) error

	// Track atomically bumps the counter for the given interaction kind.
	// completionMinutes is only consulted for InteractionComplete.
	Track(ctx context.Context, id string, kind InteractionKind, completionMinutes int) error

	// ActiveTemplates returns recurring templates still eligible to produce
	// occurrences: uncompleted, end date unset or in the future.
	ActiveTemplates(ctx context.Context, now time.Time) ([]Reminder, error)

	// InstanceExistsOn reports whether an instance spawned from the given
	// template is already due on the same calendar day as at.
	InstanceExistsOn(ctx context.Context, parentID string, at time.Time) (bool, error)

	// AdvanceTemplate bumps the template's occurrence counter and records
	// the next due date it was advanced to.
	AdvanceTemplate(ctx context.Context, id string, nextDue time.Time) error

	Stats(ctx context.Context, userID string, now time.Time) (*Stats, error)
	Count(ctx context.Context) (int, error)
	EnsureTable(ctx context.Context) error
}
