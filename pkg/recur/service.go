package recur

import (
	"context"
	"log"
	"time"

	"remindful/pkg/activity"
	"remindful/pkg/priority"
	"remindful/pkg/reminder"
)

// lookAhead is the bounded future window within which the materializer is
// willing to pre-create instances.
const lookAhead = 7 * 24 * time.Hour

// Service is the background materializer: each sweep it scans active
// recurring templates and creates the next concrete instance for any
// template whose next occurrence falls within the look-ahead window and
// does not already have one.
type Service struct {
	store    reminder.Store
	activity activity.Store
	interval time.Duration
	now      func() time.Time // injected for tests
}

// NewService creates a Service. interval <= 0 defaults to one hour.
func NewService(store reminder.Store, act activity.Store, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{
		store:    store,
		activity: act,
		interval: interval,
		now:      time.Now,
	}
}

// Run sweeps immediately, then on every tick until ctx is cancelled. An
// in-flight sweep finishes before the next tick is considered.
func (s *Service) Run(ctx context.Context) {
	log.Printf("recur: materializer running (every %s)", s.interval)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("recur: shutting down")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep processes every active template. A failure on one template is
// logged and must not abort the remaining templates.
func (s *Service) sweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("recur: panic in sweep: %v", r)
		}
	}()

	now := s.now()
	templates, err := s.store.ActiveTemplates(ctx, now)
	if err != nil {
		log.Printf("recur: fetch templates: %v", err)
		return
	}

	created := 0
	for i := range templates {
		ok, err := s.materialize(ctx, &templates[i], now)
		if err != nil {
			log.Printf("recur: template %s: %v", templates[i].ID, err)
			continue
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		log.Printf("recur: materialized %d instances from %d templates", created, len(templates))
	}
}

// materialize creates the next instance for one template if it is due
// within the look-ahead window and not already present. Returns true when
// an instance was created. Repeated calls against the same template state
// are idempotent: the same-calendar-day existence check (backed by a
// unique index at the store) guarantees at most one instance per
// template+day.
func (s *Service) materialize(ctx context.Context, tmpl *reminder.Reminder, now time.Time) (bool, error) {
	next, ok := NextOccurrence(tmpl)
	if !ok {
		// Exhausted or malformed: a normal terminal condition, not an error.
		return false, nil
	}
	if next.After(now.Add(lookAhead)) {
		return false, nil
	}

	exists, err := s.store.InstanceExistsOn(ctx, tmpl.ID, next)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	inst := &reminder.Reminder{
		UserID:          tmpl.UserID,
		Task:            tmpl.Task,
		DueAt:           next,
		OriginalMessage: tmpl.OriginalMessage,
		Category:        tmpl.Category,
		Tags:            append([]string(nil), tmpl.Tags...),
		Priority:        tmpl.Priority,
		Recurrence: reminder.Recurrence{
			IsRecurring: false,
			ParentID:    tmpl.ID,
		},
	}
	priority.Score(inst, now)

	if _, err := s.store.Create(ctx, inst); err != nil {
		if reminder.IsDuplicate(err) {
			// A concurrent sweep won the race; treat as already materialized.
			return false, nil
		}
		return false, err
	}

	if err := s.store.AdvanceTemplate(ctx, tmpl.ID, next); err != nil {
		return false, err
	}

	if s.activity != nil {
		_, err := s.activity.Append(ctx, "reminder.materialized", inst.ID, inst.UserID, map[string]any{
			"template_id": tmpl.ID,
			"due_at":      next.Format(time.RFC3339),
		})
		if err != nil {
			log.Printf("recur: log materialization: %v", err)
		}
	}
	return true, nil
}
