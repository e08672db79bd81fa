package priority

import (
	"context"
	"fmt"
	"log"
	"time"

	"remindful/pkg/activity"
	"remindful/pkg/reminder"
)

// Service periodically recomputes the smart priority of every open
// reminder and records interaction counters used as a scoring input.
type Service struct {
	store    reminder.Store
	activity activity.Store
	interval time.Duration
	now      func() time.Time // injected for tests
}

// NewService creates a Service. interval <= 0 defaults to 30 minutes.
func NewService(store reminder.Store, act activity.Store, interval time.Duration) *Service {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Service{
		store:    store,
		activity: act,
		interval: interval,
		now:      time.Now,
	}
}

// Run recomputes immediately, then on every tick until ctx is cancelled.
// An in-flight recompute finishes before the next tick is considered.
func (s *Service) Run(ctx context.Context) {
	log.Printf("priority: recompute service running (every %s)", s.interval)

	s.recomputeAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("priority: shutting down")
			return
		case <-ticker.C:
			s.recomputeAll(ctx)
		}
	}
}

// recomputeAll rescores every uncompleted, still-future reminder and
// persists the scores in one batch. A failed tick logs and waits for the
// next; there is no retry.
func (s *Service) recomputeAll(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("priority: panic in recompute: %v", r)
		}
	}()

	now := s.now()
	open, err := s.store.OpenAfter(ctx, now)
	if err != nil {
		log.Printf("priority: fetch open reminders: %v", err)
		return
	}
	if len(open) == 0 {
		return
	}

	updates := make([]reminder.ScoreUpdate, 0, len(open))
	for i := range open {
		sp := Score(&open[i], now)
		updates = append(updates, reminder.ScoreUpdate{ID: open[i].ID, SmartPriority: sp})
	}

	if err := s.store.UpdateScores(ctx, updates); err != nil {
		log.Printf("priority: persist scores: %v", err)
		return
	}
	log.Printf("priority: recomputed %d scores", len(updates))

	if s.activity != nil {
		_, err := s.activity.Append(ctx, "priority.recalculated", "", "", map[string]any{
			"count": len(updates),
		})
		if err != nil {
			log.Printf("priority: log recompute: %v", err)
		}
	}
}

// TrackInteraction bumps the counter for a user action on a reminder.
// It does not rescore; the next periodic tick picks the counters up.
func (s *Service) TrackInteraction(ctx context.Context, id string, kind reminder.InteractionKind, completionMinutes int) error {
	switch kind {
	case reminder.InteractionView, reminder.InteractionSnooze, reminder.InteractionEdit, reminder.InteractionComplete:
	default:
		return fmt.Errorf("track interaction: unknown kind %q", kind)
	}

	if err := s.store.Track(ctx, id, kind, completionMinutes); err != nil {
		return err
	}

	if s.activity != nil {
		detail := map[string]any{"kind": string(kind)}
		if kind == reminder.InteractionComplete && completionMinutes > 0 {
			detail["completion_minutes"] = completionMinutes
		}
		if _, err := s.activity.Append(ctx, "interaction.tracked", id, "", detail); err != nil {
			log.Printf("priority: log interaction: %v", err)
		}
	}
	return nil
}
