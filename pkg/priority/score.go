// Package priority computes and maintains smart priority scores: a
// weighted 0-100 urgency ranking recomputed periodically over every open
// reminder.
package priority

import (
	"math"
	"time"

	"remindful/pkg/reminder"
)

// Factor weights. Score is always round(0.4u + 0.3i + 0.2b + 0.1t),
// clamped to [0,100].
const (
	weightUrgency      = 0.4
	weightImportance   = 0.3
	weightUserBehavior = 0.2
	weightTimeOfDay    = 0.1
)

// Score computes the smart priority for r at the given instant, overwrites
// r.SmartPriority, and returns it. Deterministic given its inputs; no I/O.
func Score(r *reminder.Reminder, now time.Time) reminder.SmartPriority {
	f := reminder.Factors{
		Urgency:      urgencyFactor(r.DueAt.Sub(now).Hours()),
		Importance:   importanceFactor(r.Priority),
		UserBehavior: behaviorFactor(r.Interactions),
		TimeOfDay:    timeOfDayFactor(r.Category, r.DueAt),
	}

	raw := weightUrgency*float64(f.Urgency) +
		weightImportance*float64(f.Importance) +
		weightUserBehavior*float64(f.UserBehavior) +
		weightTimeOfDay*float64(f.TimeOfDay)

	sp := reminder.SmartPriority{
		Score:          clamp(int(math.Round(raw))),
		Factors:        f,
		LastCalculated: now,
	}
	r.SmartPriority = sp
	return sp
}

// urgencyFactor is a step function of hours until due.
func urgencyFactor(hoursUntilDue float64) int {
	switch {
	case hoursUntilDue < 1:
		return 100
	case hoursUntilDue < 4:
		return 85
	case hoursUntilDue < 24:
		return 70
	case hoursUntilDue < 72:
		return 50
	default:
		return 30
	}
}

func importanceFactor(p reminder.Priority) int {
	switch p {
	case reminder.PriorityUrgent:
		return 100
	case reminder.PriorityHigh:
		return 80
	case reminder.PriorityLow:
		return 30
	default:
		return 50
	}
}

// behaviorFactor reads the interaction counters. The checks are
// independent and the last applicable one wins, so heavy viewing can mask
// heavy snoozing. That override order is kept for compatibility with the
// established scoring behavior.
func behaviorFactor(in reminder.Interactions) int {
	v := 50
	if in.Snoozes > 3 {
		v = 20
	}
	if in.Views > 5 {
		v = 80
	}
	if in.Edits > 2 {
		v = 70
	}
	return v
}

// timeOfDayFactor boosts work reminders due during working hours.
func timeOfDayFactor(cat reminder.Category, due time.Time) int {
	h := due.Hour()
	if cat == reminder.CategoryWork && h >= 9 && h <= 17 {
		return 80
	}
	return 50
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
