// Package recur computes future occurrences of recurring reminder
// templates and materializes them as concrete reminder instances ahead of
// time.
package recur

import (
	"time"

	"remindful/pkg/reminder"
)

// NextOccurrence computes the next due date for a recurring template by
// advancing its last known due date by the recurrence rule. The second
// return value is false when the template produces no further occurrence:
// not recurring, custom with no weekdays, past its end date, or already at
// its occurrence cap.
func NextOccurrence(r *reminder.Reminder) (time.Time, bool) {
	rec := r.Recurrence
	if !rec.IsRecurring {
		return time.Time{}, false
	}

	base := r.DueAt
	if rec.NextDueAt != nil {
		base = *rec.NextDueAt
	}

	interval := rec.Interval
	if interval < 1 {
		interval = 1
	}

	var next time.Time
	switch rec.Pattern {
	case "daily":
		next = base.AddDate(0, 0, interval)
	case "weekly":
		next = base.AddDate(0, 0, 7*interval)
	case "monthly":
		next = base.AddDate(0, interval, 0)
	case "yearly":
		next = base.AddDate(interval, 0, 0)
	case "custom":
		if len(rec.DaysOfWeek) == 0 {
			return time.Time{}, false
		}
		next = nextListedWeekday(base, rec.DaysOfWeek)
	default:
		return time.Time{}, false
	}

	if rec.EndDate != nil && next.After(*rec.EndDate) {
		return time.Time{}, false
	}
	if rec.MaxOccurrences > 0 && rec.CurrentOccurrence >= rec.MaxOccurrences {
		return time.Time{}, false
	}
	return next, true
}

// nextListedWeekday scans forward day by day, bounded to a week, for the
// next date whose weekday is in days. With a non-empty set the scan always
// finds one; the jump-a-week fallback is defensive.
func nextListedWeekday(base time.Time, days []int) time.Time {
	in := make(map[int]bool, len(days))
	for _, d := range days {
		in[d] = true
	}
	for i := 1; i <= 7; i++ {
		candidate := base.AddDate(0, 0, i)
		if in[int(candidate.Weekday())] {
			return candidate
		}
	}
	jump := base.AddDate(0, 0, 7)
	return jump.AddDate(0, 0, days[0]-int(jump.Weekday()))
}
