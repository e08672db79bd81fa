package priority

import (
	"testing"
	"time"

	"remindful/pkg/reminder"
)

// scoreNow sits inside working hours so fixtures due shortly after it
// exercise the work-category time-of-day boost.
var scoreNow = time.Date(2025, time.March, 10, 10, 0, 0, 0, time.UTC)

func due(d time.Duration) time.Time { return scoreNow.Add(d) }

// TestScoreWeightedSum pins one fully-known case: an urgent work reminder
// due within the hour during working hours, with no interaction history.
// 0.4*100 + 0.3*100 + 0.2*50 + 0.1*80 = 88.
func TestScoreWeightedSum(t *testing.T) {
	r := &reminder.Reminder{
		Priority: reminder.PriorityUrgent,
		Category: reminder.CategoryWork,
		DueAt:    time.Date(2025, time.March, 10, 10, 30, 0, 0, time.UTC),
	}
	sp := Score(r, scoreNow)

	if sp.Score != 88 {
		t.Errorf("score: want 88, got %d", sp.Score)
	}
	want := reminder.Factors{Urgency: 100, Importance: 100, UserBehavior: 50, TimeOfDay: 80}
	if sp.Factors != want {
		t.Errorf("factors: want %+v, got %+v", want, sp.Factors)
	}
	if !sp.LastCalculated.Equal(scoreNow) {
		t.Errorf("last calculated: want %v, got %v", scoreNow, sp.LastCalculated)
	}
	if r.SmartPriority != sp {
		t.Error("reminder should carry the returned smart priority")
	}
}

// TestScoreBounds sweeps extreme inputs and checks the score stays inside
// [0,100].
func TestScoreBounds(t *testing.T) {
	priorities := []reminder.Priority{reminder.PriorityLow, reminder.PriorityMedium, reminder.PriorityHigh, reminder.PriorityUrgent}
	offsets := []time.Duration{-time.Hour, 30 * time.Minute, 12 * time.Hour, 200 * time.Hour}
	interactions := []reminder.Interactions{
		{},
		{Snoozes: 10},
		{Views: 10, Snoozes: 10, Edits: 10},
	}

	for _, p := range priorities {
		for _, off := range offsets {
			for _, in := range interactions {
				r := &reminder.Reminder{Priority: p, Category: reminder.CategoryWork, DueAt: due(off), Interactions: in}
				sp := Score(r, scoreNow)
				if sp.Score < 0 || sp.Score > 100 {
					t.Errorf("score out of range: %d for %+v", sp.Score, r)
				}
			}
		}
	}
}

// TestUrgencySteps walks the due-time boundaries and checks the factor
// never increases as the deadline moves further away.
func TestUrgencySteps(t *testing.T) {
	cases := []struct {
		hours float64
		want  int
	}{
		{0.5, 100},
		{2, 85},
		{12, 70},
		{48, 50},
		{100, 30},
	}
	prev := 101
	for _, c := range cases {
		got := urgencyFactor(c.hours)
		if got != c.want {
			t.Errorf("urgencyFactor(%v): want %d, got %d", c.hours, c.want, got)
		}
		if got > prev {
			t.Errorf("urgencyFactor not monotone at %v hours", c.hours)
		}
		prev = got
	}
	// Overdue counts as maximally urgent.
	if got := urgencyFactor(-5); got != 100 {
		t.Errorf("urgencyFactor(-5): want 100, got %d", got)
	}
}

func TestImportanceFactor(t *testing.T) {
	cases := []struct {
		p    reminder.Priority
		want int
	}{
		{reminder.PriorityUrgent, 100},
		{reminder.PriorityHigh, 80},
		{reminder.PriorityMedium, 50},
		{reminder.PriorityLow, 30},
		{reminder.Priority(""), 50},
	}
	for _, c := range cases {
		if got := importanceFactor(c.p); got != c.want {
			t.Errorf("importanceFactor(%q): want %d, got %d", c.p, c.want, got)
		}
	}
}

// TestBehaviorFactorOverrideOrder documents that the counter checks apply
// in sequence, last one wins: views can mask snoozes, edits mask both.
func TestBehaviorFactorOverrideOrder(t *testing.T) {
	cases := []struct {
		in   reminder.Interactions
		want int
	}{
		{reminder.Interactions{}, 50},
		{reminder.Interactions{Snoozes: 4}, 20},
		{reminder.Interactions{Views: 6}, 80},
		{reminder.Interactions{Edits: 3}, 70},
		{reminder.Interactions{Snoozes: 4, Views: 6}, 80},
		{reminder.Interactions{Views: 6, Edits: 3}, 70},
		{reminder.Interactions{Snoozes: 4, Views: 6, Edits: 3}, 70},
		// At-threshold values do not trigger.
		{reminder.Interactions{Snoozes: 3, Views: 5, Edits: 2}, 50},
	}
	for _, c := range cases {
		if got := behaviorFactor(c.in); got != c.want {
			t.Errorf("behaviorFactor(%+v): want %d, got %d", c.in, c.want, got)
		}
	}
}

func TestTimeOfDayFactor(t *testing.T) {
	at := func(h int) time.Time {
		return time.Date(2025, time.March, 10, h, 0, 0, 0, time.UTC)
	}
	if got := timeOfDayFactor(reminder.CategoryWork, at(10)); got != 80 {
		t.Errorf("work at 10:00: want 80, got %d", got)
	}
	if got := timeOfDayFactor(reminder.CategoryWork, at(20)); got != 50 {
		t.Errorf("work at 20:00: want 50, got %d", got)
	}
	if got := timeOfDayFactor(reminder.CategoryPersonal, at(10)); got != 50 {
		t.Errorf("personal at 10:00: want 50, got %d", got)
	}
	if got := timeOfDayFactor(reminder.CategoryWork, at(9)); got != 80 {
		t.Errorf("work at 09:00: want 80, got %d", got)
	}
	if got := timeOfDayFactor(reminder.CategoryWork, at(8)); got != 50 {
		t.Errorf("work at 08:00: want 50, got %d", got)
	}
	if got := timeOfDayFactor(reminder.CategoryWork, at(17)); got != 80 {
		t.Errorf("work at 17:00: want 80, got %d", got)
	}
}

// TestScoreDeterministic: same inputs, same instant, same score.
func TestScoreDeterministic(t *testing.T) {
	r := reminder.Reminder{
		Priority:     reminder.PriorityHigh,
		Category:     reminder.CategoryHealth,
		DueAt:        due(6 * time.Hour),
		Interactions: reminder.Interactions{Views: 7},
	}
	a, b := r, r
	if sa, sb := Score(&a, scoreNow), Score(&b, scoreNow); sa != sb {
		t.Errorf("not deterministic: %+v vs %+v", sa, sb)
	}
}
