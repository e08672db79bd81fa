package parse

import (
	"reflect"
	"testing"

	"remindful/pkg/reminder"
)

func TestDetectRecurrence(t *testing.T) {
	cases := []struct {
		message  string
		pattern  string
		interval int
		days     []int
	}{
		{"take vitamins every day", "daily", 1, nil},
		{"daily standup notes", "daily", 1, nil},
		{"water plants every 3 days", "daily", 3, nil},
		{"weekly review", "weekly", 1, nil},
		{"backup photos every 2 weeks", "weekly", 2, nil},
		{"pay rent every month", "monthly", 1, nil},
		{"rotate passwords every 6 months", "monthly", 6, nil},
		{"renew domain yearly", "yearly", 1, nil},
		{"dentist annually", "yearly", 1, nil},
		{"standup every tuesday", "custom", 1, []int{2}},
		{"gym every Saturday morning", "custom", 1, []int{6}},
		{"commute playlist every weekday", "custom", 1, []int{1, 2, 3, 4, 5}},
		{"hike every weekend", "custom", 1, []int{0, 6}},
	}
	for _, c := range cases {
		rec := DetectRecurrence(c.message)
		if !rec.IsRecurring {
			t.Errorf("DetectRecurrence(%q): expected recurring", c.message)
			continue
		}
		if rec.Pattern != c.pattern || rec.Interval != c.interval {
			t.Errorf("DetectRecurrence(%q): want %s/%d, got %s/%d",
				c.message, c.pattern, c.interval, rec.Pattern, rec.Interval)
		}
		if !reflect.DeepEqual(rec.DaysOfWeek, c.days) {
			t.Errorf("DetectRecurrence(%q): want days %v, got %v", c.message, c.days, rec.DaysOfWeek)
		}
		if rec.CurrentOccurrence != 1 {
			t.Errorf("DetectRecurrence(%q): current occurrence should start at 1, got %d",
				c.message, rec.CurrentOccurrence)
		}
	}
}

func TestDetectRecurrenceNone(t *testing.T) {
	for _, msg := range []string{"call mom tomorrow", "", "buy milk"} {
		if rec := DetectRecurrence(msg); rec.IsRecurring {
			t.Errorf("DetectRecurrence(%q): expected none, got %+v", msg, rec)
		}
	}
}

func TestDescribeRecurrence(t *testing.T) {
	cases := []struct {
		rec  reminder.Recurrence
		want string
	}{
		{reminder.Recurrence{IsRecurring: true, Pattern: "daily", Interval: 1}, "every day"},
		{reminder.Recurrence{IsRecurring: true, Pattern: "weekly", Interval: 3}, "every 3 weeks"},
		{reminder.Recurrence{IsRecurring: true, Pattern: "custom", Interval: 1, DaysOfWeek: []int{1, 3}}, "every Monday, Wednesday"},
		{reminder.Recurrence{}, ""},
	}
	for _, c := range cases {
		if got := DescribeRecurrence(c.rec); got != c.want {
			t.Errorf("DescribeRecurrence(%+v): want %q, got %q", c.rec, c.want, got)
		}
	}
}
