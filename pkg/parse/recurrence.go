package parse

import (
	"regexp"
	"strconv"
	"strings"

	"remindful/pkg/reminder"
)

var weekdayOrdinals = map[string]int{
	"sunday":    0,
	"monday":    1,
	"tuesday":   2,
	"wednesday": 3,
	"thursday":  4,
	"friday":    5,
	"saturday":  6,
}

// recurrenceRule is one row of the detection table. Exactly one of
// captureInterval / captureDay / days is meaningful per rule.
type recurrenceRule struct {
	re              *regexp.Regexp
	pattern         string
	captureInterval bool  // group 1 is a numeric interval
	captureDay      bool  // group 1 is a weekday name
	days            []int // fixed weekday set
}

// Rules are mutually exclusive by construction; the first match wins.
var recurrenceRules = []recurrenceRule{
	{re: regexp.MustCompile(`(?i)every\s+day|daily`), pattern: "daily"},
	{re: regexp.MustCompile(`(?i)every\s+(\d+)\s+days?`), pattern: "daily", captureInterval: true},
	{re: regexp.MustCompile(`(?i)every\s+week|weekly`), pattern: "weekly"},
	{re: regexp.MustCompile(`(?i)every\s+(\d+)\s+weeks?`), pattern: "weekly", captureInterval: true},
	{re: regexp.MustCompile(`(?i)every\s+month|monthly`), pattern: "monthly"},
	{re: regexp.MustCompile(`(?i)every\s+(\d+)\s+months?`), pattern: "monthly", captureInterval: true},
	{re: regexp.MustCompile(`(?i)every\s+year|yearly|annually`), pattern: "yearly"},
	{re: regexp.MustCompile(`(?i)every\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)`), pattern: "custom", captureDay: true},
	{re: regexp.MustCompile(`(?i)every\s+(weekday|workday)`), pattern: "custom", days: []int{1, 2, 3, 4, 5}},
	{re: regexp.MustCompile(`(?i)every\s+(weekend)`), pattern: "custom", days: []int{0, 6}},
}

// DetectRecurrence inspects the message for recurrence cues. Absence of any
// match yields a zero Recurrence with IsRecurring=false.
func DetectRecurrence(message string) reminder.Recurrence {
	for _, rule := range recurrenceRules {
		m := rule.re.FindStringSubmatch(message)
		if m == nil {
			continue
		}
		rec := reminder.Recurrence{
			IsRecurring:       true,
			Pattern:           rule.pattern,
			Interval:          1,
			CurrentOccurrence: 1,
		}
		if rule.captureInterval {
			if n, err := strconv.Atoi(m[1]); err == nil && n >= 1 {
				rec.Interval = n
			}
		}
		if rule.captureDay {
			rec.DaysOfWeek = []int{weekdayOrdinals[strings.ToLower(m[1])]}
		} else if rule.days != nil {
			rec.DaysOfWeek = append([]int(nil), rule.days...)
		}
		return rec
	}
	return reminder.Recurrence{}
}

// DescribeRecurrence phrases a recurrence in words: "every day",
// "every 3 weeks", "every Monday, Wednesday".
func DescribeRecurrence(rec reminder.Recurrence) string {
	if !rec.IsRecurring {
		return ""
	}
	unit := map[string]string{
		"daily":   "day",
		"weekly":  "week",
		"monthly": "month",
		"yearly":  "year",
	}[rec.Pattern]

	switch {
	case rec.Pattern == "custom":
		if len(rec.DaysOfWeek) == 0 {
			return ""
		}
		names := make([]string, 0, len(rec.DaysOfWeek))
		for _, d := range rec.DaysOfWeek {
			names = append(names, dayName(d))
		}
		return "every " + strings.Join(names, ", ")
	case unit == "":
		return ""
	case rec.Interval <= 1:
		return "every " + unit
	default:
		return "every " + strconv.Itoa(rec.Interval) + " " + unit + "s"
	}
}

func dayName(d int) string {
	names := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	if d < 0 || d > 6 {
		return ""
	}
	return names[d]
}
