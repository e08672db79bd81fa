package parse

import (
	"reflect"
	"testing"

	"remindful/pkg/reminder"
)

func TestDetectPriority(t *testing.T) {
	cases := []struct {
		message string
		want    reminder.Priority
	}{
		{"call the bank asap", reminder.PriorityUrgent},
		{"this is critical", reminder.PriorityUrgent},
		{"important: renew passport", reminder.PriorityHigh},
		{"high priority review", reminder.PriorityHigh},
		{"clean garage when possible", reminder.PriorityLow},
		{"sometime next week maybe", reminder.PriorityLow},
		{"regular checkup", reminder.PriorityMedium},
		{"water plants", reminder.PriorityMedium},
	}
	for _, c := range cases {
		if got := DetectPriority(c.message); got != c.want {
			t.Errorf("DetectPriority(%q): want %q, got %q", c.message, c.want, got)
		}
	}
}

// TestDetectPriorityRuleOrder verifies rule order is the tiebreaker when
// several cue words appear: urgent outranks everything.
func TestDetectPriorityRuleOrder(t *testing.T) {
	if got := DetectPriority("urgent but honestly low priority"); got != reminder.PriorityUrgent {
		t.Errorf("want urgent, got %q", got)
	}
	if got := DetectPriority("important, medium effort"); got != reminder.PriorityHigh {
		t.Errorf("want high, got %q", got)
	}
}

func TestDetectCategory(t *testing.T) {
	cases := []struct {
		message string
		want    reminder.Category
	}{
		{"prepare slides for the client meeting", reminder.CategoryWork},
		{"doctor appointment", reminder.CategoryHealth},
		{"buy groceries", reminder.CategoryShopping},
		{"pay the electricity bill", reminder.CategoryFinance},
		{"call a friend", reminder.CategoryPersonal},
		{"water plants", reminder.CategoryPersonal},
	}
	for _, c := range cases {
		if got := DetectCategory(c.message); got != c.want {
			t.Errorf("DetectCategory(%q): want %q, got %q", c.message, c.want, got)
		}
	}
}

// TestDetectCategoryRuleOrder: "buy office supplies" cues both work and
// shopping; the work rule sits first in the table and wins.
func TestDetectCategoryRuleOrder(t *testing.T) {
	if got := DetectCategory("buy office supplies"); got != reminder.CategoryWork {
		t.Errorf("want work, got %q", got)
	}
}

func TestExtractTags(t *testing.T) {
	cases := []struct {
		message string
		want    []string
	}{
		{"call #Mom and #mom then #family dinner", []string{"mom", "family"}},
		{"pay rent #finance", []string{"finance"}},
		{"no tags here", []string{}},
	}
	for _, c := range cases {
		if got := ExtractTags(c.message); !reflect.DeepEqual(got, c.want) {
			t.Errorf("ExtractTags(%q): want %v, got %v", c.message, c.want, got)
		}
	}
}
